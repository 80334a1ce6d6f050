package workspace

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// DefaultSeedFiles are the client sources copied into storage on bootstrap
var DefaultSeedFiles = []string{
	"chat.js",
	"dbManager.js",
	"fileSystemAPI.js",
	"main.js",
	"ui.js",
	"utils.js",
}

// Notice durations
const (
	NoticeShort  = 1500 * time.Millisecond
	NoticeNormal = 3 * time.Second
	NoticeLong   = 8 * time.Second
)

// Deps wires the controller to its collaborators
type Deps struct {
	Open      Opener
	View      View
	Session   Session
	Exporter  Exporter
	Fetcher   SourceFetcher
	Prompter  Prompter
	Logger    *logging.Logger
	Metrics   Recorder
	Clock     func() time.Time
	Language  language.Tag
	SeedFiles []string
}

// Controller owns the application state and serializes its transitions.
// Operations suspend on collaborators without holding the lock; entries with
// an operation in flight reject further operations with ErrBusy.
type Controller struct {
	mu     sync.Mutex
	state  State
	tree   *Tree
	gen    uint64
	busy   map[string]struct{}
	ready  bool
	failed bool
	booted bool

	expand singleflight.Group

	open            Opener
	store           Store
	view            View
	session         Session
	exporter        Exporter
	fetcher         SourceFetcher
	defaultPrompter Prompter
	logger          *logging.Logger
	metrics         Recorder
	now             func() time.Time
	lang            language.Tag
	seedFiles       []string
}

// New creates a controller
func New(deps Deps) *Controller {
	c := &Controller{
		state:           InitialState(),
		busy:            make(map[string]struct{}),
		open:            deps.Open,
		view:            deps.View,
		session:         deps.Session,
		exporter:        deps.Exporter,
		fetcher:         deps.Fetcher,
		defaultPrompter: deps.Prompter,
		logger:          deps.Logger,
		metrics:         deps.Metrics,
		now:             deps.Clock,
		lang:            deps.Language,
		seedFiles:       deps.SeedFiles,
	}
	if c.view == nil {
		c.view = nopView{}
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.metrics == nil {
		c.metrics = nopRecorder{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.seedFiles == nil {
		c.seedFiles = DefaultSeedFiles
	}
	c.tree = NewTree(paths.Root, 0)
	return c
}

// State returns a copy of the application state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tree returns a snapshot of the current directory tree
func (c *Controller) Tree() TreeSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Snapshot()
}

// Ready reports whether bootstrap finished and commands are accepted
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Failed reports whether bootstrap hit a critical error
func (c *Controller) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// transition applies ev under the lock and runs the resulting effects outside it
func (c *Controller) transition(ev Event) State {
	c.mu.Lock()
	next, effects := Reduce(c.state, ev)
	c.state = next
	c.mu.Unlock()

	c.apply(effects)
	return next
}

func (c *Controller) apply(effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case ClearEditor:
			c.view.ShowEditor(nil)
		case ClearSession:
			if c.session != nil {
				c.session.Clear()
			}
		case SetStatus:
			c.view.SetStatus(e.Text)
		case SetEditorText:
			c.view.SetEditorText(e.Text)
		case RefreshButtons:
			c.view.SetButtonStates(e.States)
		}
	}
}

// acquire marks key busy until the returned release is called
func (c *Controller) acquire(op, key string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil, newError(KindNotReady, op, key, ErrNotReady)
	}
	if _, ok := c.busy[key]; ok {
		return nil, newError(KindBusy, op, key, ErrBusy)
	}
	c.busy[key] = struct{}{}
	return func() {
		c.mu.Lock()
		delete(c.busy, key)
		c.mu.Unlock()
	}, nil
}

func (c *Controller) checkReady(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return newError(KindNotReady, op, "", ErrNotReady)
	}
	return nil
}

// observe records the outcome of op started at start
func (c *Controller) observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = KindOf(err).String()
	}
	c.metrics.RecordOperation(op, status, time.Since(start))
	if err != nil && KindOf(err) != KindCancelled {
		c.logger.Debug("Operation failed",
			zap.String("op", op),
			zap.String("kind", status),
			zap.Error(err))
	}
}

func (c *Controller) notify(level types.NoticeLevel, duration time.Duration, message string) {
	c.view.ShowNotice(message, level, duration)
}

func (c *Controller) render() {
	c.view.RenderTree(c.Tree())
}
