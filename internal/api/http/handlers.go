package http

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/providers/export"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/utils"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Workspace is the controller surface driven by HTTP commands
type Workspace interface {
	State() workspace.State
	Tree() workspace.TreeSnapshot
	Ready() bool
	Failed() bool

	Navigate(ctx context.Context, dir string) error
	Expand(ctx context.Context, id workspace.NodeID) error
	Collapse(ctx context.Context, id workspace.NodeID) error
	Activate(ctx context.Context, id workspace.NodeID) error
	Load(ctx context.Context, path string) error
	Edit(ctx context.Context, text string) error
	Save(ctx context.Context) error
	PromptCreate(ctx context.Context) error
	Delete(ctx context.Context) error
	Send(ctx context.Context) error
	Dispatch(ctx context.Context, text string) error
}

// Searcher matches entry paths against a glob
type Searcher interface {
	Glob(ctx context.Context, pattern string) ([]types.Entry, error)
}

// Downloads resolves exported files
type Downloads interface {
	Lookup(name string) (*export.Download, error)
}

// Chat exposes session counters for health reporting
type Chat interface {
	Stats() session.Stats
}

// Clients reports live stream subscribers
type Clients interface {
	Clients() int
}

// Deps wires the handlers to the rest of the server
type Deps struct {
	Workspace Workspace
	Search    Searcher
	Downloads Downloads
	Chat      Chat
	Stream    Clients
	Logger    *logging.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	workspace Workspace
	search    Searcher
	downloads Downloads
	chat      Chat
	stream    Clients
	logger    *logging.Logger
	hasher    *utils.Hasher
	started   time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		workspace: deps.Workspace,
		search:    deps.Search,
		downloads: deps.Downloads,
		chat:      deps.Chat,
		stream:    deps.Stream,
		logger:    logger.Named("http"),
		hasher:    utils.DefaultHasher(),
		started:   time.Now(),
	}
}

// Routes registers every command route on r
func (h *Handlers) Routes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/state", h.GetState)

	r.POST("/navigate", h.Navigate)
	r.POST("/tree/:id/expand", h.Expand)
	r.POST("/tree/:id/collapse", h.Collapse)
	r.POST("/tree/:id/activate", h.Activate)

	r.POST("/entries/load", h.Load)
	r.PUT("/editor", h.Edit)
	r.POST("/entries/save", h.Save)
	r.POST("/entries", h.Create)
	r.DELETE("/entries", h.Delete)
	r.GET("/search", h.Search)

	r.POST("/send", h.Send)
	r.GET("/exports/:name", h.Download)
	r.POST("/logs", h.StreamLogs)
}

// Root handles a bare liveness probe
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Workspace Manager",
		"version": "1.0.0",
	})
}

// Health reports bootstrap progress and traffic counters.
// It answers 503 until the workspace is ready.
func (h *Handlers) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	switch {
	case h.workspace.Failed():
		status, code = "failed", http.StatusServiceUnavailable
	case !h.workspace.Ready():
		status, code = "starting", http.StatusServiceUnavailable
	}

	body := gin.H{
		"status":         status,
		"ready":          h.workspace.Ready(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	if h.chat != nil {
		body["session"] = h.chat.Stats()
	}
	if h.stream != nil {
		body["stream_clients"] = h.stream.Clients()
	}
	c.JSON(code, body)
}

// GetState returns the controller state, button enablement and tree
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ready":   h.workspace.Ready(),
		"state":   h.stateView(),
		"tree":    h.workspace.Tree(),
	})
}

// Search lists entries whose path matches the pattern query
func (h *Handlers) Search(c *gin.Context) {
	pattern := c.Query("pattern")
	if err := utils.ValidatePattern(pattern); err != nil {
		badRequest(c, err)
		return
	}
	if h.search == nil || !h.workspace.Ready() {
		h.fail(c, workspace.ErrNotReady, nil)
		return
	}

	entries, err := h.search.Glob(c.Request.Context(), pattern)
	if err != nil {
		h.logger.Warn("Search failed", zap.String("pattern", pattern), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pattern": pattern,
		"entries": entries,
		"count":   len(entries),
	})
}

// Download serves an exported client source file
func (h *Handlers) Download(c *gin.Context) {
	if h.downloads == nil {
		notFound(c, "export not found")
		return
	}

	d, err := h.downloads.Lookup(c.Param("name"))
	if err != nil {
		if errors.Is(err, export.ErrNotExported) {
			notFound(c, "export not found")
			return
		}
		h.logger.Error("Export lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	data, err := os.ReadFile(d.Path)
	if err != nil {
		h.logger.Error("Failed to read export", zap.String("name", d.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to read export"})
		return
	}

	etag := h.hasher.ETag(data)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
	c.Data(http.StatusOK, d.ContentType, data)
}
