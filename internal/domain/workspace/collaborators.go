package workspace

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Store is the path-keyed entry store.
// Missing paths are reported with types.ErrNotFound.
type Store interface {
	List(ctx context.Context, dir string) ([]types.Entry, error)
	Get(ctx context.Context, path string) (*types.Entry, error)
	Put(ctx context.Context, path, content string) (*types.Entry, error)
	Delete(ctx context.Context, path string) error
	EnsureDirectory(ctx context.Context, dir string) error
}

// Opener opens the entry store during bootstrap
type Opener func(ctx context.Context) (Store, error)

// View renders controller output.
// Calls are fire-and-forget and must not block on the client.
type View interface {
	RenderTree(snapshot TreeSnapshot)
	SetLoading(loading bool, message string)
	ShowNotice(message string, level types.NoticeLevel, duration time.Duration)
	ShowEditor(entry *types.Entry)
	SetEditorText(text string)
	SetStatus(text string)
	SetButtonStates(states types.ButtonStates)
	ShowAgentConfig(cfg *types.AgentConfig, err error)
}

// Session runs chat conversations against the loaded agent configuration
type Session interface {
	Send(ctx context.Context, message, credential, chatPath string) error
	LoadInto(ctx context.Context, entry *types.Entry) error
	Clear()
	ActiveConfig() *types.AgentConfig
	SetActiveConfig(cfg *types.AgentConfig)
}

// Exporter hands saved client source to the user for manual replacement
type Exporter interface {
	Export(ctx context.Context, name, content string) (string, error)
}

// SourceFetcher reads bundled client source during bootstrap
type SourceFetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// Recorder observes operation outcomes
type Recorder interface {
	RecordOperation(op, status string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string, time.Duration) {}

type nopView struct{}

func (nopView) RenderTree(TreeSnapshot)                             {}
func (nopView) SetLoading(bool, string)                             {}
func (nopView) ShowNotice(string, types.NoticeLevel, time.Duration) {}
func (nopView) ShowEditor(*types.Entry)                             {}
func (nopView) SetEditorText(string)                                {}
func (nopView) SetStatus(string)                                    {}
func (nopView) SetButtonStates(types.ButtonStates)                  {}
func (nopView) ShowAgentConfig(*types.AgentConfig, error)           {}
