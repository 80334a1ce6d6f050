package ws

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

var (
	_ workspace.View   = (*Hub)(nil)
	_ session.Renderer = (*Hub)(nil)
)

// LoadingPayload toggles the tree loading indicator
type LoadingPayload struct {
	Loading bool   `json:"loading"`
	Message string `json:"message,omitempty"`
}

// NoticePayload is a transient or persistent user notice.
// DurationMS of zero means the notice stays until replaced.
type NoticePayload struct {
	Message    string            `json:"message"`
	Level      types.NoticeLevel `json:"level"`
	DurationMS int64             `json:"duration_ms"`
}

// EditorPayload replaces the edit surface; a nil entry clears it
type EditorPayload struct {
	Entry *types.Entry `json:"entry"`
}

// TextPayload carries a single string
type TextPayload struct {
	Text string `json:"text"`
}

// AgentConfigPayload shows the parsed agent configuration or why it failed
type AgentConfigPayload struct {
	Config *types.AgentConfig `json:"config"`
	Error  string             `json:"error,omitempty"`
}

// TranscriptPayload is the conversation of a chat
type TranscriptPayload struct {
	Path     string          `json:"path"`
	Messages []types.Message `json:"messages"`
}

func (h *Hub) RenderTree(snapshot workspace.TreeSnapshot) {
	h.broadcast(TypeTree, snapshot, true)
}

func (h *Hub) SetLoading(loading bool, message string) {
	h.broadcast(TypeLoading, LoadingPayload{Loading: loading, Message: message}, true)
}

func (h *Hub) ShowNotice(message string, level types.NoticeLevel, duration time.Duration) {
	persistent := duration == types.Persistent
	h.mu.Lock()
	if !persistent {
		delete(h.last, TypeNotice)
	}
	h.mu.Unlock()

	h.broadcast(TypeNotice, NoticePayload{
		Message:    message,
		Level:      level,
		DurationMS: duration.Milliseconds(),
	}, persistent)
}

func (h *Hub) ShowEditor(entry *types.Entry) {
	h.mu.Lock()
	delete(h.last, TypeEditorText)
	h.mu.Unlock()
	h.broadcast(TypeEditor, EditorPayload{Entry: entry}, true)
}

func (h *Hub) SetEditorText(text string) {
	h.broadcast(TypeEditorText, TextPayload{Text: text}, true)
}

func (h *Hub) SetStatus(text string) {
	h.broadcast(TypeStatus, TextPayload{Text: text}, true)
}

func (h *Hub) SetButtonStates(states types.ButtonStates) {
	h.broadcast(TypeButtons, states, true)
}

func (h *Hub) ShowAgentConfig(cfg *types.AgentConfig, err error) {
	payload := AgentConfigPayload{Config: cfg}
	if err != nil {
		payload.Error = err.Error()
	}
	h.broadcast(TypeAgentConfig, payload, true)
}

// ShowTranscript implements session.Renderer
func (h *Hub) ShowTranscript(chatPath string, messages []types.Message) {
	h.broadcast(TypeTranscript, TranscriptPayload{Path: chatPath, Messages: messages}, true)
}
