package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Session errors
var (
	ErrNoAgentConfig      = errors.New("no agent configuration is active")
	ErrCredentialRequired = errors.New("model credential required")
	ErrEmptyMessage       = errors.New("message is empty")
)

// Roles of transcript messages
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// EntryStore reads and writes chat transcripts
type EntryStore interface {
	Get(ctx context.Context, path string) (*types.Entry, error)
	Put(ctx context.Context, path, content string) (*types.Entry, error)
}

// CompletionRequest is one round trip to the model
type CompletionRequest struct {
	Model      string
	Messages   []types.Message
	Credential string
	Params     map[string]interface{}
}

// Completer produces the assistant reply for a conversation
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CredentialPrompter asks the user for a model credential
type CredentialPrompter interface {
	PromptCredential(ctx context.Context) (string, error)
}

// Renderer displays the active transcript
type Renderer interface {
	ShowTranscript(chatPath string, messages []types.Message)
}

type credentialKey struct{}

// WithCredential attaches a credential supplied with the request
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential)
}

func credentialFrom(ctx context.Context) string {
	c, _ := ctx.Value(credentialKey{}).(string)
	return c
}

// Stats summarizes chat traffic
type Stats struct {
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

// Manager runs one chat conversation at a time
type Manager struct {
	mu       sync.Mutex
	store    EntryStore
	complete Completer
	prompter CredentialPrompter
	view     Renderer
	logger   *logging.Logger

	active   *types.AgentConfig
	chatPath string
	chat     *types.ChatSession

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewManager creates a session manager
func NewManager(store EntryStore, completer Completer, view Renderer, prompter CredentialPrompter, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:    store,
		complete: completer,
		view:     view,
		prompter: prompter,
		logger:   logger,
	}
}

// ActiveConfig returns the configuration used for the next send
func (m *Manager) ActiveConfig() *types.AgentConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetActiveConfig replaces the active configuration; nil clears it
func (m *Manager) SetActiveConfig(cfg *types.AgentConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = cfg
}

// LoadInto opens the transcript held by entry
func (m *Manager) LoadInto(ctx context.Context, entry *types.Entry) error {
	chat, err := types.ParseChatSession(entry.Text())
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.chatPath = entry.Path
	m.chat = chat
	messages := append([]types.Message(nil), chat.Messages...)
	m.mu.Unlock()

	m.render(entry.Path, messages)
	return nil
}

// Clear closes the open transcript. The active configuration is kept.
func (m *Manager) Clear() {
	m.mu.Lock()
	wasOpen := m.chat != nil
	m.chatPath = ""
	m.chat = nil
	m.mu.Unlock()

	if wasOpen {
		m.render("", nil)
	}
}

// Transcript returns the open chat path and a copy of its messages
func (m *Manager) Transcript() (string, []types.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chat == nil {
		return "", nil
	}
	return m.chatPath, append([]types.Message(nil), m.chat.Messages...)
}

// Stats returns the traffic counters
func (m *Manager) Stats() Stats {
	return Stats{Sent: m.sent.Load(), Failed: m.failed.Load()}
}

// Send appends message to the transcript at chatPath, asks the model for a
// reply and persists both. Nothing is persisted when the model fails.
func (m *Manager) Send(ctx context.Context, message, credential, chatPath string) error {
	if message == "" {
		return ErrEmptyMessage
	}

	cfg := m.ActiveConfig()
	if cfg == nil {
		return ErrNoAgentConfig
	}

	credential, err := m.resolveCredential(ctx, credential)
	if err != nil {
		m.failed.Add(1)
		return err
	}

	chat, err := m.transcriptFor(ctx, chatPath)
	if err != nil {
		m.failed.Add(1)
		return err
	}

	history := append(append([]types.Message(nil), chat.Messages...), types.NewMessage(RoleUser, message))
	m.render(chatPath, history)

	reply, err := m.complete.Complete(ctx, CompletionRequest{
		Model:      cfg.Model(),
		Messages:   withSystemPrompt(cfg, history),
		Credential: credential,
		Params:     params(cfg),
	})
	if err != nil {
		m.failed.Add(1)
		m.logger.Warn("Completion failed",
			zap.String("chat", chatPath),
			zap.String("model", cfg.Model()),
			zap.Error(err))
		m.render(chatPath, chat.Messages)
		return fmt.Errorf("completion: %w", err)
	}

	updated := &types.ChatSession{
		ID:       chat.ID,
		Messages: append(history, types.NewMessage(RoleAssistant, reply)),
	}
	content, err := types.EncodeJSON(updated)
	if err != nil {
		m.failed.Add(1)
		return fmt.Errorf("encode transcript: %w", err)
	}
	if _, err := m.store.Put(ctx, chatPath, content); err != nil {
		m.failed.Add(1)
		return fmt.Errorf("save transcript: %w", err)
	}

	m.mu.Lock()
	if m.chatPath == chatPath || m.chat == nil {
		m.chatPath = chatPath
		m.chat = updated
	}
	m.mu.Unlock()

	m.sent.Add(1)
	m.logger.Debug("Message sent",
		zap.String("chat", chatPath),
		zap.Int("messages", len(updated.Messages)))
	m.render(chatPath, updated.Messages)
	return nil
}

func (m *Manager) resolveCredential(ctx context.Context, credential string) (string, error) {
	if credential != "" {
		return credential, nil
	}
	if c := credentialFrom(ctx); c != "" {
		return c, nil
	}
	if m.prompter == nil {
		return "", ErrCredentialRequired
	}
	c, err := m.prompter.PromptCredential(ctx)
	if err != nil {
		return "", fmt.Errorf("prompt credential: %w", err)
	}
	if c == "" {
		return "", ErrCredentialRequired
	}
	return c, nil
}

// transcriptFor returns the open transcript when it matches chatPath,
// otherwise reads it from the store
func (m *Manager) transcriptFor(ctx context.Context, chatPath string) (*types.ChatSession, error) {
	m.mu.Lock()
	if m.chat != nil && m.chatPath == chatPath {
		chat := *m.chat
		m.mu.Unlock()
		return &chat, nil
	}
	m.mu.Unlock()

	entry, err := m.store.Get(ctx, chatPath)
	if err != nil {
		return nil, fmt.Errorf("open chat %s: %w", chatPath, err)
	}
	return types.ParseChatSession(entry.Text())
}

func (m *Manager) render(chatPath string, messages []types.Message) {
	if m.view != nil {
		m.view.ShowTranscript(chatPath, messages)
	}
}

// withSystemPrompt prepends the configured system prompt, if any
func withSystemPrompt(cfg *types.AgentConfig, history []types.Message) []types.Message {
	prompt, _ := cfg.Configurations["system_prompt"].(string)
	if prompt == "" {
		return history
	}
	return append([]types.Message{{Role: RoleSystem, Content: prompt}}, history...)
}

// params returns the model parameters other than the model and prompt
func params(cfg *types.AgentConfig) map[string]interface{} {
	out := make(map[string]interface{}, len(cfg.Configurations))
	for k, v := range cfg.Configurations {
		if k == "model" || k == "system_prompt" {
			continue
		}
		out[k] = v
	}
	return out
}
