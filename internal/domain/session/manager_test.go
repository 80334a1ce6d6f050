package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]string
	putErr  error
}

func (s *memStore) Get(ctx context.Context, path string) (*types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.entries[path]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &types.Entry{Path: path, Type: types.EntryFile, Content: &content}, nil
}

func (s *memStore) Put(ctx context.Context, path, content string) (*types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return nil, s.putErr
	}
	s.entries[path] = content
	return &types.Entry{Path: path, Type: types.EntryFile, Content: &content}, nil
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type recordingRenderer struct {
	path     string
	messages []types.Message
	calls    int
}

func (r *recordingRenderer) ShowTranscript(path string, messages []types.Message) {
	r.path = path
	r.messages = messages
	r.calls++
}

type staticPrompter string

func (p staticPrompter) PromptCredential(context.Context) (string, error) {
	return string(p), nil
}

var helper = &types.AgentConfig{
	Name: "Helper",
	Configurations: map[string]interface{}{
		"model":         "openai/gpt-4o",
		"temperature":   0.2,
		"system_prompt": "Be brief.",
	},
}

const chatPath = "/chats/c.json"

func newTestManager(t *testing.T) (*Manager, *memStore, *mockCompleter, *recordingRenderer) {
	t.Helper()
	store := &memStore{entries: map[string]string{chatPath: `{"id":"c","messages":[]}`}}
	completer := &mockCompleter{}
	view := &recordingRenderer{}
	return NewManager(store, completer, view, nil, nil), store, completer, view
}

func TestSendPersistsTranscript(t *testing.T) {
	m, store, completer, view := newTestManager(t)
	m.SetActiveConfig(helper)

	completer.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
		return req.Model == "openai/gpt-4o" &&
			req.Credential == "sk-1" &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == RoleSystem &&
			req.Messages[1].Content == "hi" &&
			req.Params["temperature"] == 0.2 &&
			req.Params["model"] == nil
	})).Return("hello!", nil).Once()

	require.NoError(t, m.Send(context.Background(), "hi", "sk-1", chatPath))

	chat, err := types.ParseChatSession(store.entries[chatPath])
	require.NoError(t, err)
	assert.Equal(t, "c", chat.ID)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, RoleUser, chat.Messages[0].Role)
	assert.Equal(t, "hello!", chat.Messages[1].Content)

	path, messages := m.Transcript()
	assert.Equal(t, chatPath, path)
	assert.Len(t, messages, 2)
	assert.Len(t, view.messages, 2)
	assert.Equal(t, Stats{Sent: 1}, m.Stats())
	completer.AssertExpectations(t)
}

func TestSendContinuesOpenTranscript(t *testing.T) {
	m, store, completer, _ := newTestManager(t)
	m.SetActiveConfig(helper)
	completer.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)

	content := store.entries[chatPath]
	require.NoError(t, m.LoadInto(context.Background(), &types.Entry{Path: chatPath, Content: &content}))
	require.NoError(t, m.Send(context.Background(), "one", "k", chatPath))
	require.NoError(t, m.Send(context.Background(), "two", "k", chatPath))

	chat, err := types.ParseChatSession(store.entries[chatPath])
	require.NoError(t, err)
	assert.Len(t, chat.Messages, 4)
}

func TestSendRequiresConfig(t *testing.T) {
	m, _, completer, _ := newTestManager(t)

	err := m.Send(context.Background(), "hi", "k", chatPath)

	assert.ErrorIs(t, err, ErrNoAgentConfig)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestSendCredentialSources(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		m, _, _, _ := newTestManager(t)
		m.SetActiveConfig(helper)
		err := m.Send(context.Background(), "hi", "", chatPath)
		assert.ErrorIs(t, err, ErrCredentialRequired)
		assert.Equal(t, Stats{Failed: 1}, m.Stats())
	})

	t.Run("context", func(t *testing.T) {
		m, _, completer, _ := newTestManager(t)
		m.SetActiveConfig(helper)
		completer.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
			return req.Credential == "from-request"
		})).Return("ok", nil)
		ctx := WithCredential(context.Background(), "from-request")
		assert.NoError(t, m.Send(ctx, "hi", "", chatPath))
	})

	t.Run("prompter", func(t *testing.T) {
		store := &memStore{entries: map[string]string{chatPath: `{"id":"c","messages":[]}`}}
		completer := &mockCompleter{}
		completer.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
			return req.Credential == "typed"
		})).Return("ok", nil)
		m := NewManager(store, completer, nil, staticPrompter("typed"), nil)
		m.SetActiveConfig(helper)
		assert.NoError(t, m.Send(context.Background(), "hi", "", chatPath))
	})
}

func TestSendCompletionFailurePersistsNothing(t *testing.T) {
	m, store, completer, view := newTestManager(t)
	m.SetActiveConfig(helper)
	before := store.entries[chatPath]
	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

	err := m.Send(context.Background(), "hi", "k", chatPath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, before, store.entries[chatPath])
	assert.Empty(t, view.messages)
	assert.Equal(t, uint64(1), m.Stats().Failed)
}

func TestSendMissingChat(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	m.SetActiveConfig(helper)

	err := m.Send(context.Background(), "hi", "k", "/chats/ghost.json")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestClearKeepsActiveConfig(t *testing.T) {
	m, store, _, view := newTestManager(t)
	m.SetActiveConfig(helper)
	content := store.entries[chatPath]
	require.NoError(t, m.LoadInto(context.Background(), &types.Entry{Path: chatPath, Content: &content}))

	m.Clear()
	m.Clear()

	path, messages := m.Transcript()
	assert.Empty(t, path)
	assert.Nil(t, messages)
	assert.Same(t, helper, m.ActiveConfig())
	assert.Equal(t, 2, view.calls, "clearing a closed session renders nothing")
}

func TestLoadIntoRejectsGarbage(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	garbage := "not json"
	err := m.LoadInto(context.Background(), &types.Entry{Path: chatPath, Content: &garbage})
	assert.Error(t, err)
}
