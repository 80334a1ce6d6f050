package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

func lastButtons(t *testing.T, effects []Effect) types.ButtonStates {
	t.Helper()
	for i := len(effects) - 1; i >= 0; i-- {
		if rb, ok := effects[i].(RefreshButtons); ok {
			return rb.States
		}
	}
	t.Fatal("no RefreshButtons effect")
	return types.ButtonStates{}
}

func TestButtonStates(t *testing.T) {
	tests := []struct {
		name                   string
		selection, dirty, text bool
		want                   types.ButtonStates
	}{
		{"nothing", false, false, false, types.ButtonStates{}},
		{"selected clean", true, false, false, types.ButtonStates{Delete: true}},
		{"selected dirty", true, true, false, types.ButtonStates{Save: true, Delete: true}},
		{"dirty without selection", false, true, false, types.ButtonStates{}},
		{"text only", false, false, true, types.ButtonStates{Send: true}},
		{"everything", true, true, true, types.ButtonStates{Save: true, Delete: true, Send: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ButtonStates(tt.selection, tt.dirty, tt.text))
		})
	}
}

func TestReduceNavigatedResetsSelection(t *testing.T) {
	s := State{CurrentDirectory: "/", SelectedPath: "/notes.txt", Dirty: true, EditorText: "x"}

	next, effects := Reduce(s, Navigated{Dir: "/agents/"})

	assert.Equal(t, "/agents/", next.CurrentDirectory)
	assert.Empty(t, next.SelectedPath)
	assert.False(t, next.Dirty)
	assert.Empty(t, next.EditorText)
	assert.Contains(t, effects, Effect(ClearEditor{}))
	assert.Contains(t, effects, Effect(ClearSession{}))
	assert.Equal(t, types.ButtonStates{}, lastButtons(t, effects))
}

func TestReduceEditedMarksDocumentDirtyOnce(t *testing.T) {
	s := State{SelectedPath: "/notes.txt", EditorText: "a"}

	next, effects := Reduce(s, Edited{Text: "ab"})
	assert.True(t, next.Dirty)
	assert.Equal(t, StatusUnsaved, next.Status)
	assert.Contains(t, effects, Effect(SetStatus{Text: StatusUnsaved}))
	assert.Equal(t, types.ButtonStates{Save: true, Delete: true, Send: true}, lastButtons(t, effects))

	again, effects := Reduce(next, Edited{Text: "abc"})
	assert.True(t, again.Dirty)
	assert.NotContains(t, effects, Effect(SetStatus{Text: StatusUnsaved}))
}

func TestReduceEditedChatNeverDirty(t *testing.T) {
	for _, p := range []string{"/chats/chat_1.json", "/chats/readme.txt"} {
		s := State{SelectedPath: p, Dirty: true, Status: "stale"}
		next, effects := Reduce(s, Edited{Text: "hello"})
		assert.False(t, next.Dirty, p)
		assert.Empty(t, next.Status, p)
		assert.Contains(t, effects, Effect(SetStatus{}))
	}
}

func TestReduceEditedWithoutSelection(t *testing.T) {
	next, effects := Reduce(State{}, Edited{Text: "hi"})
	assert.False(t, next.Dirty)
	assert.Equal(t, types.ButtonStates{Send: true}, lastButtons(t, effects))

	next, effects = Reduce(next, Edited{Text: "   "})
	assert.Equal(t, types.ButtonStates{}, lastButtons(t, effects))
	assert.Equal(t, "   ", next.EditorText)
}

func TestReduceSavedUsesCapturedPath(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("same selection", func(t *testing.T) {
		s := State{SelectedPath: "/a.txt", Dirty: true, EditorText: "v1"}
		next, _ := Reduce(s, Saved{Path: "/a.txt", Text: "v1", Timestamp: ts})
		assert.False(t, next.Dirty)
		assert.Contains(t, next.Status, "Saved:")
	})

	t.Run("selection moved", func(t *testing.T) {
		s := State{SelectedPath: "/b.txt", Dirty: true, EditorText: "other"}
		next, _ := Reduce(s, Saved{Path: "/a.txt", Text: "v1", Timestamp: ts})
		assert.True(t, next.Dirty)
		assert.Equal(t, "/b.txt", next.SelectedPath)
	})

	t.Run("edited during save", func(t *testing.T) {
		s := State{SelectedPath: "/a.txt", Dirty: true, EditorText: "v2"}
		next, _ := Reduce(s, Saved{Path: "/a.txt", Text: "v1", Timestamp: ts})
		assert.True(t, next.Dirty)
	})
}

func TestReduceDeletedClearsMatchingSelection(t *testing.T) {
	s := State{CurrentDirectory: "/", SelectedPath: "/a.txt", Dirty: true, EditorText: "x"}

	next, effects := Reduce(s, Deleted{Path: "/a.txt"})
	assert.Empty(t, next.SelectedPath)
	assert.False(t, next.Dirty)
	assert.Equal(t, "/", next.CurrentDirectory)
	assert.Contains(t, effects, Effect(ClearSession{}))
}

func TestReduceDispatch(t *testing.T) {
	s := State{SelectedPath: "/chats/c.json", EditorText: "hello"}

	_, effects := Reduce(s, DispatchStarted{})
	assert.Equal(t, types.ButtonStates{Delete: true}, lastButtons(t, effects))

	next, effects := Reduce(s, DispatchCompleted{ChatPath: "/chats/c.json"})
	assert.Empty(t, next.EditorText)
	assert.False(t, next.Dirty)
	assert.Equal(t, StatusProcessed, next.Status)
	assert.Contains(t, effects, Effect(SetEditorText{}))
	assert.Equal(t, types.ButtonStates{Delete: true}, lastButtons(t, effects))
}

func TestReduceDispatchCompletedKeepsOtherSelection(t *testing.T) {
	s := State{SelectedPath: "/notes.txt", EditorText: "draft", Dirty: true, Status: StatusUnsaved}

	next, effects := Reduce(s, DispatchCompleted{ChatPath: "/chats/c.json"})

	assert.Equal(t, s, next)
	assert.NotContains(t, effects, Effect(SetEditorText{}))
	assert.Equal(t, types.ButtonStates{Save: true, Delete: true, Send: true}, lastButtons(t, effects))
}

func TestReduceConfigAcceptedHasNoEffects(t *testing.T) {
	cfg := &types.AgentConfig{Name: "a", Configurations: map[string]interface{}{"model": "m"}}
	next, effects := Reduce(State{}, ConfigAccepted{Config: cfg})
	assert.Same(t, cfg, next.LastAgentConfig)
	assert.Empty(t, effects)
}
