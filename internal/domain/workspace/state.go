package workspace

import (
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Status texts shown next to the editor
const (
	StatusLoading   = "Loading..."
	StatusUnsaved   = "Unsaved changes"
	StatusSaving    = "Saving..."
	StatusSaveError = "Save failed"
	StatusDeleting  = "Deleting..."
	StatusDelError  = "Delete failed"
	StatusProcessed = "Message processed"
)

// State is the single application state owned by the controller
type State struct {
	CurrentDirectory string             `json:"current_directory"`
	SelectedPath     string             `json:"selected_path,omitempty"`
	Dirty            bool               `json:"dirty"`
	EditorText       string             `json:"editor_text"`
	Status           string             `json:"status"`
	LastAgentConfig  *types.AgentConfig `json:"last_agent_config,omitempty"`
}

// InitialState returns the state before bootstrap
func InitialState() State {
	return State{CurrentDirectory: paths.Root}
}

// HasSelection reports whether an entry is loaded in the editor
func (s State) HasSelection() bool {
	return s.SelectedPath != ""
}

// HasText reports whether the edit surface holds non-blank text
func (s State) HasText() bool {
	return strings.TrimSpace(s.EditorText) != ""
}

// Buttons derives affordance enablement from the state
func (s State) Buttons() types.ButtonStates {
	return ButtonStates(s.HasSelection(), s.Dirty, s.HasText())
}

// ButtonStates is the enablement function shared by every operation
func ButtonStates(hasSelection, dirty, hasText bool) types.ButtonStates {
	return types.ButtonStates{
		Save:   hasSelection && dirty,
		Delete: hasSelection,
		Send:   hasText,
	}
}

// Event is an input to Reduce
type Event interface {
	event()
}

// Navigated replaces the listed directory
type Navigated struct{ Dir string }

// LoadStarted selects Path before its content arrives
type LoadStarted struct{ Path string }

// LoadSucceeded installs the fetched entry in the editor
type LoadSucceeded struct{ Entry *types.Entry }

// LoadFailed clears the selection after a failed fetch
type LoadFailed struct{ Path string }

// Edited is a change of the edit surface
type Edited struct{ Text string }

// SaveStarted marks the selected entry as being persisted
type SaveStarted struct{ Path string }

// Saved commits Text of Path at Timestamp
type Saved struct {
	Path      string
	Text      string
	Timestamp time.Time
}

// SaveFailed reports a rejected write of Path
type SaveFailed struct{ Path string }

// DeleteStarted marks Path as being deleted
type DeleteStarted struct{ Path string }

// Deleted removes Path from the selection
type Deleted struct{ Path string }

// DeleteFailed leaves the selection intact
type DeleteFailed struct{ Path string }

// ConfigAccepted records the most recently validated agent configuration
type ConfigAccepted struct{ Config *types.AgentConfig }

// DispatchStarted disables sending while a message is in flight
type DispatchStarted struct{}

// DispatchCompleted consumes the edit surface after a send to ChatPath.
// Nothing is consumed when another entry was selected in the meantime.
type DispatchCompleted struct{ ChatPath string }

// Settled recomputes affordances from the current state
type Settled struct{}

func (Navigated) event()         {}
func (LoadStarted) event()       {}
func (LoadSucceeded) event()     {}
func (LoadFailed) event()        {}
func (Edited) event()            {}
func (SaveStarted) event()       {}
func (Saved) event()             {}
func (SaveFailed) event()        {}
func (DeleteStarted) event()     {}
func (Deleted) event()           {}
func (DeleteFailed) event()      {}
func (ConfigAccepted) event()    {}
func (DispatchStarted) event()   {}
func (DispatchCompleted) event() {}
func (Settled) event()           {}

// Effect is a side effect requested by a transition
type Effect interface {
	effect()
}

// ClearEditor empties the editor surface
type ClearEditor struct{}

// ClearSession drops the active chat view
type ClearSession struct{}

// SetStatus replaces the status text
type SetStatus struct{ Text string }

// SetEditorText replaces the edit surface content
type SetEditorText struct{ Text string }

// RefreshButtons pushes the enablement computed at transition time
type RefreshButtons struct{ States types.ButtonStates }

func (ClearEditor) effect()    {}
func (ClearSession) effect()   {}
func (SetStatus) effect()      {}
func (SetEditorText) effect()  {}
func (RefreshButtons) effect() {}

// Reduce is the pure transition function of the controller.
// Events carry every value captured before a suspension point, so Reduce
// never has to guess whether shared fields changed in between.
func Reduce(s State, ev Event) (State, []Effect) {
	var effects []Effect

	switch e := ev.(type) {
	case Navigated:
		s.CurrentDirectory = e.Dir
		s.SelectedPath = ""
		s.Dirty = false
		s.EditorText = ""
		s.Status = ""
		effects = append(effects, ClearEditor{}, ClearSession{}, SetStatus{})

	case LoadStarted:
		s.SelectedPath = e.Path
		s.Dirty = false
		s.Status = StatusLoading
		effects = append(effects, ClearEditor{}, ClearSession{}, SetStatus{Text: StatusLoading})

	case LoadSucceeded:
		s.SelectedPath = e.Entry.Path
		s.EditorText = e.Entry.Text()
		s.Status = ""
		effects = append(effects, SetStatus{})

	case LoadFailed:
		if s.SelectedPath == e.Path {
			s.SelectedPath = ""
			s.EditorText = ""
			s.Status = ""
			effects = append(effects, ClearEditor{}, SetStatus{})
		}

	case Edited:
		s.EditorText = e.Text
		switch {
		case s.HasSelection() && paths.InChats(s.SelectedPath):
			s.Dirty = false
			s.Status = ""
			effects = append(effects, SetStatus{})
		case s.HasSelection() && !s.Dirty:
			s.Dirty = true
			s.Status = StatusUnsaved
			effects = append(effects, SetStatus{Text: StatusUnsaved})
		}

	case SaveStarted:
		s.Status = StatusSaving
		effects = append(effects, SetStatus{Text: StatusSaving})
		return s, append(effects, RefreshButtons{States: types.ButtonStates{Send: s.HasText()}})

	case Saved:
		if s.SelectedPath == e.Path {
			if s.EditorText == e.Text {
				s.Dirty = false
			}
			s.Status = "Saved: " + FormatTimestamp(e.Timestamp)
			effects = append(effects, SetStatus{Text: s.Status})
		}

	case SaveFailed:
		if s.SelectedPath == e.Path {
			s.Status = StatusSaveError
			effects = append(effects, SetStatus{Text: StatusSaveError})
		}

	case DeleteStarted:
		s.Status = StatusDeleting
		effects = append(effects, SetStatus{Text: StatusDeleting})
		return s, append(effects, RefreshButtons{States: types.ButtonStates{Send: s.HasText()}})

	case Deleted:
		if s.SelectedPath == e.Path {
			s.SelectedPath = ""
			s.Dirty = false
			s.EditorText = ""
			s.Status = ""
			effects = append(effects, ClearEditor{}, ClearSession{}, SetStatus{})
		}

	case DeleteFailed:
		s.Status = StatusDelError
		effects = append(effects, SetStatus{Text: StatusDelError})

	case ConfigAccepted:
		s.LastAgentConfig = e.Config
		return s, nil

	case DispatchStarted:
		b := s.Buttons()
		b.Send = false
		return s, []Effect{RefreshButtons{States: b}}

	case DispatchCompleted:
		if s.SelectedPath == e.ChatPath {
			s.EditorText = ""
			s.Dirty = false
			s.Status = StatusProcessed
			effects = append(effects, SetEditorText{}, SetStatus{Text: StatusProcessed})
		}

	case Settled:
	}

	return s, append(effects, RefreshButtons{States: s.Buttons()})
}

// FormatTimestamp renders an entry timestamp for status texts
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
