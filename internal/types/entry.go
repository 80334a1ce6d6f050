package types

import "time"

// EntryType distinguishes files from directories
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
)

// Entry is a path-keyed unit of persisted workspace data
type Entry struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Type      EntryType `json:"type"`
	Content   *string   `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IsDir reports whether the entry is a directory
func (e *Entry) IsDir() bool {
	return e.Type == EntryDirectory
}

// Text returns the file content or an empty string
func (e *Entry) Text() string {
	if e.Content == nil {
		return ""
	}
	return *e.Content
}

// ButtonStates is the enablement of the editor affordances
type ButtonStates struct {
	Save   bool `json:"save"`
	Delete bool `json:"delete"`
	Send   bool `json:"send"`
}

// NoticeLevel is the severity of a user-facing notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Persistent marks a notice that must not auto-dismiss
const Persistent time.Duration = 0
