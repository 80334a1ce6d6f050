package workspace

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// Kind classifies controller failures
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindStoreFailure
	KindExportFailure
	KindSessionFailure
	KindPrecondition
	KindBusy
	KindNotReady
	KindCancelled
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindStoreFailure:
		return "store_failure"
	case KindExportFailure:
		return "export_failure"
	case KindSessionFailure:
		return "session_failure"
	case KindPrecondition:
		return "precondition"
	case KindBusy:
		return "busy"
	case KindNotReady:
		return "not_ready"
	case KindCancelled:
		return "cancelled"
	default:
		return "internal"
	}
}

// Common errors
var (
	ErrBusy           = errors.New("entry has an operation in flight")
	ErrNotReady       = errors.New("workspace is not ready")
	ErrCancelled      = errors.New("cancelled by user")
	ErrNoSelection    = errors.New("no entry selected")
	ErrNotDirty       = errors.New("no unsaved changes")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrReadOnly       = errors.New("directory does not accept new entries")
	ErrNotDirectory   = errors.New("not a directory")
	ErrIsDirectory    = errors.New("is a directory")
	ErrNoAgentConfig  = errors.New("no agent configuration loaded")
	ErrUnknownNode    = errors.New("unknown tree node")
	ErrAlreadyStarted = errors.New("bootstrap already ran")
)

// Error is a classified controller failure
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// storeError classifies a failure reported by the entry store
func storeError(op, path string, err error) *Error {
	if errors.Is(err, types.ErrNotFound) {
		return newError(KindNotFound, op, path, err)
	}
	if errors.Is(err, types.ErrExists) {
		return newError(KindPrecondition, op, path, err)
	}
	return newError(KindStoreFailure, op, path, err)
}

// KindOf extracts the kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, types.ErrNotFound):
		return KindNotFound
	}
	return KindInternal
}
