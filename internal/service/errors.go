package service

import (
	"errors"
	"fmt"

	"github.com/anvaya-ai/anvaya/internal/store"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrContradictionNotFound = errors.New("contradiction not found")
	ErrFactNotFound          = errors.New("fact not found")

	// ErrOracleNotConfigured is returned when an oracle-backed operation runs
	// on a server whose oracle client failed to initialize.
	ErrOracleNotConfigured = errors.New("oracle client not configured")

	// ErrInvalidArgument is the class marker for rejected input. Concrete
	// errors carry their own message and match it via errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrProjectNameMissing = invalidArg("project_name is required")
	ErrUserIDMissing      = invalidArg("user_id is required")
	ErrNoUsableContext    = invalidArg("no relevant chats or files to extract from")
	ErrStageTooEarly      = invalidArg("map facts before running this step")
	ErrStageComplete      = invalidArg("project is already at the final stage")
	ErrTooManyFiles       = invalidArg("at most 10 files per upload")
)

type invalidArgumentError struct {
	msg string
}

func (e *invalidArgumentError) Error() string { return e.msg }

func (e *invalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func invalidArg(msg string) error {
	return &invalidArgumentError{msg: msg}
}

func invalidArgf(format string, args ...any) error {
	return &invalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports an oracle output item that violates the expected
// schema. One bad item aborts the whole batch.
type ValidationError struct {
	Item   int
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %d: field %q %s", e.Item, e.Field, e.Detail)
}

// LogicEngineError wraps a contradiction detection failure. The previously
// stored contradictions are untouched when this is returned.
type LogicEngineError struct {
	Raw string
	Err error
}

func (e *LogicEngineError) Error() string {
	return "logic engine: " + e.Err.Error()
}

func (e *LogicEngineError) Unwrap() error {
	return e.Err
}

// mapNotFound translates the store's missing-row error into the given
// service sentinel and passes everything else through.
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}
