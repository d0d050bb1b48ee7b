package dispatch

import (
	"errors"
	"fmt"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// Configuration errors returned while binding.
var (
	ErrInvalidBinding = errors.New("dispatch: invalid binding")
	ErrRegistryFrozen = errors.New("dispatch: registry is frozen")
)

// Request errors that are not tied to a specific binding.
var (
	ErrNilAction     = errors.New("dispatch: nil action")
	ErrEmptyBatch    = errors.New("dispatch: batch has no actions")
	ErrBatchTooLarge = errors.New("dispatch: batch exceeds the configured size")
)

const defaultExecutionMessage = "dispatch: action execution failed"

// DuplicateRegistrationError is returned when an action type is bound twice.
// The first binding stays in effect.
type DuplicateRegistrationError struct {
	ActionType string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("dispatch: action %q is already registered", e.ActionType)
}

// Is reports domain.ErrConflict so callers can classify duplicates generically.
func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == domain.ErrConflict
}

// UnregisteredActionError is returned when no binding exists for an action.
// Neither a validator nor a handler has run.
type UnregisteredActionError struct {
	ActionType string
}

func (e *UnregisteredActionError) Error() string {
	return fmt.Sprintf("dispatch: no handler registered for action %q", e.ActionType)
}

// SessionValidationError is returned when the action's validator rejected the
// caller or could not be constructed. The handler has not run.
type SessionValidationError struct {
	ActionType string
	Err        error
}

func (e *SessionValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dispatch: session rejected for action %q", e.ActionType)
	}
	return fmt.Sprintf("dispatch: session rejected for action %q: %v", e.ActionType, e.Err)
}

// Unwrap exposes both domain.ErrForbidden and the validator's own error.
func (e *SessionValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrForbidden}
	}
	return []error{domain.ErrForbidden, e.Err}
}

// ActionExecutionError is returned when a handler could not be constructed
// or its execution failed. Handlers may return one directly to control the
// message seen by callers.
type ActionExecutionError struct {
	ActionType string
	Message    string
	Cause      error
}

// NewActionError returns an ActionExecutionError with the given message and
// cause. Either may be empty.
func NewActionError(message string, cause error) *ActionExecutionError {
	return &ActionExecutionError{Message: message, Cause: cause}
}

// Error renders "message (cause)" when both parts are present, otherwise
// whichever part exists.
func (e *ActionExecutionError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + " (" + e.Cause.Error() + ")"
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return defaultExecutionMessage
	}
}

func (e *ActionExecutionError) Unwrap() error {
	return e.Cause
}

// executionError converts a handler failure into an ActionExecutionError.
// A top-level ActionExecutionError is reused so the message is never wrapped
// twice. One wrapped deeper is kept as the cause so the outer context stays
// in the message.
func executionError(actionType string, err error) *ActionExecutionError {
	if aerr, ok := err.(*ActionExecutionError); ok {
		if aerr.ActionType != "" {
			return aerr
		}
		cp := *aerr
		cp.ActionType = actionType
		return &cp
	}
	return &ActionExecutionError{ActionType: actionType, Cause: err}
}
