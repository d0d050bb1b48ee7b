package dispatch

import (
	"context"
	"errors"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

// Action is an immutable request descriptor. ActionType returns the stable
// token the action is registered under; it must not depend on field values.
type Action interface {
	ActionType() string
}

// Result is the outcome of a handled action. Each Action type is bound to
// exactly one concrete Result type.
type Result any

// Handler executes actions of type A and produces results of type R.
type Handler[A Action, R any] interface {
	Execute(ctx context.Context, action A) (R, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc[A Action, R any] func(ctx context.Context, action A) (R, error)

// Execute calls f(ctx, action).
func (f HandlerFunc[A, R]) Execute(ctx context.Context, action A) (R, error) {
	return f(ctx, action)
}

// Undoer is implemented by handlers whose effects can be reverted. Batch
// dispatch calls Undo on already completed actions when a later one fails.
type Undoer[A Action, R any] interface {
	Undo(ctx context.Context, action A, result R) error
}

// SessionValidator decides whether the caller may run an action. A nil
// error allows the action; any error rejects it.
type SessionValidator interface {
	Validate(ctx context.Context, creds session.Credentials) error
}

// ValidatorFunc adapts an ordinary function to the SessionValidator interface.
type ValidatorFunc func(ctx context.Context, creds session.Credentials) error

// Validate calls f(ctx, creds).
func (f ValidatorFunc) Validate(ctx context.Context, creds session.Credentials) error {
	return f(ctx, creds)
}

// HandlerFactory constructs the handler for one request. It is typically
// backed by the dependency injection container.
type HandlerFactory[A Action, R any] func() (Handler[A, R], error)

// ValidatorFactory constructs the session validator for one request.
type ValidatorFactory func() (SessionValidator, error)

// ErrAccessDenied is returned by DenyAll.
var ErrAccessDenied = errors.New("dispatch: access denied")

// AllowAll accepts every caller. It is the validator of actions bound
// without an explicit one.
var AllowAll SessionValidator = ValidatorFunc(func(context.Context, session.Credentials) error {
	return nil
})

// DenyAll rejects every caller.
var DenyAll SessionValidator = ValidatorFunc(func(context.Context, session.Credentials) error {
	return ErrAccessDenied
})

// Handle returns a factory that always yields h.
func Handle[A Action, R any](h Handler[A, R]) HandlerFactory[A, R] {
	return func() (Handler[A, R], error) { return h, nil }
}

// Guard returns a factory that always yields v.
func Guard(v SessionValidator) ValidatorFactory {
	return func() (SessionValidator, error) { return v, nil }
}

type credentialsKey struct{}

// WithCredentials returns a copy of ctx carrying the caller's credentials.
func WithCredentials(ctx context.Context, creds session.Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFromContext returns the credentials the current action is being
// dispatched with. The second result is false outside of a dispatch.
func CredentialsFromContext(ctx context.Context) (session.Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(session.Credentials)
	return creds, ok
}
