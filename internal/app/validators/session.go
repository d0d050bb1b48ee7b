package validators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

// Compile-time interface checks.
var (
	_ dispatch.SessionValidator = (*Session)(nil)
	_ PrincipalResolver         = (*Session)(nil)
)

// Session accepts requests that carry the ID of a live server-side session.
type Session struct {
	store ports.SessionStore
	now   func() time.Time
}

// SessionOption configures a Session validator.
type SessionOption func(*Session)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession returns a Session validator backed by store.
func NewSession(store ports.SessionStore, opts ...SessionOption) *Session {
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate accepts the credentials if their session exists and has not
// expired. Store failures reject the request.
func (v *Session) Validate(ctx context.Context, creds session.Credentials) error {
	_, err := v.Principal(ctx, creds)
	return err
}

// Principal returns the owner of the session named in creds.
func (v *Session) Principal(ctx context.Context, creds session.Credentials) (session.Principal, error) {
	if creds.SessionID == "" {
		return session.Principal{}, fmt.Errorf("%w: missing session", domain.ErrUnauthorized)
	}

	s, err := v.store.Get(ctx, creds.SessionID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return session.Principal{}, fmt.Errorf("%w: unknown session", domain.ErrUnauthorized)
	case err != nil:
		return session.Principal{}, fmt.Errorf("loading session: %w", err)
	}
	if s.Expired(v.now()) {
		return session.Principal{}, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}

	return session.PrincipalOf(s), nil
}
