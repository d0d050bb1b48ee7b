package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

// SessionStore defines the client port for server-side session persistence.
// Implemented by the SQLite store adapter; called by the application layer.
type SessionStore interface {
	// Create persists a new session.
	// Returns domain.ErrValidation if the session fails validation and
	// domain.ErrConflict if the ID is already taken.
	Create(ctx context.Context, s *session.Session) error

	// Get returns the session with the given ID.
	// Returns domain.ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete removes the session with the given ID.
	// Returns domain.ErrNotFound if the session does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session that expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
