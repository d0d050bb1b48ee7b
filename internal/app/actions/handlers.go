package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/validators"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

// Compile-time interface checks.
var (
	_ dispatch.Handler[Ping, Pong]                  = (*PingHandler)(nil)
	_ dispatch.Handler[Echo, Echoed]                = (*EchoHandler)(nil)
	_ dispatch.Handler[OpenSession, SessionOpened]  = (*OpenSessionHandler)(nil)
	_ dispatch.Undoer[OpenSession, SessionOpened]   = (*OpenSessionHandler)(nil)
	_ dispatch.Handler[WhoAmI, Identity]            = (*WhoAmIHandler)(nil)
	_ dispatch.Handler[CloseSession, SessionClosed] = (*CloseSessionHandler)(nil)
	_ dispatch.Handler[ListCatalog, Catalog]        = (*CatalogHandler)(nil)
)

// PingHandler answers Ping.
type PingHandler struct {
	now func() time.Time
}

// NewPingHandler returns a PingHandler. A nil clock means time.Now.
func NewPingHandler(now func() time.Time) *PingHandler {
	if now == nil {
		now = time.Now
	}
	return &PingHandler{now: now}
}

// Execute implements dispatch.Handler.
func (h *PingHandler) Execute(context.Context, Ping) (Pong, error) {
	return Pong{Message: "pong", Time: h.now().UTC()}, nil
}

// EchoHandler answers Echo.
type EchoHandler struct{}

// NewEchoHandler returns an EchoHandler.
func NewEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

// Execute implements dispatch.Handler.
func (h *EchoHandler) Execute(_ context.Context, a Echo) (Echoed, error) {
	if err := a.Validate(); err != nil {
		return Echoed{}, err
	}
	return Echoed(a), nil
}

// SessionPolicy bounds the lifetime of opened sessions.
type SessionPolicy struct {
	// DefaultTTL applies when the action does not ask for a lifetime.
	DefaultTTL time.Duration
	// MaxTTL caps requested lifetimes. Zero means no cap.
	MaxTTL time.Duration
}

// OpenSessionHandler creates sessions in the session store. Its Undo deletes
// the session again, so a failed batch leaves no orphaned sessions behind.
type OpenSessionHandler struct {
	store  ports.SessionStore
	policy SessionPolicy
	now    func() time.Time
	logger *slog.Logger
}

// NewOpenSessionHandler returns an OpenSessionHandler. A nil clock means
// time.Now and a nil logger discards output.
func NewOpenSessionHandler(store ports.SessionStore, policy SessionPolicy, now func() time.Time, logger *slog.Logger) *OpenSessionHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OpenSessionHandler{store: store, policy: policy, now: now, logger: logger}
}

// Execute implements dispatch.Handler.
func (h *OpenSessionHandler) Execute(ctx context.Context, a OpenSession) (SessionOpened, error) {
	if err := a.Validate(); err != nil {
		return SessionOpened{}, err
	}

	maxSeconds := int64(MaxSessionTTLSeconds)
	if h.policy.MaxTTL > 0 {
		maxSeconds = min(maxSeconds, int64(h.policy.MaxTTL/time.Second))
	}
	tooLong := domain.NewValidationError("ttl_seconds", fmt.Sprintf("must be at most %d", maxSeconds))

	ttl := h.policy.DefaultTTL
	if a.TTLSeconds > 0 {
		// Checked in seconds first so the conversion below cannot overflow.
		if int64(a.TTLSeconds) > maxSeconds {
			return SessionOpened{}, tooLong
		}
		ttl = time.Duration(a.TTLSeconds) * time.Second
	}
	if h.policy.MaxTTL > 0 && ttl > h.policy.MaxTTL {
		return SessionOpened{}, tooLong
	}

	now := h.now().UTC()
	sess := &session.Session{
		ID:        uuid.NewString(),
		Subject:   a.Subject,
		Roles:     a.Roles,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := h.store.Create(ctx, sess); err != nil {
		return SessionOpened{}, fmt.Errorf("creating session: %w", err)
	}

	h.logger.InfoContext(ctx, "session opened",
		slog.String("subject", sess.Subject),
		slog.Time("expires_at", sess.ExpiresAt),
	)

	roles := sess.Roles
	if roles == nil {
		roles = []string{}
	}
	return SessionOpened{
		SessionID: sess.ID,
		Subject:   sess.Subject,
		Roles:     roles,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Undo implements dispatch.Undoer. A session that is already gone counts as
// undone.
func (h *OpenSessionHandler) Undo(ctx context.Context, _ OpenSession, r SessionOpened) error {
	if r.SessionID == "" {
		return nil
	}
	if err := h.store.Delete(ctx, r.SessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// WhoAmIHandler answers WhoAmI.
type WhoAmIHandler struct {
	resolver validators.PrincipalResolver
}

// NewWhoAmIHandler returns a WhoAmIHandler resolving callers with resolver.
func NewWhoAmIHandler(resolver validators.PrincipalResolver) *WhoAmIHandler {
	return &WhoAmIHandler{resolver: resolver}
}

// Execute implements dispatch.Handler.
func (h *WhoAmIHandler) Execute(ctx context.Context, _ WhoAmI) (Identity, error) {
	p, err := validators.PrincipalFromContext(ctx, h.resolver)
	if err != nil {
		return Identity{}, err
	}
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return Identity{Subject: p.Subject, Roles: roles, SessionID: p.SessionID}, nil
}

// CloseSessionHandler deletes the caller's session.
type CloseSessionHandler struct {
	store  ports.SessionStore
	logger *slog.Logger
}

// NewCloseSessionHandler returns a CloseSessionHandler. A nil logger
// discards output.
func NewCloseSessionHandler(store ports.SessionStore, logger *slog.Logger) *CloseSessionHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CloseSessionHandler{store: store, logger: logger}
}

// Execute implements dispatch.Handler.
func (h *CloseSessionHandler) Execute(ctx context.Context, _ CloseSession) (SessionClosed, error) {
	creds, _ := dispatch.CredentialsFromContext(ctx)
	if creds.SessionID == "" {
		return SessionClosed{}, fmt.Errorf("%w: missing session", domain.ErrUnauthorized)
	}
	if err := h.store.Delete(ctx, creds.SessionID); err != nil {
		return SessionClosed{}, fmt.Errorf("closing session: %w", err)
	}

	h.logger.InfoContext(ctx, "session closed")
	return SessionClosed{SessionID: creds.SessionID}, nil
}

// CatalogSource describes the registered actions.
type CatalogSource interface {
	Describe() []dispatch.Descriptor
}

// CatalogHandler answers ListCatalog.
type CatalogHandler struct {
	source CatalogSource
}

// NewCatalogHandler returns a CatalogHandler listing source.
func NewCatalogHandler(source CatalogSource) *CatalogHandler {
	return &CatalogHandler{source: source}
}

// Execute implements dispatch.Handler.
func (h *CatalogHandler) Execute(context.Context, ListCatalog) (Catalog, error) {
	return Catalog{Actions: h.source.Describe()}, nil
}
