// Package session holds the caller identity types shared by session
// validators, the session store, and the transport adapters.
package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// Credentials is what the transport extracted from an inbound request.
// Validators decide whether these credentials may run a given action.
type Credentials struct {
	BearerToken string
	SessionID   string
	ClientIP    string
}

// Anonymous reports whether the request carried neither a token nor a session.
func (c Credentials) Anonymous() bool {
	return c.BearerToken == "" && c.SessionID == ""
}

// Session is a server-side login session.
type Session struct {
	ID        string
	Subject   string
	Roles     []string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Validate checks business rules for the Session entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with per-field details,
// or nil if all rules pass.
func (s *Session) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(s.ID) == "" {
		fields["id"] = domain.MsgRequired
	}
	if strings.TrimSpace(s.Subject) == "" {
		fields["subject"] = domain.MsgRequired
	}
	for i, role := range s.Roles {
		if strings.TrimSpace(role) == "" {
			fields[fmt.Sprintf("roles[%d]", i)] = "must not be blank"
		}
	}
	if !s.ExpiresAt.After(s.CreatedAt) {
		fields["expires_at"] = "must be after created_at"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Principal is the authenticated identity behind a request.
type Principal struct {
	Subject   string
	Roles     []string
	SessionID string
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// PrincipalOf returns the principal owning s.
func PrincipalOf(s *Session) Principal {
	return Principal{
		Subject:   s.Subject,
		Roles:     slices.Clone(s.Roles),
		SessionID: s.ID,
	}
}
