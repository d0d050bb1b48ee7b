package actions

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// Action type tokens. They are part of the public API and must never change.
const (
	TypePing         = "ping"
	TypeEcho         = "echo"
	TypeOpenSession  = "session.open"
	TypeWhoAmI       = "session.whoami"
	TypeCloseSession = "session.close"
	TypeCatalog      = "admin.catalog"
)

// MaxEchoLength bounds the echo message, in characters.
const MaxEchoLength = 256

// Ping checks that the dispatcher is serving.
type Ping struct{}

// ActionType implements dispatch.Action.
func (Ping) ActionType() string { return TypePing }

// Pong is the result of Ping.
type Pong struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Echo returns its message unchanged.
type Echo struct {
	Message string `json:"message"`
}

// ActionType implements dispatch.Action.
func (Echo) ActionType() string { return TypeEcho }

// Validate checks the message bounds for callers that build Echo directly.
func (e Echo) Validate() error {
	n := utf8.RuneCountInString(e.Message)
	switch {
	case n == 0:
		return domain.NewValidationError("message", domain.MsgRequired)
	case n > MaxEchoLength:
		return domain.NewValidationError("message", "must be at most 256 characters")
	}
	return nil
}

// Echoed is the result of Echo.
type Echoed struct {
	Message string `json:"message"`
}

// OpenSession creates a server-side session for Subject. Only callers holding
// a token signed by the configured issuer may run it.
type OpenSession struct {
	Subject    string   `json:"subject"`
	Roles      []string `json:"roles,omitempty"`
	TTLSeconds int      `json:"ttl_seconds,omitempty"`
}

// ActionType implements dispatch.Action.
func (OpenSession) ActionType() string { return TypeOpenSession }

// Validate checks business rules for OpenSession.
func (o OpenSession) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(o.Subject) == "" {
		fields["subject"] = domain.MsgRequired
	}
	if o.TTLSeconds < 0 {
		fields["ttl_seconds"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// SessionOpened is the result of OpenSession.
type SessionOpened struct {
	SessionID string    `json:"session_id"`
	Subject   string    `json:"subject"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WhoAmI reports the principal behind the caller's session.
type WhoAmI struct{}

// ActionType implements dispatch.Action.
func (WhoAmI) ActionType() string { return TypeWhoAmI }

// Identity is the result of WhoAmI.
type Identity struct {
	Subject   string   `json:"subject"`
	Roles     []string `json:"roles"`
	SessionID string   `json:"session_id,omitempty"`
}

// CloseSession ends the caller's session.
type CloseSession struct{}

// ActionType implements dispatch.Action.
func (CloseSession) ActionType() string { return TypeCloseSession }

// SessionClosed is the result of CloseSession.
type SessionClosed struct {
	SessionID string `json:"session_id"`
}

// ListCatalog lists every registered action.
type ListCatalog struct{}

// ActionType implements dispatch.Action.
func (ListCatalog) ActionType() string { return TypeCatalog }

// Catalog is the result of ListCatalog.
type Catalog struct {
	Actions []dispatch.Descriptor `json:"actions"`
}

const echoSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 256}
	},
	"required": ["message"],
	"additionalProperties": false
}`

// MaxSessionTTLSeconds bounds ttl_seconds whatever the configured policy.
const MaxSessionTTLSeconds = 366 * 24 * 60 * 60

const openSessionSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"subject": {"type": "string", "minLength": 1},
		"roles": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"ttl_seconds": {"type": "integer", "minimum": 0, "maximum": 31622400}
	},
	"required": ["subject"],
	"additionalProperties": false
}`
