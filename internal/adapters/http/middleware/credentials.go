package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

const (
	headerAuthorization = "Authorization"
	headerSessionID     = "X-Session-ID"
	headerForwardedFor  = "X-Forwarded-For"
	cookieSessionID     = "session_id"
	bearerPrefix        = "bearer "
)

// Credentials returns middleware that extracts the caller's credentials and
// stores them in the request context, where handlers read them with
// dispatch.CredentialsFromContext. It never rejects a request; deciding
// whether the credentials suffice is the job of each action's validator.
//
// The bearer token comes from the Authorization header. The session ID comes
// from the X-Session-ID header, falling back to the session_id cookie. When
// trustForwardedFor is set, the first X-Forwarded-For entry is taken as the
// client IP instead of the connection's remote address.
func Credentials(trustForwardedFor bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := CredentialsFromRequest(r, trustForwardedFor)
			ctx := dispatch.WithCredentials(r.Context(), creds)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CredentialsFromRequest extracts credentials from r without touching its
// context.
func CredentialsFromRequest(r *http.Request, trustForwardedFor bool) session.Credentials {
	creds := session.Credentials{
		BearerToken: bearerToken(r.Header.Get(headerAuthorization)),
		SessionID:   strings.TrimSpace(r.Header.Get(headerSessionID)),
		ClientIP:    clientIP(r, trustForwardedFor),
	}
	if creds.SessionID == "" {
		if c, err := r.Cookie(cookieSessionID); err == nil {
			creds.SessionID = c.Value
		}
	}
	return creds
}

func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func clientIP(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if fwd := r.Header.Get(headerForwardedFor); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
