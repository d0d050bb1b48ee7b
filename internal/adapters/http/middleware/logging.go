package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

// dispatchPathPrefix is the route prefix under which the last path segment
// names the action being dispatched.
const dispatchPathPrefix = "/api/v1/dispatch/"

// Logging returns middleware that builds a per-request child logger, stores
// it with logging.WithLogger, and logs request start and completion.
//
// The child logger carries request_id, correlation_id and auth. Requests to
// the single-action dispatch route also carry action_type, so every line a
// validator or handler logs through logging.FromContext names the action.
// Completions with a 5xx status are logged at warn level.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			attrs := []any{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", CorrelationIDFromContext(ctx)),
				slog.String("auth", authKind(r)),
			}
			if actionType := actionTypeFromPath(r.URL.Path); actionType != "" {
				attrs = append(attrs, slog.String("action_type", actionType))
			}
			child := logger.With(attrs...)
			ctx = logging.WithLogger(ctx, child)

			child.InfoContext(ctx, "request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if child.Enabled(ctx, slog.LevelDebug) {
				headerAttrs := RedactHeaders(r.Header)
				args := make([]any, 0, len(headerAttrs))
				for _, a := range headerAttrs {
					args = append(args, a)
				}
				child.DebugContext(ctx, "request headers", args...)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			level := slog.LevelInfo
			if rw.statusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			child.Log(ctx, level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.String("outcome", rw.outcome()),
				slog.Int64("bytes", rw.written),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// authKind names the credential kind on the request without revealing it.
func authKind(r *http.Request) string {
	creds, ok := dispatch.CredentialsFromContext(r.Context())
	switch {
	case !ok, creds.Anonymous():
		return "anonymous"
	case creds.BearerToken != "":
		return "bearer"
	default:
		return "session"
	}
}

// actionTypeFromPath returns the action type of a single-action dispatch
// path, or "" for any other route.
func actionTypeFromPath(path string) string {
	actionType, ok := strings.CutPrefix(path, dispatchPathPrefix)
	if !ok || actionType == "" || strings.Contains(actionType, "/") {
		return ""
	}
	return actionType
}
