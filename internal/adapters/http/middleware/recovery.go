package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

// errPanicked is what the client sees for a recovered panic. The panic value
// and stack stay in the log.
var errPanicked = errors.New("internal server error")

// Recovery returns middleware that turns a panic in the transport layer into
// a 500 problem response. Panics inside action handlers never get here; the
// dispatcher reports those as execution failures.
//
// The entry goes to the request logger when one is in context and to logger
// otherwise. If the response has already started, only the log entry is
// written.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				attrs := []any{
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}
				if actionType := actionTypeFromPath(r.URL.Path); actionType != "" {
					attrs = append(attrs, slog.String("action_type", actionType))
				}
				logging.FromContextOr(r.Context(), logger).ErrorContext(r.Context(), "panic recovered", attrs...)

				if !rw.headerWritten {
					dto.WriteErrorResponse(rw, r, errPanicked)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
