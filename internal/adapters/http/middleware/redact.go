package middleware

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

const redacted = "[REDACTED]"

// RedactHeaders returns one attribute per header, sorted by name, for the
// debug request log. Credential headers (logging.SensitiveHeaders) are
// replaced with "[REDACTED]"; multi-value headers are comma-joined.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		value := strings.Join(headers[name], ",")
		if logging.SensitiveHeaders[strings.ToLower(name)] {
			value = redacted
		}
		attrs = append(attrs, slog.String(name, value))
	}
	return attrs
}
