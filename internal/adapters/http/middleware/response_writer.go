package middleware

import (
	"net/http"
	"strings"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
)

// responseWriter records what the handler sent so recovery, tracing and
// logging can report it after the fact.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the first status code; later calls are dropped.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// outcome classifies the response for logs and spans: "ok" for a regular
// document, "problem" for an RFC 9457 error document, "error" for any other
// failure status.
func (rw *responseWriter) outcome() string {
	if strings.HasPrefix(rw.Header().Get("Content-Type"), dto.ContentTypeProblem) {
		return "problem"
	}
	if rw.statusCode >= http.StatusBadRequest {
		return "error"
	}
	return "ok"
}
