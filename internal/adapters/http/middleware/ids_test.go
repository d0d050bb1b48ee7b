package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/middleware"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// captureIDs runs RequestID then CorrelationID and returns what the handler saw.
func captureIDs(t *testing.T, headers map[string]string) (reqID, corrID string, rec *httptest.ResponseRecorder) {
	t.Helper()

	handler := middleware.RequestID()(middleware.CorrelationID()(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			reqID = middleware.RequestIDFromContext(r.Context())
			corrID = middleware.CorrelationIDFromContext(r.Context())
		}),
	))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch/ping", http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	handler.ServeHTTP(rec, req)
	return reqID, corrID, rec
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	t.Parallel()

	reqID, _, rec := captureIDs(t, nil)

	if !uuidPattern.MatchString(reqID) {
		t.Errorf("generated ID %q does not match UUID v4 pattern", reqID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != reqID {
		t.Errorf("response X-Request-ID = %q, want %q", got, reqID)
	}
}

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	t.Parallel()

	reqID, _, rec := captureIDs(t, map[string]string{"X-Request-ID": "edge-7f3a:01"})

	if reqID != "edge-7f3a:01" {
		t.Errorf("RequestIDFromContext = %q, want %q", reqID, "edge-7f3a:01")
	}
	if got := rec.Header().Get("X-Request-ID"); got != "edge-7f3a:01" {
		t.Errorf("response X-Request-ID = %q, want %q", got, "edge-7f3a:01")
	}
}

func TestRequestID_ReplacesMalformedHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{"newline injection", "abc\nlevel=ERROR"},
		{"spaces", "two words"},
		{"too long", strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reqID, _, _ := captureIDs(t, map[string]string{"X-Request-ID": tt.id})
			if !uuidPattern.MatchString(reqID) {
				t.Errorf("RequestIDFromContext = %q, want a generated UUID", reqID)
			}
		})
	}
}

func TestRequestID_UniqueAcrossRequests(t *testing.T) {
	t.Parallel()

	ids := make(map[string]bool)
	for range 50 {
		reqID, _, _ := captureIDs(t, nil)
		ids[reqID] = true
	}
	if len(ids) != 50 {
		t.Errorf("unique IDs = %d, want 50", len(ids))
	}
}

func TestCorrelationID_ReusesIncomingHeader(t *testing.T) {
	t.Parallel()

	_, corrID, rec := captureIDs(t, map[string]string{"X-Correlation-ID": "batch-42"})

	if corrID != "batch-42" {
		t.Errorf("CorrelationIDFromContext = %q, want %q", corrID, "batch-42")
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != "batch-42" {
		t.Errorf("response X-Correlation-ID = %q, want %q", got, "batch-42")
	}
}

func TestCorrelationID_FallsBackToRequestID(t *testing.T) {
	t.Parallel()

	reqID, corrID, _ := captureIDs(t, map[string]string{
		"X-Request-ID":     "req-1",
		"X-Correlation-ID": "bad value",
	})

	if corrID != reqID {
		t.Errorf("CorrelationIDFromContext = %q, want request ID %q", corrID, reqID)
	}
}

func TestIDsFromContext_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := middleware.RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext = %q, want empty", got)
	}
	if got := middleware.CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("CorrelationIDFromContext = %q, want empty", got)
	}
}

func TestWithIDs_StoreInContext(t *testing.T) {
	t.Parallel()

	ctx := middleware.WithRequestID(context.Background(), "r")
	ctx = middleware.WithCorrelationID(ctx, "c")

	if got := middleware.RequestIDFromContext(ctx); got != "r" {
		t.Errorf("RequestIDFromContext = %q, want %q", got, "r")
	}
	if got := middleware.CorrelationIDFromContext(ctx); got != "c" {
		t.Errorf("CorrelationIDFromContext = %q, want %q", got, "c")
	}
}
