package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

const (
	statusOK       = "ok"
	statusReady    = "ready"
	statusNotReady = "not_ready"
	statusTimeout  = "timeout"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	registry ports.HealthRegistry
}

// NewHealthHandler creates a HealthHandler backed by registry.
func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness handles GET /health/live. It only reports that the process is
// serving and never consults dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.HealthResponse{Status: statusOK})
}

// Readiness handles GET /health/ready. It answers 200 when every registered
// check passes and 503 otherwise. A check that ran out of time is reported as
// "timeout" rather than with its context error.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	results := h.registry.CheckAll(r.Context())

	resp := dto.HealthResponse{Status: statusReady, Checks: make(map[string]string, len(results))}
	code := http.StatusOK
	for name, err := range results {
		switch {
		case err == nil:
			resp.Checks[name] = statusOK
			continue
		case errors.Is(err, context.DeadlineExceeded):
			resp.Checks[name] = statusTimeout
		default:
			resp.Checks[name] = err.Error()
		}
		resp.Status = statusNotReady
		code = http.StatusServiceUnavailable
		logging.FromContext(r.Context()).WarnContext(r.Context(), "readiness check failed",
			slog.String("check", name),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, r, code, resp)
}
