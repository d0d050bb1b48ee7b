// Package http is the inbound HTTP adapter: the chi router exposing the
// dispatch API and the server that runs it.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// NewRouter mounts the dispatch and health endpoints behind middlewares,
// applied outermost first:
//
//	GET  /health/live
//	GET  /health/ready
//	GET  /api/v1/actions
//	POST /api/v1/dispatch/{actionType}
//	POST /api/v1/batch
//
// Unknown routes and wrong methods answer with problem documents like every
// other failure.
func NewRouter(
	dispatchHandler *handlers.DispatchHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteErrorResponse(w, req, fmt.Errorf("route %s: %w", req.URL.Path, domain.ErrNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteStatusProblem(w, req, http.StatusMethodNotAllowed,
			fmt.Sprintf("%s is not supported on %s", req.Method, req.URL.Path))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/actions", dispatchHandler.ListActions)
		r.Post("/dispatch/{"+handlers.ParamActionType+"}", dispatchHandler.Dispatch)
		r.Post("/batch", dispatchHandler.Batch)
	})

	return r
}
