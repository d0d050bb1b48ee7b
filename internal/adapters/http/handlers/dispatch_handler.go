package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

// ParamActionType is the chi URL parameter holding the action type token.
const ParamActionType = "actionType"

// DispatchHandler exposes the dispatcher over HTTP. Credentials are expected
// in the request context, placed there by middleware.Credentials.
type DispatchHandler struct {
	dispatcher ports.Dispatcher
}

// NewDispatchHandler creates a DispatchHandler backed by dispatcher.
func NewDispatchHandler(dispatcher ports.Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher}
}

// Dispatch handles POST /api/v1/dispatch/{actionType}. The body is the
// action's JSON payload; an empty body stands for an action without fields.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	actionType := chi.URLParam(r, ParamActionType)

	payload, ok := readBody(w, r)
	if !ok {
		return
	}

	action, err := h.dispatcher.Decode(actionType, payload)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	creds, _ := dispatch.CredentialsFromContext(r.Context())
	result, err := h.dispatcher.Dispatch(r.Context(), creds, action)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DispatchResponse{Type: actionType, Result: result})
}

// Batch handles POST /api/v1/batch. Every item is decoded before any runs;
// a bad item fails the whole request with its index in the problem.
func (h *DispatchHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	policy, err := dispatch.ParseFailurePolicy(req.OnFailure)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	actions := make([]dispatch.Action, len(req.Actions))
	for i, item := range req.Actions {
		action, err := h.dispatcher.Decode(item.Type, item.Payload)
		if err != nil {
			dto.WriteErrorResponse(w, r, &dispatch.BatchItemError{Index: i, ActionType: item.Type, Err: err})
			return
		}
		actions[i] = action
	}

	creds, _ := dispatch.CredentialsFromContext(r.Context())
	result, err := h.dispatcher.DispatchBatch(r.Context(), creds, actions, policy)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToBatchResponse(policy, result))
}

// ListActions handles GET /api/v1/actions.
func (h *DispatchHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.ToActionListResponse(h.dispatcher.Describe()))
}
