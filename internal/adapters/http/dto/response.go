// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
)

// DispatchResponse wraps the result of a single dispatched action.
type DispatchResponse struct {
	Type   string `json:"type"`
	Result any    `json:"result"`
}

// ActionListResponse lists the registered actions.
type ActionListResponse struct {
	Actions []dispatch.Descriptor `json:"actions"`
	Count   int                   `json:"count"`
}

// ToActionListResponse converts registry descriptors to an HTTP response DTO.
func ToActionListResponse(descriptors []dispatch.Descriptor) ActionListResponse {
	if descriptors == nil {
		descriptors = []dispatch.Descriptor{}
	}
	return ActionListResponse{
		Actions: descriptors,
		Count:   len(descriptors),
	}
}

// BatchResponse reports every outcome of a batch. Items that failed carry a
// problem instead of a result.
type BatchResponse struct {
	OnFailure  string              `json:"on_failure"`
	RolledBack bool                `json:"rolled_back"`
	Items      []BatchItemResponse `json:"items"`
	Total      int                 `json:"total"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
}

// BatchItemResponse is the outcome of one batch item.
type BatchItemResponse struct {
	Index  int            `json:"index"`
	Type   string         `json:"type"`
	Result any            `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// ToBatchResponse converts a dispatch.BatchResult to an HTTP response DTO.
func ToBatchResponse(policy dispatch.FailurePolicy, result *dispatch.BatchResult) BatchResponse {
	items := make([]BatchItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = BatchItemResponse{Index: i, Type: item.ActionType}
		if item.Err != nil {
			problem := NewProblem(item.Err)
			items[i].Error = &problem
			continue
		}
		items[i].Result = item.Result
	}

	failed := result.Failed()
	return BatchResponse{
		OnFailure:  policy.String(),
		RolledBack: result.RolledBack,
		Items:      items,
		Total:      len(items),
		Succeeded:  len(items) - failed,
		Failed:     failed,
	}
}

// HealthResponse is the body of the liveness and readiness endpoints. Checks
// maps each readiness check to "ok" or its failure message.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
