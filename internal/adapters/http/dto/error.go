package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// Problem type URNs for dispatch failures. Remote clients switch on these to
// rebuild the typed dispatch errors, so they must never change.
const (
	TypeUnregisteredAction = "urn:dispatch:unregistered-action"
	TypeSessionRejected    = "urn:dispatch:session-rejected"
	TypeExecutionFailed    = "urn:dispatch:execution-failed"
	TypeBlank              = "about:blank"
)

// ContentTypeProblem is the media type of every error response.
const ContentTypeProblem = "application/problem+json"

// ErrorResponse represents an RFC 9457 Problem Details response. ActionType,
// Message, Cause and Index are extension members set for dispatch failures.
type ErrorResponse struct {
	Type       string        `json:"type"`
	Title      string        `json:"title"`
	Status     int           `json:"status"`
	Detail     string        `json:"detail,omitempty"`
	Instance   string        `json:"instance,omitempty"`
	Errors     []ErrorDetail `json:"errors,omitempty"`
	ActionType string        `json:"action_type,omitempty"`
	Message    string        `json:"message,omitempty"`
	Cause      string        `json:"cause,omitempty"`
	Index      *int          `json:"index,omitempty"`
}

// ErrorDetail represents a single field-level validation error within
// an ErrorResponse.
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

// NewErrorResponse creates an RFC 9457 ErrorResponse from a domain or
// dispatch error. The request is used to populate the instance field with the
// request URI.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	resp := NewProblem(err)
	resp.Instance = r.RequestURI
	return resp
}

// NewProblem creates an ErrorResponse that is not tied to a request, as used
// for the items of a batch response.
func NewProblem(err error) ErrorResponse {
	status := errorToStatus(err)

	resp := ErrorResponse{
		Type:   TypeBlank,
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}

	var (
		unregistered *dispatch.UnregisteredActionError
		rejected     *dispatch.SessionValidationError
		failed       *dispatch.ActionExecutionError
		item         *dispatch.BatchItemError
	)
	if errors.As(err, &item) {
		idx := item.Index
		resp.Index = &idx
		resp.ActionType = item.ActionType
	}
	switch {
	case errors.As(err, &unregistered):
		resp.Type = TypeUnregisteredAction
		resp.ActionType = unregistered.ActionType
	case errors.As(err, &rejected):
		resp.Type = TypeSessionRejected
		resp.ActionType = rejected.ActionType
		if rejected.Err != nil {
			resp.Cause = rejected.Err.Error()
		}
	case errors.As(err, &failed):
		resp.Type = TypeExecutionFailed
		resp.ActionType = failed.ActionType
		resp.Message = failed.Message
		if failed.Cause != nil {
			resp.Cause = failed.Cause.Error()
		}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = validationFieldsToDetails(verr.Fields)
	}

	return resp
}

// WriteErrorResponse writes an RFC 9457 error response for the given domain
// error. It sets the Content-Type to application/problem+json, writes the
// appropriate HTTP status code, and marshals the error body as JSON.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	writeProblem(w, r, NewErrorResponse(r, err))
}

// WriteStatusProblem writes an about:blank problem for a status that no
// error maps to, such as an expired request deadline.
func WriteStatusProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblem(w, r, ErrorResponse{
		Type:     TypeBlank,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.RequestURI,
	})
}

func writeProblem(w http.ResponseWriter, r *http.Request, resp ErrorResponse) {
	w.Header().Set("Content-Type", ContentTypeProblem)
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

// errorToStatus maps dispatch errors and domain sentinel errors to HTTP
// status codes. An unregistered action is a server configuration bug.
func errorToStatus(err error) int {
	var (
		unregistered *dispatch.UnregisteredActionError
		rejected     *dispatch.SessionValidationError
	)
	switch {
	case errors.As(err, &unregistered):
		return http.StatusInternalServerError
	case errors.As(err, &rejected):
		return http.StatusForbidden
	case errors.Is(err, dispatch.ErrEmptyBatch),
		errors.Is(err, dispatch.ErrBatchTooLarge),
		errors.Is(err, dispatch.ErrNilAction):
		return http.StatusBadRequest
	}
	return domainErrorToStatus(err)
}

// domainErrorToStatus maps domain sentinel errors to HTTP status codes.
func domainErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationFieldsToDetails converts domain validation fields to sorted
// ErrorDetail entries.
func validationFieldsToDetails(fields map[string]string) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fields))
	for field, msg := range fields {
		location := "body." + field
		if field == "body" {
			location = field
		}
		details = append(details, ErrorDetail{
			Location: location,
			Message:  msg,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Location < details[j].Location
	})
	return details
}
