package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// maxErrorBodySize limits how much of an error response body we read.
const maxErrorBodySize = 1 << 20 // 1 MB

// TranslateHTTPError maps an error response from a dispatch endpoint back to
// the error the remote dispatcher returned. Problem types with a dispatch URN
// become the typed dispatch errors; anything else maps to a domain sentinel
// by status code.
func TranslateHTTPError(resp *http.Response) error {
	pd := parseProblem(resp)
	if pd.Status == 0 {
		pd.Status = resp.StatusCode
	}
	return problemError(&pd)
}

// problemError rebuilds an error from a decoded problem document. It is also
// used for the per-item errors embedded in a batch response.
func problemError(pd *dto.ErrorResponse) error {
	detail := pd.Detail
	if detail == "" {
		detail = http.StatusText(pd.Status)
	}

	var err error
	switch pd.Type {
	case dto.TypeUnregisteredAction:
		err = &dispatch.UnregisteredActionError{ActionType: pd.ActionType}
	case dto.TypeSessionRejected:
		rejected := &dispatch.SessionValidationError{ActionType: pd.ActionType}
		if pd.Cause != "" {
			rejected.Err = errors.New(pd.Cause)
		}
		err = rejected
	case dto.TypeExecutionFailed:
		err = &dispatch.ActionExecutionError{
			ActionType: pd.ActionType,
			Message:    pd.Message,
			Cause:      remoteCause(pd),
		}
	default:
		err = statusError(pd, detail)
	}

	if pd.Index != nil {
		return &dispatch.BatchItemError{Index: *pd.Index, ActionType: pd.ActionType, Err: err}
	}
	return err
}

// remoteCause rebuilds the cause of an execution failure. The cause text is
// kept verbatim and the sentinel matching the status is attached so
// errors.Is keeps working across the wire.
func remoteCause(pd *dto.ErrorResponse) error {
	if len(pd.Errors) > 0 {
		return toValidationError(pd.Errors)
	}

	sentinel := statusSentinel(pd.Status)
	switch {
	case pd.Cause == "" && sentinel == nil:
		return nil
	case pd.Cause == "":
		return sentinel
	case sentinel == nil:
		return errors.New(pd.Cause)
	default:
		return &causeError{msg: pd.Cause, sentinel: sentinel}
	}
}

// causeError carries a remote error message while matching a local sentinel.
type causeError struct {
	msg      string
	sentinel error
}

func (e *causeError) Error() string { return e.msg }

func (e *causeError) Unwrap() error { return e.sentinel }

func statusError(pd *dto.ErrorResponse, detail string) error {
	if (pd.Status == http.StatusBadRequest || pd.Status == http.StatusUnprocessableEntity) && len(pd.Errors) > 0 {
		return toValidationError(pd.Errors)
	}
	if sentinel := statusSentinel(pd.Status); sentinel != nil {
		return fmt.Errorf("%s: %w", detail, sentinel)
	}
	return fmt.Errorf("unexpected status %d: %s", pd.Status, detail)
}

func statusSentinel(status int) error {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case status == http.StatusConflict:
		return domain.ErrConflict
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout:
		return domain.ErrUnavailable
	default:
		return nil
	}
}

// parseProblem reads an RFC 9457 body from the response. It returns an empty
// problem when the body is missing or is not problem+json.
func parseProblem(resp *http.Response) dto.ErrorResponse {
	if resp.Body == nil {
		return dto.ErrorResponse{}
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/problem+json") {
		return dto.ErrorResponse{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return dto.ErrorResponse{}
	}

	var pd dto.ErrorResponse
	if err := json.Unmarshal(body, &pd); err != nil {
		return dto.ErrorResponse{}
	}
	return pd
}

// toValidationError converts problem error details to a domain ValidationError,
// stripping the "body." prefix from locations.
func toValidationError(details []dto.ErrorDetail) *domain.ValidationError {
	fields := make(map[string]string, len(details))
	for _, d := range details {
		field := strings.TrimPrefix(d.Location, "body.")
		fields[field] = d.Message
	}
	return &domain.ValidationError{Fields: fields}
}
