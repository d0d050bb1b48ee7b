package remote

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

func problemResponse(status int, body string) *http.Response {
	header := http.Header{}
	if strings.HasPrefix(body, "{") {
		header.Set("Content-Type", "application/problem+json")
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestTranslateHTTPError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"404 maps to ErrNotFound", http.StatusNotFound, domain.ErrNotFound},
		{"400 maps to ErrValidation", http.StatusBadRequest, domain.ErrValidation},
		{"422 maps to ErrValidation", http.StatusUnprocessableEntity, domain.ErrValidation},
		{"409 maps to ErrConflict", http.StatusConflict, domain.ErrConflict},
		{"401 maps to ErrUnauthorized", http.StatusUnauthorized, domain.ErrUnauthorized},
		{"403 maps to ErrForbidden", http.StatusForbidden, domain.ErrForbidden},
		{"502 maps to ErrUnavailable", http.StatusBadGateway, domain.ErrUnavailable},
		{"503 maps to ErrUnavailable", http.StatusServiceUnavailable, domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := TranslateHTTPError(problemResponse(tt.statusCode, ""))

			if !errors.Is(got, tt.wantErr) {
				t.Errorf("TranslateHTTPError() = %v, want errors.Is %v", got, tt.wantErr)
			}
		})
	}
}

func TestTranslateHTTPError_UnknownStatus(t *testing.T) {
	t.Parallel()

	got := TranslateHTTPError(problemResponse(http.StatusTeapot, "short and stout"))

	if !strings.Contains(got.Error(), "unexpected status 418") {
		t.Errorf("error = %q, want unexpected status", got)
	}
}

func TestTranslateHTTPError_DetailFromProblem(t *testing.T) {
	t.Parallel()

	body := `{"type":"about:blank","title":"Not Found","status":404,"detail":"route /x: not found"}`
	got := TranslateHTTPError(problemResponse(http.StatusNotFound, body))

	if !strings.Contains(got.Error(), "route /x") {
		t.Errorf("error = %q, want detail from body", got)
	}
}

func TestTranslateHTTPError_NonProblemBodyIgnored(t *testing.T) {
	t.Parallel()

	resp := problemResponse(http.StatusConflict, "Conflict")
	got := TranslateHTTPError(resp)

	if !errors.Is(got, domain.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", got)
	}
	if !strings.Contains(got.Error(), "Conflict") {
		t.Errorf("error = %q, want status text", got)
	}
}

func TestTranslateHTTPError_ValidationFields(t *testing.T) {
	t.Parallel()

	body := `{
		"type": "about:blank",
		"status": 400,
		"errors": [
			{"location": "body.message", "message": "is required"},
			{"location": "body", "message": "invalid JSON"}
		]
	}`
	got := TranslateHTTPError(problemResponse(http.StatusBadRequest, body))

	var verr *domain.ValidationError
	if !errors.As(got, &verr) {
		t.Fatalf("error = %v, want *domain.ValidationError", got)
	}
	if verr.Fields["message"] != "is required" {
		t.Errorf("Fields[message] = %q, want %q", verr.Fields["message"], "is required")
	}
	if verr.Fields["body"] != "invalid JSON" {
		t.Errorf("Fields[body] = %q, want %q", verr.Fields["body"], "invalid JSON")
	}
}

func TestTranslateHTTPError_DispatchTypes(t *testing.T) {
	t.Parallel()

	t.Run("unregistered", func(t *testing.T) {
		t.Parallel()
		body := `{"type":"urn:dispatch:unregistered-action","status":500,"action_type":"nope"}`
		got := TranslateHTTPError(problemResponse(http.StatusInternalServerError, body))

		var target *dispatch.UnregisteredActionError
		if !errors.As(got, &target) || target.ActionType != "nope" {
			t.Errorf("error = %v, want *UnregisteredActionError for nope", got)
		}
	})

	t.Run("session rejected without cause", func(t *testing.T) {
		t.Parallel()
		body := `{"type":"urn:dispatch:session-rejected","status":403,"action_type":"admin.catalog"}`
		got := TranslateHTTPError(problemResponse(http.StatusForbidden, body))

		var target *dispatch.SessionValidationError
		if !errors.As(got, &target) {
			t.Fatalf("error = %v, want *SessionValidationError", got)
		}
		if target.Err != nil {
			t.Errorf("Err = %v, want nil", target.Err)
		}
	})

	t.Run("execution failed without cause", func(t *testing.T) {
		t.Parallel()
		body := `{"type":"urn:dispatch:execution-failed","status":500,"action_type":"echo","message":"boom"}`
		got := TranslateHTTPError(problemResponse(http.StatusInternalServerError, body))

		var target *dispatch.ActionExecutionError
		if !errors.As(got, &target) {
			t.Fatalf("error = %v, want *ActionExecutionError", got)
		}
		if target.Cause != nil {
			t.Errorf("Cause = %v, want nil", target.Cause)
		}
		if got.Error() != "boom" {
			t.Errorf("Error() = %q, want %q", got.Error(), "boom")
		}
	})

	t.Run("execution failed with unmapped cause", func(t *testing.T) {
		t.Parallel()
		body := `{"type":"urn:dispatch:execution-failed","status":500,"action_type":"echo","cause":"disk full"}`
		got := TranslateHTTPError(problemResponse(http.StatusInternalServerError, body))

		if got.Error() != "disk full" {
			t.Errorf("Error() = %q, want %q", got.Error(), "disk full")
		}
	})

	t.Run("batch item", func(t *testing.T) {
		t.Parallel()
		body := `{"type":"urn:dispatch:execution-failed","status":409,"action_type":"session.open",` +
			`"message":"open failed","cause":"conflict","index":2}`
		got := TranslateHTTPError(problemResponse(http.StatusConflict, body))

		var item *dispatch.BatchItemError
		if !errors.As(got, &item) {
			t.Fatalf("error = %v, want *BatchItemError", got)
		}
		if item.Index != 2 || item.ActionType != "session.open" {
			t.Errorf("item = %+v, want index 2 for session.open", item)
		}
		if !errors.Is(got, domain.ErrConflict) {
			t.Error("errors.Is(err, ErrConflict) = false, want true")
		}
	})
}
