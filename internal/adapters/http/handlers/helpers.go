package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

// maxJSONBodyBytes caps request bodies, single actions and batches alike.
const maxJSONBodyBytes = 1 << 20

// writeJSON sends v as the response body. An encoding failure can only be
// logged, since the status line is already out.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "encoding response failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
}

// readBody returns the raw body so the dispatcher's decoder can apply the
// action's own schema. Oversized or unreadable bodies get a 400 and false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err == nil {
		return body, true
	}

	msg := "unreadable body"
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg = "exceeds 1 MB"
	}
	dto.WriteErrorResponse(w, r, domain.NewValidationError("body", msg))
	return nil, false
}

type validatable interface {
	Validate() error
}

// decodeAndValidate decodes an envelope DTO such as a batch request and runs
// its Validate. Any failure is answered with a 400 problem and false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(dst); err != nil {
		dto.WriteErrorResponse(w, r, domain.NewValidationError("body", "invalid JSON"))
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}
