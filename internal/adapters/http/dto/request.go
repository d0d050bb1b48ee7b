package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

// BatchRequest represents the JSON body of POST /api/v1/batch.
type BatchRequest struct {
	OnFailure string             `json:"on_failure"`
	Actions   []BatchItemRequest `json:"actions"`
}

// BatchItemRequest is one action of a batch: its type token and raw payload.
type BatchItemRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate checks that the batch names at least one action and that every
// action has a type. The failure policy and payloads are checked later by
// the dispatcher.
// Returns a *domain.ValidationError if any checks fail.
func (r *BatchRequest) Validate() error {
	fields := make(map[string]string)

	if len(r.Actions) == 0 {
		fields["actions"] = domain.MsgRequired
	}
	for i, item := range r.Actions {
		if strings.TrimSpace(item.Type) == "" {
			fields[fmt.Sprintf("actions[%d].type", i)] = domain.MsgRequired
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
