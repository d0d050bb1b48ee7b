package ports

import (
	"context"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

// Dispatcher defines the service port for action dispatch.
// Implemented by *dispatch.Dispatcher; called by inbound adapters (handlers).
type Dispatcher interface {
	// Dispatch runs a single action for the caller identified by creds.
	// Returns *dispatch.UnregisteredActionError, *dispatch.SessionValidationError
	// or *dispatch.ActionExecutionError on failure.
	Dispatch(ctx context.Context, creds session.Credentials, action dispatch.Action) (dispatch.Result, error)

	// DispatchBatch runs several actions for the same caller under the given
	// failure policy. Returns dispatch.ErrEmptyBatch or dispatch.ErrBatchTooLarge
	// for batches that cannot run at all.
	DispatchBatch(ctx context.Context, creds session.Credentials, actions []dispatch.Action, policy dispatch.FailurePolicy) (*dispatch.BatchResult, error)

	// Decode builds an action from its type token and JSON payload.
	// Returns domain.ErrValidation if the payload is malformed.
	Decode(actionType string, payload []byte) (dispatch.Action, error)

	// Describe lists the registered actions ordered by type.
	Describe() []dispatch.Descriptor
}
