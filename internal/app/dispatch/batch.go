package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

// FailurePolicy selects how a batch reacts to a failing action.
type FailurePolicy int

const (
	// OnFailureRollback runs actions in order and stops at the first failure,
	// undoing the already completed actions in reverse order.
	OnFailureRollback FailurePolicy = iota
	// OnFailureContinue runs every action, concurrently, and reports each
	// outcome separately.
	OnFailureContinue
)

func (p FailurePolicy) String() string {
	switch p {
	case OnFailureRollback:
		return "rollback"
	case OnFailureContinue:
		return "continue"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy converts "rollback" or "continue" to a FailurePolicy.
// The empty string selects OnFailureRollback.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "rollback":
		return OnFailureRollback, nil
	case "continue":
		return OnFailureContinue, nil
	default:
		return 0, domain.NewValidationError("on_failure", fmt.Sprintf("must be rollback or continue, got %q", s))
	}
}

// ItemResult is the outcome of one action in a batch. Exactly one of Result
// and Err is meaningful.
type ItemResult struct {
	ActionType string
	Result     Result
	Err        error
}

// BatchResult holds the per-action outcomes of a batch, in input order.
type BatchResult struct {
	Items []ItemResult
	// RolledBack is true when a rollback-mode batch failed and undo ran.
	RolledBack bool
}

// Failed returns the number of items that ended with an error.
func (r *BatchResult) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// BatchItemError wraps the failure of one action in a rollback-mode batch.
type BatchItemError struct {
	Index      int
	ActionType string
	Err        error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("batch item %d (%s): %v", e.Index, e.ActionType, e.Err)
}

func (e *BatchItemError) Unwrap() error {
	return e.Err
}

// DispatchBatch runs several actions for the same caller. Each action goes
// through the same validate-then-handle pipeline as Dispatch.
//
// With OnFailureRollback the returned error is a *BatchItemError for the
// first failing action, and the BatchResult describes everything that ran.
// With OnFailureContinue the error is nil unless the batch itself is invalid;
// per-action failures are reported in the BatchResult.
func (d *Dispatcher) DispatchBatch(ctx context.Context, creds session.Credentials, actions []Action, policy FailurePolicy) (*BatchResult, error) {
	switch {
	case len(actions) == 0:
		return nil, ErrEmptyBatch
	case len(actions) > d.maxBatchSize:
		return nil, fmt.Errorf("%w: %d actions, limit %d", ErrBatchTooLarge, len(actions), d.maxBatchSize)
	}

	if policy == OnFailureContinue {
		return d.runConcurrent(ctx, creds, actions), nil
	}
	return d.runSequential(ctx, creds, actions)
}

func (d *Dispatcher) runSequential(ctx context.Context, creds session.Credentials, actions []Action) (*BatchResult, error) {
	logger := logging.FromContextOr(ctx, d.logger)
	out := &BatchResult{Items: make([]ItemResult, 0, len(actions))}

	for i, action := range actions {
		res, err := d.Dispatch(ctx, creds, action)
		out.Items = append(out.Items, ItemResult{ActionType: typeOf(action), Result: res, Err: err})
		if err == nil {
			continue
		}

		logger.ErrorContext(ctx, "batch action failed, initiating rollback",
			slog.String("operation", "Dispatcher.DispatchBatch"),
			slog.Int("failed_step", i+1),
			slog.Int("total", len(actions)),
			slog.String("action_type", typeOf(action)),
			slog.Any("error", err),
		)
		d.undo(WithCredentials(ctx, creds), actions, out.Items, i-1, logger)
		out.RolledBack = true
		return out, &BatchItemError{Index: i, ActionType: typeOf(action), Err: err}
	}

	return out, nil
}

// undo reverts items 0..upTo (inclusive) in reverse order. Undo errors are
// logged and do not stop the remaining undos.
func (d *Dispatcher) undo(ctx context.Context, actions []Action, items []ItemResult, upTo int, logger *slog.Logger) {
	for i := upTo; i >= 0; i-- {
		actionType := items[i].ActionType
		binding, ok := d.registry.Lookup(actionType)
		if !ok {
			continue
		}

		undone, err := safeUndo(ctx, binding, actions[i], items[i].Result)
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "undo failed",
				slog.String("operation", "Dispatcher.DispatchBatch"),
				slog.Int("step", i+1),
				slog.String("action_type", actionType),
				slog.Any("error", err),
			)
		case undone:
			logger.InfoContext(ctx, "action undone",
				slog.String("operation", "Dispatcher.DispatchBatch"),
				slog.Int("step", i+1),
				slog.String("action_type", actionType),
			)
		}
	}
}

func safeUndo(ctx context.Context, binding *Binding, action Action, result Result) (undone bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			undone, err = false, fmt.Errorf("undo panicked: %v", r)
		}
	}()
	return binding.undo(ctx, action, result)
}

// runConcurrent dispatches every action with at most d.batchWorkers in
// flight. Results keep input order. An action that has not started when ctx
// is canceled records ctx.Err() and is not dispatched.
func (d *Dispatcher) runConcurrent(ctx context.Context, creds session.Credentials, actions []Action) *BatchResult {
	items := make([]ItemResult, len(actions))
	sem := make(chan struct{}, d.batchWorkers)
	var wg sync.WaitGroup

	for i, action := range actions {
		items[i].ActionType = typeOf(action)
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return
			}
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				items[i].Err = ctx.Err()
				return
			}

			items[i].Result, items[i].Err = d.Dispatch(ctx, creds, action)
		}()
	}

	wg.Wait()
	return &BatchResult{Items: items}
}

func typeOf(action Action) string {
	if action == nil {
		return ""
	}
	return action.ActionType()
}
