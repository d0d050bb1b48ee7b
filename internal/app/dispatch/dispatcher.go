package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/telemetry"
)

const tracerName = "dispatch"

// Default batch limits used when a Dispatcher is built without options.
const (
	DefaultMaxBatchSize = 50
	DefaultBatchWorkers = 4
)

// Dispatcher serves actions from a frozen Registry.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	maxBatchSize int
	batchWorkers int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBatchLimits caps the number of actions per batch and the number of
// actions a continue-mode batch runs concurrently. Non-positive values keep
// the defaults.
func WithBatchLimits(maxSize, workers int) Option {
	return func(d *Dispatcher) {
		if maxSize > 0 {
			d.maxBatchSize = maxSize
		}
		if workers > 0 {
			d.batchWorkers = workers
		}
	}
}

// NewDispatcher returns a Dispatcher over reg. A nil logger discards output;
// nil metrics disable metric recording.
func NewDispatcher(reg *Registry, logger *slog.Logger, metrics *telemetry.Metrics, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{
		registry:     reg,
		logger:       logger,
		metrics:      metrics,
		maxBatchSize: DefaultMaxBatchSize,
		batchWorkers: DefaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher serves from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Describe lists the registered actions.
func (d *Dispatcher) Describe() []Descriptor {
	return d.registry.Describe()
}

// Decode builds an action from its type token and JSON payload.
func (d *Dispatcher) Decode(actionType string, payload []byte) (Action, error) {
	return d.registry.Decode(actionType, payload)
}

// Dispatch runs action on behalf of the caller identified by creds.
//
// The validator bound to the action runs first; the handler is constructed
// and executed only if the validator accepts. The handler's result is
// returned unchanged. Errors are *UnregisteredActionError,
// *SessionValidationError or *ActionExecutionError.
func (d *Dispatcher) Dispatch(ctx context.Context, creds session.Credentials, action Action) (Result, error) {
	if action == nil {
		return nil, ErrNilAction
	}
	actionType := action.ActionType()

	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "dispatch "+actionType,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("action.type", actionType)),
	)
	defer span.End()

	start := time.Now()
	result, err := d.dispatch(ctx, creds, actionType, action)
	outcome := outcomeOf(err)
	d.record(ctx, actionType, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logFailure(ctx, actionType, outcome, err)
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, creds session.Credentials, actionType string, action Action) (Result, error) {
	binding, ok := d.registry.Lookup(actionType)
	if !ok || binding.actionGoType != reflect.TypeOf(action) {
		return nil, &UnregisteredActionError{ActionType: actionType}
	}

	ctx = WithCredentials(ctx, creds)

	if err := authorize(ctx, binding, creds); err != nil {
		return nil, &SessionValidationError{ActionType: actionType, Err: err}
	}

	result, err := invoke(ctx, binding, action)
	if err != nil {
		return nil, executionError(actionType, err)
	}
	return result, nil
}

// authorize fails closed: a validator that cannot be built, or that panics,
// rejects the call.
func authorize(ctx context.Context, binding *Binding, creds session.Credentials) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panicked: %v", r)
		}
	}()

	v, err := binding.NewValidator()
	if err != nil {
		return fmt.Errorf("constructing validator: %w", err)
	}
	if v == nil {
		return errors.New("constructing validator: factory returned nil")
	}
	return v.Validate(ctx, creds)
}

func invoke(ctx context.Context, binding *Binding, action Action) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewActionError("handler panicked", fmt.Errorf("%v", r))
		}
	}()
	return binding.execute(ctx, action)
}

func outcomeOf(err error) string {
	var (
		unregistered *UnregisteredActionError
		rejected     *SessionValidationError
	)
	switch {
	case err == nil:
		return telemetry.ResultSuccess
	case errors.As(err, &unregistered):
		return telemetry.ResultUnregistered
	case errors.As(err, &rejected):
		return telemetry.ResultRejected
	default:
		return telemetry.ResultError
	}
}

func (d *Dispatcher) record(ctx context.Context, actionType, outcome string, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		telemetry.AttrActionType.String(actionType),
		telemetry.AttrResult.String(outcome),
	)
	d.metrics.DispatchDuration.Record(ctx, elapsed.Seconds(), attrs)
	d.metrics.DispatchTotal.Add(ctx, 1, attrs)
}

func (d *Dispatcher) logFailure(ctx context.Context, actionType, outcome string, err error) {
	logger := logging.FromContextOr(ctx, d.logger)

	level := slog.LevelError
	if outcome == telemetry.ResultRejected {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "dispatch failed",
		slog.String("operation", "Dispatcher.Dispatch"),
		slog.String("action_type", actionType),
		slog.String("result", outcome),
		slog.Any("error", err),
	)
}

// Execute dispatches a and asserts the result type bound to A.
func Execute[A Action, R any](ctx context.Context, d *Dispatcher, creds session.Credentials, a A) (R, error) {
	var zero R

	res, err := d.Dispatch(ctx, creds, a)
	if err != nil {
		return zero, err
	}
	r, ok := res.(R)
	if !ok {
		return zero, &ActionExecutionError{
			ActionType: a.ActionType(),
			Message:    fmt.Sprintf("unexpected result type %T", res),
		}
	}
	return r, nil
}
