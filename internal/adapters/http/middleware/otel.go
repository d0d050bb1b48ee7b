package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/telemetry"
)

const tracerName = "github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http"

// attrOutcome labels spans and server metrics with responseWriter.outcome.
var attrOutcome = attribute.Key("dispatch.outcome")

// OpenTelemetry returns middleware that opens a server span per request,
// continuing any W3C trace context in the request headers, and records the
// server request metrics.
//
// The span is renamed once routing has run so that every dispatch shares the
// route-pattern name ("POST /api/v1/dispatch/{actionType}") and the concrete action
// goes in an attribute. Unrouted requests keep the raw path. A nil metrics
// skips metric recording.
func OpenTelemetry(metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					telemetry.AttrHTTPMethod.String(r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if pattern := routePattern(r); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
			if actionType := actionTypeFromPath(r.URL.Path); actionType != "" {
				span.SetAttributes(telemetry.AttrActionType.String(actionType))
			}

			status := rw.statusCode
			outcome := rw.outcome()
			span.SetAttributes(
				telemetry.AttrHTTPStatus.Int(status),
				attrOutcome.String(outcome),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			recordServerMetrics(ctx, metrics, r.Method, status, outcome, time.Since(start))
		})
	}
}

// routePattern returns the chi pattern that matched r, or "" when the request
// did not go through a chi router or matched no route.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

func recordServerMetrics(ctx context.Context, metrics *telemetry.Metrics, method string, status int, outcome string, elapsed time.Duration) {
	if metrics == nil {
		return
	}

	result := telemetry.ResultSuccess
	if status >= http.StatusBadRequest {
		result = telemetry.ResultError
	}
	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrResult.String(result),
		attrOutcome.String(outcome),
	)

	metrics.ServerRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
	metrics.ServerRequestTotal.Add(ctx, 1, attrs)
}
