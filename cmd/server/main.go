// Package main is the entry point for the dispatch service. It wires the
// action registry, its validators and the session store using samber/do v2,
// starts the HTTP server, and handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/middleware"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/store/sqlite"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/actions"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/validators"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/config"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/health"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
	healthCheckTimeout    = 2 * time.Second
)

var _ ports.Dispatcher = (*dispatch.Dispatcher)(nil)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	store, err := sqlite.Open(ctx, cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("session store close error", slog.Any("error", err))
		}
	}()

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)
	do.ProvideValue[ports.SessionStore](injector, store)

	if err := registerDependencies(injector, cfg, logger); err != nil {
		return err
	}

	// Resolve the server (eagerly wires the full graph, including the frozen
	// action registry).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(store)

	actionRegistry := do.MustInvoke[*dispatch.Registry](injector)
	logger.Info("action registry ready",
		slog.Int("actions", actionRegistry.Len()),
		slog.Any("types", actionRegistry.Types()),
	)

	// Expired sessions are swept until shutdown.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go actions.SweepSessions(sweepCtx, store, cfg.Session.SweepInterval, time.Now, logger)

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr
	stopSweep()

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) error {
	do.Provide(injector, func(do.Injector) (*dispatch.Registry, error) {
		return dispatch.NewRegistry(logger, actions.Module(injector))
	})

	do.Provide(injector, func(i do.Injector) (*dispatch.Dispatcher, error) {
		reg := do.MustInvoke[*dispatch.Registry](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return dispatch.NewDispatcher(reg, logger, metrics,
			dispatch.WithBatchLimits(cfg.Dispatch.MaxBatchSize, cfg.Dispatch.BatchWorkers),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.Dispatcher, error) {
		return do.Invoke[*dispatch.Dispatcher](i)
	})

	do.Provide(injector, func(i do.Injector) (actions.CatalogSource, error) {
		return do.Invoke[*dispatch.Registry](i)
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(health.WithCheckTimeout(healthCheckTimeout)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.DispatchHandler, error) {
		d := do.MustInvoke[ports.Dispatcher](i)
		return handlers.NewDispatchHandler(d), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		dispatchH := do.MustInvoke[*handlers.DispatchHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(dispatchH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Credentials(cfg.Server.TrustForwardedFor),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})

	// Handlers and validators of the action catalog. The admin policy is
	// compiled here, so a bad expression stops start-up.
	err := actions.Provide(injector, actions.Config{
		Sessions: actions.SessionPolicy{
			DefaultTTL: cfg.Session.DefaultTTL,
			MaxTTL:     cfg.Session.MaxTTL,
		},
		JWT: validators.JWTConfig{
			Secret: []byte(cfg.Auth.JWTSecret),
			Issuer: cfg.Auth.Issuer,
			Leeway: cfg.Auth.Leeway,
		},
		AdminPolicy: cfg.Dispatch.AdminPolicy,
	})
	if err != nil {
		return fmt.Errorf("registering actions: %w", err)
	}
	return nil
}
