package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/config"
)

const defaultShutdownTimeout = 10 * time.Second

// Server is the dispatch API's HTTP listener.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer builds a Server for handler. Errors net/http would print on its
// own (TLS handshakes, malformed requests) go to logger at warn level.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger,
	}
}

// Start listens on the configured address and serves until shutdown, which
// it reports as a nil error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln, taking ownership of it. Shutdown yields a nil error.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("dispatch API listening", slog.String("addr", ln.Addr().String()))

	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight dispatches until
// ctx expires. Without a deadline on ctx it waits at most ten seconds.
func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("draining dispatch API")
	err := s.srv.Shutdown(ctx)
	s.logger.Info("dispatch API stopped",
		slog.Duration("drain", time.Since(start)),
		slog.Bool("clean", err == nil),
	)
	return err
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}
