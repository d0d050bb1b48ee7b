package actions

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

// SweepSessions deletes expired sessions every interval until ctx is done.
// Sweep failures are logged and retried on the next tick.
func SweepSessions(ctx context.Context, store ports.SessionStore, interval time.Duration, now func() time.Time, logger *slog.Logger) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx, now())
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.ErrorContext(ctx, "failed to sweep sessions",
					slog.String("operation", "SweepSessions"),
					slog.Any("error", err),
				)
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "expired sessions removed", slog.Int64("count", n))
			}
		}
	}
}
