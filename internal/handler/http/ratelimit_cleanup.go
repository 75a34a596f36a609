package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/crljhnmngs/portfolio-admin/pkg/ratelimit"
)

// DefaultSweepInterval is how often finished windows are removed.
const DefaultSweepInterval = 60 * time.Second

// Sweeper is the part of a limiter the cleanup loop needs.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StartRateLimitCleanup removes finished rate limit windows every interval
// until ctx is cancelled. It blocks; run it in its own goroutine.
//
// Memory use is bounded by the number of identifiers active within one
// window rather than by total request volume.
func StartRateLimitCleanup(ctx context.Context, limiter Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped")
			return

		case <-ticker.C:
			removed, err := limiter.Sweep(ctx)
			if err != nil {
				slog.Error("rate limit cleanup failed", slog.Any("error", err))
				continue
			}
			slog.Debug("rate limit cleanup completed", slog.Int("keys_removed", removed))
		}
	}
}

var _ Sweeper = (*ratelimit.Limiter)(nil)
