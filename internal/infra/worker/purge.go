// Package worker runs the scheduled maintenance jobs of the API process.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/metrics"
)

// DefaultPurgeTimeout bounds one purge run.
const DefaultPurgeTimeout = 30 * time.Second

// SessionPurger deletes expired sessions.
// *authservice.SessionService satisfies it.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeJob is the cron job deleting expired sessions.
type PurgeJob struct {
	purger  SessionPurger
	logger  *slog.Logger
	timeout time.Duration
}

// NewPurgeJob returns a job purging through p. A nil logger uses
// slog.Default() and a non-positive timeout uses DefaultPurgeTimeout.
func NewPurgeJob(p SessionPurger, logger *slog.Logger, timeout time.Duration) *PurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultPurgeTimeout
	}
	return &PurgeJob{purger: p, logger: logger, timeout: timeout}
}

// Run implements cron.Job.
func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce purges once and records the outcome.
func (j *PurgeJob) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := j.purger.PurgeExpired(ctx)
	metrics.RecordSessionPurge(removed, err)

	if err != nil {
		j.logger.Error("session purge failed",
			slog.String("error", respond.SanitizeError(err)),
			slog.Duration("duration", time.Since(start)))
		return 0, err
	}

	j.logger.Info("session purge completed",
		slog.Int64("removed", removed),
		slog.Duration("duration", time.Since(start)))
	return removed, nil
}
