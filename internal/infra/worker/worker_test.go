package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/crljhnmngs/portfolio-admin/internal/observability/metrics"
)

type stubPurger struct {
	removed int64
	err     error
	calls   atomic.Int32
}

func (p *stubPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.removed, p.err
}

func TestPurgeJob_RunOnce(t *testing.T) {
	t.Run("success records removed sessions", func(t *testing.T) {
		beforeRuns := testutil.ToFloat64(metrics.SessionPurgeRuns.WithLabelValues("success"))
		beforePurged := testutil.ToFloat64(metrics.SessionsPurged)

		var buf bytes.Buffer
		job := NewPurgeJob(&stubPurger{removed: 4}, slog.New(slog.NewJSONHandler(&buf, nil)), 0)

		removed, err := job.RunOnce(context.Background())
		if err != nil {
			t.Fatalf("RunOnce() error = %v", err)
		}
		if removed != 4 {
			t.Errorf("removed = %d, want 4", removed)
		}
		if got := testutil.ToFloat64(metrics.SessionPurgeRuns.WithLabelValues("success")); got != beforeRuns+1 {
			t.Errorf("success runs = %v, want %v", got, beforeRuns+1)
		}
		if got := testutil.ToFloat64(metrics.SessionsPurged); got != beforePurged+4 {
			t.Errorf("sessions purged = %v, want %v", got, beforePurged+4)
		}
		if !strings.Contains(buf.String(), "session purge completed") {
			t.Errorf("log = %q, want completion line", buf.String())
		}
	})

	t.Run("failure is logged without the DSN", func(t *testing.T) {
		beforeRuns := testutil.ToFloat64(metrics.SessionPurgeRuns.WithLabelValues("error"))

		var buf bytes.Buffer
		job := NewPurgeJob(&stubPurger{err: errors.New("dial postgres://admin:hunter2@db:5432/portfolio failed")},
			slog.New(slog.NewJSONHandler(&buf, nil)), time.Second)

		if _, err := job.RunOnce(context.Background()); err == nil {
			t.Fatal("RunOnce() error = nil, want error")
		}
		if got := testutil.ToFloat64(metrics.SessionPurgeRuns.WithLabelValues("error")); got != beforeRuns+1 {
			t.Errorf("error runs = %v, want %v", got, beforeRuns+1)
		}
		if strings.Contains(buf.String(), "hunter2") {
			t.Errorf("log leaked credentials: %s", buf.String())
		}
	})
}

func TestScheduler_RunsJobAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := &stubPurger{}
	s := NewScheduler(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := s.Add("session-purge", "@every 1s", NewPurgeJob(p, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), time.Second)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for p.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("purge job never ran")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(nil)
	if err := s.Add("session-purge", "every hour", NewPurgeJob(&stubPurger{}, nil, 0)); err == nil {
		t.Error("Add() error = nil, want error")
	}
}
