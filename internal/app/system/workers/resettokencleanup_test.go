package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/portfolio/internal/app/system/workers"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingClearer struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (c *countingClearer) ClearExpiredResetTokens(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return c.n, c.err
}

func TestResetTokenCleanup_RunOnceLogsCount(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := &countingClearer{n: 3}
	w := workers.NewResetTokenCleanup(c, zap.New(core), time.Hour)

	w.RunOnce()

	if c.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", c.calls.Load())
	}
	if logs.FilterMessage("cleared expired reset tokens").Len() != 1 {
		t.Error("expected a log entry for cleared tokens")
	}
}

func TestResetTokenCleanup_RunOnceLogsError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	w := workers.NewResetTokenCleanup(&countingClearer{err: errors.New("db down")}, zap.New(core), time.Hour)

	w.RunOnce()

	if logs.FilterMessage("failed to clear expired reset tokens").Len() != 1 {
		t.Error("expected the failure to be logged")
	}
}

func TestResetTokenCleanup_StartStop(t *testing.T) {
	c := &countingClearer{}
	w := workers.NewResetTokenCleanup(c, zap.NewNop(), 5*time.Millisecond)

	w.Start()
	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if c.calls.Load() == 0 {
		t.Error("expected at least one sweep before Stop")
	}
}
