// internal/app/system/workers/resettokencleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ResetTokenClearer removes password-reset tokens that expired before now.
// *userstore.Store satisfies it.
type ResetTokenClearer interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ResetTokenCleanup is a background worker that clears expired
// password-reset tokens so stale links stop matching any user.
type ResetTokenCleanup struct {
	users    ResetTokenClearer
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewResetTokenCleanup creates the worker. interval is how often it runs
// (e.g., 5 minutes).
func NewResetTokenCleanup(users ResetTokenClearer, logger *zap.Logger, interval time.Duration) *ResetTokenCleanup {
	return &ResetTokenCleanup{
		users:    users,
		log:      logger,
		interval: interval,
		timeout:  30 * time.Second,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *ResetTokenCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reset token cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call more than once.
func (w *ResetTokenCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("reset token cleanup worker stopped")
}

func (w *ResetTokenCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep.
func (w *ResetTokenCleanup) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	count, err := w.users.ClearExpiredResetTokens(ctx, w.now().UTC())
	if err != nil {
		w.log.Error("failed to clear expired reset tokens", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("cleared expired reset tokens", zap.Int64("count", count))
	}
}
