// Package timeouts holds the deadlines applied to store calls made while
// handling a request.
//
// Handlers derive a child context from r.Context() with one of the classes
// below so a slow MongoDB never holds a request open indefinitely:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and read-then-write sequences
//   - Long: uploads and anything touching object storage
package timeouts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds one value per class. Zero fields in an override keep the
// current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults are used until Configure is called.
var Defaults = Config{
	Ping:   2 * time.Second,
	Short:  5 * time.Second,
	Medium: 10 * time.Second,
	Long:   30 * time.Second,
}

var (
	mu     sync.RWMutex
	active = Defaults
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(active)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }

// Configure applies the non-zero fields of cfg. Call it once during startup
// before serving.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	keep := func(cur *time.Duration, v time.Duration) {
		if v > 0 {
			*cur = v
		}
	}
	keep(&active.Ping, cfg.Ping)
	keep(&active.Short, cfg.Short)
	keep(&active.Medium, cfg.Medium)
	keep(&active.Long, cfg.Long)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	active = Defaults
}

// Current returns the active values for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was the reason the operation stopped.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload resume")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
