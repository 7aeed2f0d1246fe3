// Package errreport forwards unexpected server errors to Sentry.
// With no DSN configured every method is a no-op.
package errreport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Service reports errors to Sentry when initialized.
type Service struct {
	initialized bool
}

// Disabled returns a Service that reports nothing.
func Disabled() *Service { return &Service{} }

// New initializes the Sentry client. An empty dsn disables reporting.
func New(dsn, environment, release string, log *zap.Logger) (*Service, error) {
	if dsn == "" {
		log.Info("sentry_dsn not set, error reporting disabled")
		return Disabled(), nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	log.Info("sentry error reporting enabled", zap.String("environment", environment))
	return &Service{initialized: true}, nil
}

// Enabled reports whether events are sent.
func (s *Service) Enabled() bool { return s != nil && s.initialized }

// Report captures err with the request attached to the event scope.
func (s *Service) Report(r *http.Request, err error) {
	if !s.Enabled() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		if r != nil {
			scope.SetRequest(r)
			scope.SetTag("method", r.Method)
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				scope.SetTag("request_id", reqID)
			}
		}
		sentry.CaptureException(err)
	})
}

// Recoverer captures a panic, reports it, and re-panics so chi's own
// Recoverer still writes the 500.
func (s *Service) Recoverer(next http.Handler) http.Handler {
	if !s.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec != http.ErrAbortHandler {
					hub := sentry.CurrentHub().Clone()
					hub.Scope().SetRequest(r)
					hub.Recover(rec)
				}
				panic(rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Flush waits up to timeout for queued events.
func (s *Service) Flush(timeout time.Duration) bool {
	if !s.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}
