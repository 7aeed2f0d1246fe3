// internal/app/system/ratelimit/middleware.go
package ratelimit

import (
	"net/http"
	"strings"

	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"go.uber.org/zap"
)

// PerIP limits requests by client IP. When the store itself fails the
// request is allowed through and the failure logged, so a Redis outage does
// not take the contact form down with it.
func PerIP(store Store, message string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := store.Allow(r.Context(), ClientIP(r))
			if err != nil {
				log.Warn("rate limiter unavailable", zap.Error(err))
				ok = true
			}
			if !ok {
				respond.Error(w, r, log, apierr.TooManyRequests(message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginLimiter tracks login attempts per IP and per email so both spraying
// from many addresses and hammering one account are slowed down.
type LoginLimiter struct {
	ip    Store
	email Store
	log   *zap.Logger
}

// NewLoginLimiter combines an IP store and an email store.
func NewLoginLimiter(ip, email Store, log *zap.Logger) *LoginLimiter {
	return &LoginLimiter{ip: ip, email: email, log: log}
}

// Check records an attempt and returns a client-facing error when blocked.
func (ll *LoginLimiter) Check(r *http.Request, email string) error {
	if ok := ll.allow(r, ll.ip, ClientIP(r)); !ok {
		return apierr.TooManyRequests("Too many login attempts. Please wait a minute before trying again.")
	}
	if email != "" {
		if ok := ll.allow(r, ll.email, emailKey(email)); !ok {
			return apierr.TooManyRequests("Too many login attempts for this account. Please wait a few minutes.")
		}
	}
	return nil
}

// ResetEmail clears the per-email counter after a successful login.
func (ll *LoginLimiter) ResetEmail(r *http.Request, email string) {
	if email == "" {
		return
	}
	if err := ll.email.Reset(r.Context(), emailKey(email)); err != nil {
		ll.log.Warn("rate limiter reset failed", zap.Error(err))
	}
}

func (ll *LoginLimiter) allow(r *http.Request, s Store, key string) bool {
	ok, err := s.Allow(r.Context(), key)
	if err != nil {
		ll.log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	return ok
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
