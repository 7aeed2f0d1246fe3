package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func TestLimiter_Allow(t *testing.T) {
	l := ratelimit.New(2, time.Minute)
	defer l.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "k"); !ok {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Error("third hit should be blocked")
	}
	if ok, _ := l.Allow(ctx, "other"); !ok {
		t.Error("other keys are independent")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := ratelimit.New(1, 20*time.Millisecond)
	defer l.Close()
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("second hit should be blocked")
	}
	time.Sleep(30 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("hit after window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	defer l.Close()
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	_ = l.Reset(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("expected hit allowed after reset")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded header ignored", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.2:5000", "10.0.0.2"},
		{"real ip header ignored", map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.2:5000", "10.0.0.2"},
		{"remote", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote no port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ratelimit.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerIP_SpoofedForwardedForSharesBucket(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	defer l.Close()

	h := ratelimit.PerIP(l, "slow down", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		r := httptest.NewRequest("POST", "/contact", nil)
		r.RemoteAddr = "203.0.113.7:4000"
		r.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		want := http.StatusCreated
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Errorf("request %d with X-Forwarded-For %s: status %d, want %d", i, xff, rec.Code, want)
		}
	}
}

func TestClientIP_AfterRealIP(t *testing.T) {
	var got string
	h := middleware.RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ratelimit.ClientIP(r)
	}))
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.2:5000"
	r.Header.Set("X-Real-IP", "5.6.7.8")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if got != "5.6.7.8" {
		t.Errorf("ClientIP after RealIP = %q, want 5.6.7.8", got)
	}
}

func TestPerIP_Blocks(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	defer l.Close()

	h := ratelimit.PerIP(l, "slow down", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/contact", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/contact", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string) (bool, error) { return false, errors.New("down") }
func (failingStore) Reset(context.Context, string) error         { return errors.New("down") }

func TestPerIP_FailsOpen(t *testing.T) {
	h := ratelimit.PerIP(failingStore{}, "slow down", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when store fails", rec.Code)
	}
}

func TestLoginLimiter(t *testing.T) {
	ip := ratelimit.New(10, time.Minute)
	email := ratelimit.New(2, time.Minute)
	defer ip.Close()
	defer email.Close()
	ll := ratelimit.NewLoginLimiter(ip, email, zap.NewNop())

	r := httptest.NewRequest("POST", "/auth/login", nil)
	for i := 0; i < 2; i++ {
		if err := ll.Check(r, "Admin@Example.com"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	err := ll.Check(r, "admin@example.com ")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Kind != apierr.KindTooManyRequests {
		t.Fatalf("expected too many requests, got %v", err)
	}

	ll.ResetEmail(r, "admin@example.com")
	if err := ll.Check(r, "admin@example.com"); err != nil {
		t.Errorf("expected allowed after reset, got %v", err)
	}
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("PORTFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTFOLIO_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := ratelimit.NewRedisClient(ctx, addr, "", 0)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer client.Close()

	l := ratelimit.NewRedis(client, "test-"+time.Now().Format("150405.000000"), 1, time.Minute)
	if ok, err := l.Allow(ctx, "k"); err != nil || !ok {
		t.Fatalf("first Allow = %v, %v", ok, err)
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Error("second hit should be blocked")
	}
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("expected allowed after reset")
	}
}
