package reqlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/portfolio/internal/app/system/reqlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   zapcore.Level
	}{
		{"ok", "/about", http.StatusOK, zapcore.InfoLevel},
		{"not found", "/missing", http.StatusNotFound, zapcore.WarnLevel},
		{"server error", "/about", http.StatusInternalServerError, zapcore.ErrorLevel},
		{"quiet health", "/health", http.StatusOK, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			h := reqlog.Middleware(zap.New(core), "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Level != tt.want {
				t.Errorf("level = %v, want %v", e.Level, tt.want)
			}
			fields := e.ContextMap()
			if fields["status"] != int64(tt.status) {
				t.Errorf("status field = %v", fields["status"])
			}
			if fields["bytes"] != int64(4) {
				t.Errorf("bytes field = %v", fields["bytes"])
			}
		})
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := reqlog.Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if logs.Len() != 1 || logs.All()[0].ContextMap()["status"] != int64(200) {
		t.Errorf("entries = %v", logs.All())
	}
}
