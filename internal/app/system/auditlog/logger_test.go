package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	events []audit.Event
	err    error
}

func (m *memStore) Log(_ context.Context, e audit.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("POST", "/auth/login", nil)

	// must not panic
	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "a@b.co")
	logger.Logout(context.Background(), req, primitive.NewObjectID())
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantLog int
	}{
		{auditlog.All, 1, 1},
		{auditlog.DB, 1, 0},
		{auditlog.Log, 0, 1},
		{auditlog.Off, 0, 0},
		{"", 1, 1},
	}
	for _, tt := range tests {
		t.Run("setting="+tt.setting, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			store := &memStore{}
			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: tt.setting, Admin: auditlog.Off})

			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = "203.0.113.7:5555"
			logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "owner@example.com")

			if len(store.events) != tt.wantDB {
				t.Errorf("stored %d events, want %d", len(store.events), tt.wantDB)
			}
			if logs.Len() != tt.wantLog {
				t.Errorf("logged %d entries, want %d", logs.Len(), tt.wantLog)
			}
		})
	}
}

func TestLogger_EventFields(t *testing.T) {
	store := &memStore{}
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.DB, Admin: auditlog.DB})

	req := httptest.NewRequest("DELETE", "/users/x", nil)
	req.RemoteAddr = "198.51.100.2:1234"
	req.Header.Set("User-Agent", "TestBrowser/1.0")

	actor, target := primitive.NewObjectID(), primitive.NewObjectID()
	logger.UserDeleted(context.Background(), req, actor, target)

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	e := store.events[0]
	if e.Category != audit.CategoryAdmin || e.EventType != audit.EventUserDeleted {
		t.Errorf("category/type = %s/%s", e.Category, e.EventType)
	}
	if e.ActorID == nil || *e.ActorID != actor || e.UserID == nil || *e.UserID != target {
		t.Errorf("actor/user not recorded: %+v", e)
	}
	if e.IP != "198.51.100.2" {
		t.Errorf("IP = %q", e.IP)
	}
	if e.UserAgent != "TestBrowser/1.0" {
		t.Errorf("UserAgent = %q", e.UserAgent)
	}
}

func TestLogger_FailedLoginIsWarning(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(&memStore{}, zap.New(core), auditlog.Config{Auth: auditlog.Log})

	logger.LoginFailedUserNotFound(context.Background(), httptest.NewRequest("POST", "/auth/login", nil), "ghost@example.com")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
}

func TestLogger_StoreErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := auditlog.New(&memStore{err: errors.New("db down")}, zap.New(core), auditlog.Config{Admin: auditlog.DB})

	logger.Admin(context.Background(), httptest.NewRequest("PUT", "/about", nil),
		audit.EventAboutUpdated, primitive.NewObjectID(), nil)

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}
