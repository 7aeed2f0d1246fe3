package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogFillsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		IP:        "192.168.1.1",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("Timestamp = %v, want after %v", events[0].Timestamp, before)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := primitive.NewObjectID()
	target := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)

	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &admin, Success: true, Timestamp: base},
		{Category: audit.CategoryAdmin, EventType: audit.EventUserCreated, ActorID: &admin, UserID: &target, Success: true, Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAdmin, EventType: audit.EventAboutUpdated, ActorID: &admin, Success: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int64
	}{
		{"all", audit.QueryFilter{}, 3},
		{"category", audit.QueryFilter{Category: audit.CategoryAdmin}, 2},
		{"event type", audit.QueryFilter{EventType: audit.EventUserCreated}, 1},
		{"actor", audit.QueryFilter{ActorID: &admin}, 2},
		{"user", audit.QueryFilter{UserID: &target}, 1},
		{"window", audit.QueryFilter{Since: ptr(base.Add(30 * time.Second)), Until: ptr(base.Add(90 * time.Second))}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := store.Count(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("Count = %d, want %d", n, tt.want)
			}
		})
	}

	got, err := store.Query(ctx, audit.QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 || got[0].EventType != audit.EventAboutUpdated {
		t.Errorf("expected most recent event first, got %+v", got)
	}
}

func ptr(t time.Time) *time.Time { return &t }
