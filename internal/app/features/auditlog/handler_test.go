package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/dalemusser/portfolio/internal/app/features/auditlog"
	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/dalemusser/portfolio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeEvents records the last filter and returns events from a fixed list.
type fakeEvents struct {
	events []audit.Event
	last   audit.QueryFilter
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.last = filter
	start := min(int(filter.Offset), len(f.events))
	end := min(start+int(filter.Limit), len(f.events))
	return f.events[start:end], nil
}

func (f *fakeEvents) Count(context.Context, audit.QueryFilter) (int64, error) {
	return int64(len(f.events)), nil
}

type fakeUsers struct {
	users []models.User
	err   error
}

func (f fakeUsers) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func newRouter(events *fakeEvents, users fakeUsers) http.Handler {
	return auditlog.Routes(&auditlog.Handler{Events: events, Users: users, Log: zap.NewNop()})
}

type item struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName"`
	UserName  string `json:"userName"`
}

func TestRoutesRequireAdmin(t *testing.T) {
	router := newRouter(&fakeEvents{}, fakeUsers{})

	for _, target := range []string{"/", "/categories"} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewRequest("GET", target))
		rec.AssertStatus(t, http.StatusUnauthorized)

		rec = testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("GET", target), testutil.RegularUser()))
		rec.AssertStatus(t, http.StatusForbidden)
	}
}

func TestServeList_ResolvesNames(t *testing.T) {
	admin := models.User{ID: primitive.NewObjectID(), Name: "Ada Admin"}
	target := models.User{ID: primitive.NewObjectID(), Name: "Tom Target"}
	gone := primitive.NewObjectID()

	events := &fakeEvents{events: []audit.Event{
		{ID: primitive.NewObjectID(), Category: audit.CategoryAdmin, EventType: audit.EventUserCreated, ActorID: &admin.ID, UserID: &target.ID, Success: true},
		{ID: primitive.NewObjectID(), Category: audit.CategoryAuth, EventType: audit.EventLogout, UserID: &gone, Success: true},
	}}
	router := newRouter(events, fakeUsers{users: []models.User{admin, target}})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("GET", "/"), testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got []item
	env := rec.Decode(t, &got)
	if env.Count != 2 || env.Total != 2 || env.Pagination.Pages != 1 {
		t.Errorf("envelope = %+v", env)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items", len(got))
	}
	if got[0].ActorName != "Ada Admin" || got[0].UserName != "Tom Target" || got[0].ActorID != admin.ID.Hex() {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].UserName != "" {
		t.Errorf("deleted user resolved to %q", got[1].UserName)
	}
}

func TestServeList_NameLookupFailureStillLists(t *testing.T) {
	actor := primitive.NewObjectID()
	events := &fakeEvents{events: []audit.Event{{ID: primitive.NewObjectID(), ActorID: &actor}}}
	router := newRouter(events, fakeUsers{err: errors.New("db down")})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("GET", "/"), testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got []item
	rec.Decode(t, &got)
	if len(got) != 1 || got[0].ActorName != "" {
		t.Errorf("got %+v", got)
	}
}

func TestServeList_Filters(t *testing.T) {
	events := &fakeEvents{}
	router := newRouter(events, fakeUsers{})

	rec := testutil.NewRecorder()
	req := testutil.NewRequest("GET", "/?category=auth&event_type=logout&start_date=2026-03-01&end_date=2026-03-31&tz=America/New_York&page=3&limit=20")
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	f := events.last
	if f.Category != audit.CategoryAuth || f.EventType != audit.EventLogout {
		t.Errorf("filter = %+v", f)
	}
	if f.Limit != 20 || f.Offset != 40 {
		t.Errorf("limit/offset = %d/%d, want 20/40", f.Limit, f.Offset)
	}
	ny, _ := time.LoadLocation("America/New_York")
	if f.Since == nil || !f.Since.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, ny)) {
		t.Errorf("since = %v", f.Since)
	}
	if f.Until == nil || !f.Until.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, ny)) {
		t.Errorf("until = %v", f.Until)
	}
}

func TestServeList_InvalidFilters(t *testing.T) {
	router := newRouter(&fakeEvents{}, fakeUsers{})

	rec := testutil.NewRecorder()
	req := testutil.NewRequest("GET", "/?category=billing&start_date=03/01/2026&tz=Mars/Olympus")
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusBadRequest)

	env := rec.Decode(t, nil)
	for _, field := range []string{"category", "start_date", "tz"} {
		if env.Fields[field] == "" {
			t.Errorf("missing field error for %s: %+v", field, env.Fields)
		}
	}
}

func TestServeCategories(t *testing.T) {
	router := newRouter(&fakeEvents{}, fakeUsers{})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("GET", "/categories"), testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got []struct {
		Value      string   `json:"value"`
		EventTypes []string `json:"eventTypes"`
	}
	rec.Decode(t, &got)
	if len(got) != 2 || got[0].Value != audit.CategoryAuth || len(got[1].EventTypes) == 0 {
		t.Errorf("categories = %+v", got)
	}
}
