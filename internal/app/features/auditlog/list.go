// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /audit. Filters: category, event_type, start_date
// and end_date (YYYY-MM-DD, inclusive, read in tz when given, else UTC),
// plus page and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	filter.Limit = int64(p.Limit)
	filter.Offset = p.Skip()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	names := h.resolveNames(ctx, events)

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = names[*e.ActorID]
		}
		if e.UserID != nil {
			item.TargetID = e.UserID.Hex()
			item.TargetName = names[*e.UserID]
		}
		items = append(items, item)
	}

	respond.List(w, items, len(items), total, p)
}

// ServeCategories handles GET /audit/categories.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, allCategories())
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
	}
	fields := map[string]string{}

	if !validCategory(filter.Category) {
		fields["category"] = "Category must be auth or admin"
	}

	loc := time.UTC
	if tz := strings.TrimSpace(query.Get(r, "tz")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			fields["tz"] = "Unknown time zone"
		} else {
			loc = l
		}
	}

	if s := strings.TrimSpace(query.Get(r, "start_date")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			fields["start_date"] = "Use the format YYYY-MM-DD"
		} else {
			filter.Since = &t
		}
	}
	if s := strings.TrimSpace(query.Get(r, "end_date")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			fields["end_date"] = "Use the format YYYY-MM-DD"
		} else {
			// through the end of that day
			end := t.AddDate(0, 0, 1)
			filter.Until = &end
		}
	}

	if len(fields) > 0 {
		return audit.QueryFilter{}, apierr.Validation("Invalid audit log filter", fields)
	}
	return filter, nil
}

// resolveNames maps actor and target ids to user names. Lookup failures
// are logged and leave names blank.
func (h *Handler) resolveNames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		if e.ActorID != nil {
			seen[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			seen[*e.UserID] = struct{}{}
		}
	}
	names := make(map[primitive.ObjectID]string, len(seen))
	if len(seen) == 0 {
		return names
	}

	ids := make([]primitive.ObjectID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}
