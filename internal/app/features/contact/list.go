// internal/app/features/contact/list.go
package contact

import (
	"context"
	"net/http"
	"strconv"

	contactstore "github.com/dalemusser/portfolio/internal/app/store/contacts"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /contact?read=&page=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := contactstore.ListFilter{Params: paging.Parse(r)}
	if raw := query.Get(r, "read"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(w, r, h.Log, apierr.BadRequest("read must be true or false"))
			return
		}
		f.Read = &b
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, f)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.List(w, items, len(items), total, f.Params)
}
