// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
)

// ServeList handles GET /users (newest first, paged).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.List(w, items, len(items), total, p)
}

// ServeView handles GET /users/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}
	respond.OK(w, u)
}
