// internal/app/features/about/view.go
package about

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
)

// ServePublic handles GET /about. Only a public profile is returned;
// any other visibility reads as not found.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.GetPublic(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	respond.OK(w, a)
}

// ServeAdmin handles GET /about/admin and returns the profile whatever
// its visibility.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.Get(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	respond.OK(w, a)
}
