// internal/app/features/contact/view.go
package contact

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeView handles GET /contact/{id}. Viewing an unread message marks it
// read before the response is written. The read and the write are two
// store calls; a concurrent view may repeat the write, which is harmless.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}

	if !c.Read {
		at, changed, err := h.Store.MarkRead(ctx, id)
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		c.Read = true
		if changed {
			c.UpdatedAt = at
		}
		h.Log.Debug("contact marked read", zap.String("contact_id", id.Hex()))
	}
	respond.OK(w, c)
}
