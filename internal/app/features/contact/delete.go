// internal/app/features/contact/delete.go
package contact

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /contact/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Admin(ctx, r, audit.EventContactDeleted, u.ID, map[string]string{"contact_id": id.Hex()})
	}
	respond.Empty(w, "")
}
