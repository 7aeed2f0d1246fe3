// internal/app/features/contact/edit.go
package contact

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/domain/models"
)

// HandleEdit handles PUT /contact/{id}. Only fields present in the body
// change; the merged record is validated again before it is saved.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var patch models.ContactPatch
	if err := respond.DecodeJSON(w, r, &patch); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.Update(ctx, id, patch)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Admin(ctx, r, audit.EventContactUpdated, u.ID, map[string]string{"contact_id": id.Hex()})
	}
	respond.OK(w, c)
}

// HandleToggleRead handles PUT /contact/{id}/read.
func (h *Handler) HandleToggleRead(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.ToggleRead(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}
	respond.OK(w, c)
}
