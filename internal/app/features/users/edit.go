// internal/app/features/users/edit.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/domain/models"
)

type createInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	var in createInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	u := models.User{Name: in.Name, Email: in.Email, Role: in.Role}
	u.SetPassword(in.Password)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, u)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, u.ID))
		return
	}

	h.AuditLog.UserCreated(ctx, r, actor.ID, created.ID, string(created.Role))
	respond.Created(w, "User created successfully", created)
}

// HandleEdit handles PUT /users/{id}. Only the fields present in the body
// change; a password is rehashed.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := userID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var patch models.UserPatch
	if err := respond.DecodeJSON(w, r, &patch); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if id == actor.ID && patch.Role != nil && *patch.Role != models.RoleAdmin {
		respond.Error(w, r, h.Log, apierr.BadRequest("You cannot remove your own admin role"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Store.Update(ctx, id, patch)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}

	h.AuditLog.UserUpdated(ctx, r, actor.ID, u.ID, changedFields(patch))
	respond.Message(w, "User updated successfully", u)
}

// HandleDelete handles DELETE /users/{id}. Admins cannot delete themselves.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := userID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if id == actor.ID {
		respond.Error(w, r, h.Log, apierr.BadRequest("You cannot delete your own account"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}

	h.AuditLog.UserDeleted(ctx, r, actor.ID, id)
	respond.Empty(w, "User deleted successfully")
}

// changedFields lists the patched field names for the audit trail. The
// password value itself is never recorded.
func changedFields(p models.UserPatch) string {
	var f []string
	if p.Name != nil {
		f = append(f, "name")
	}
	if p.Email != nil {
		f = append(f, "email")
	}
	if p.Role != nil {
		f = append(f, "role")
	}
	if p.Password != nil {
		f = append(f, "password")
	}
	return strings.Join(f, ",")
}
