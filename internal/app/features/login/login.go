// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var errInvalidCredentials = apierr.Unauthorized("Invalid credentials")

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin verifies email and password and returns a bearer token. The
// same token is placed in the session cookie for the browser frontend.
// Unknown email and wrong password answer identically.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		respond.Error(w, r, h.Log, apierr.BadRequest("Please provide an email and password"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if err := h.Limiter.Check(r, email); err != nil {
			h.AuditLog.LoginFailedRateLimit(ctx, r, email)
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	u, err := h.Users.GetByEmailWithPassword(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		respond.Error(w, r, h.Log, errInvalidCredentials)
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !u.MatchPassword(in.Password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		respond.Error(w, r, h.Log, errInvalidCredentials)
		return
	}

	res, err := h.issue(w, r, u)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(r, email)
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	respond.OK(w, res)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/logout                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogout expires the session cookie. Bearer tokens stay valid until
// they expire; clients discard them.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.SessionMgr != nil {
		if err := h.SessionMgr.Clear(w, r); err != nil {
			h.Log.Warn("session clear failed", zap.Error(err))
		}
	}
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}
	respond.Empty(w, "Logged out")
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/me                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeMe returns the signed-in user.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	respond.OK(w, u)
}
