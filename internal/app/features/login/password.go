// internal/app/features/login/password.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/authutil"
	"github.com/dalemusser/portfolio/internal/app/system/mailer"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// forgotMessage is returned whether or not the account exists.
const forgotMessage = "If an account exists for that email, a password reset link has been sent"

// passwordErr turns a password rule failure into a field error.
func passwordErr(field string, err error) error {
	msg := "Password must be at least 6 characters long"
	if errors.Is(err, authutil.ErrPasswordTooLong) {
		msg = "Password cannot exceed 72 bytes"
	}
	return apierr.Validation(msg, map[string]string{field: msg})
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /auth/password                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleChangePassword replaces the signed-in user's password after
// checking the current one, then issues a fresh token.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	cur, _ := auth.CurrentUser(r)

	var in changePasswordInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.CurrentPassword == "" {
		respond.Error(w, r, h.Log, apierr.Validation("Please enter your current password",
			map[string]string{"currentPassword": "Please enter your current password"}))
		return
	}
	if err := authutil.ValidatePassword(in.NewPassword); err != nil {
		respond.Error(w, r, h.Log, passwordErr("newPassword", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByIDWithPassword(ctx, cur.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !u.MatchPassword(in.CurrentPassword) {
		respond.Error(w, r, h.Log, apierr.Unauthorized("Password is incorrect"))
		return
	}

	u.SetPassword(in.NewPassword)
	if err := h.Users.Save(ctx, &u); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	res, err := h.issue(w, r, u)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.PasswordChanged(ctx, r, u.ID)
	respond.Message(w, "Password updated successfully", res)
}

type forgotInput struct {
	Email string `json:"email"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/forgot-password                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleForgotPassword emails a reset link when the account exists. The
// response never reveals whether it does.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		respond.Error(w, r, h.Log, apierr.Validation("Please enter your email",
			map[string]string{"email": "Please enter your email"}))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Empty(w, forgotMessage)
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	token, digest, err := authutil.NewResetToken()
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Users.SetResetToken(ctx, u.ID, digest, time.Now().Add(authutil.ResetTokenTTL)); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.PasswordResetRequested(ctx, r, u.ID)

	if h.Mailer == nil || !h.Mailer.Enabled() {
		h.Log.Warn("password reset requested but mail is not configured",
			zap.String("user_id", u.ID.Hex()))
		respond.Empty(w, forgotMessage)
		return
	}

	e := mailer.BuildPasswordReset(mailer.PasswordResetData{
		SiteName:  h.SiteName,
		Name:      u.Name,
		ResetURL:  strings.TrimRight(h.ResetURL, "/") + "/" + token,
		ExpiresIn: formatExpiryDuration(authutil.ResetTokenTTL),
	})
	e.To = u.Email
	if err := h.Mailer.Send(ctx, e); err != nil {
		// the link is useless without the mail; drop it so cleanup has nothing to do
		if cerr := h.Users.ClearResetToken(ctx, u.ID); cerr != nil {
			h.Log.Warn("clear reset token failed", zap.Error(cerr))
		}
		h.Log.Error("password reset email failed",
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
	}
	respond.Empty(w, forgotMessage)
}

type resetInput struct {
	Password string `json:"password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /auth/reset-password/{token}                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleResetPassword sets a new password for the holder of an unexpired
// reset token. The token is single use.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		respond.Error(w, r, h.Log, passwordErr("password", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	digest := authutil.HashResetToken(chi.URLParam(r, "token"))
	u, err := h.Users.GetByResetToken(ctx, digest, time.Now())
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Error(w, r, h.Log, apierr.BadRequest("Invalid or expired reset token"))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	u.SetPassword(in.Password)
	if err := h.Users.Save(ctx, &u); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Users.ClearResetToken(ctx, u.ID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	res, err := h.issue(w, r, u)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.PasswordResetCompleted(ctx, r, u.ID)
	respond.Message(w, "Password reset successfully", res)
}
