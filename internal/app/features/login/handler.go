// internal/app/features/login/handler.go
package login

import (
	"context"
	"fmt"
	"net/http"
	"time"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/mailer"
	"github.com/dalemusser/portfolio/internal/app/system/ratelimit"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserStore is the account persistence the auth endpoints need.
// *userstore.Store satisfies it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (models.User, error)
	GetByIDWithPassword(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Save(ctx context.Context, u *models.User) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error
	GetByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error)
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
}

// TokenIssuer signs bearer tokens. *tokens.Service satisfies it.
type TokenIssuer interface {
	Issue(userID primitive.ObjectID, role models.Role) (string, time.Time, error)
}

// Mailer delivers password reset mail. *mailer.Mailer satisfies it.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, e mailer.Email) error
}

type Handler struct {
	Users      UserStore
	Tokens     TokenIssuer
	SessionMgr *auth.SessionManager // nil disables the session cookie
	Limiter    *ratelimit.LoginLimiter
	Mailer     Mailer
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	SiteName string
	ResetURL string // frontend page that accepts the reset token, e.g. https://example.com/reset-password
}

func NewHandler(
	db *mongo.Database,
	issuer TokenIssuer,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	mail Mailer,
	audit *auditlog.Logger,
	siteName string,
	resetURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Tokens:     issuer,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Mailer:     mail,
		AuditLog:   audit,
		Log:        logger,
		SiteName:   siteName,
		ResetURL:   resetURL,
	}
}

// tokenResult is the body returned whenever a new token is issued.
type tokenResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user,omitempty"`
}

// issue signs a token for u and, when cookies are enabled, stores it in the
// session. A cookie failure is logged; the bearer token still works.
func (h *Handler) issue(w http.ResponseWriter, r *http.Request, u models.User) (tokenResult, error) {
	tok, exp, err := h.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return tokenResult{}, fmt.Errorf("issue token: %w", err)
	}
	if h.SessionMgr != nil {
		if err := h.SessionMgr.SaveToken(w, r, tok); err != nil {
			h.Log.Warn("session save failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
	}
	u.SetPasswordHash("")
	return tokenResult{Token: tok, ExpiresAt: exp, User: &u}, nil
}

// formatExpiryDuration formats a time.Duration as a human-readable string
// e.g., "10 minutes", "1 hour", "30 minutes"
func formatExpiryDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
