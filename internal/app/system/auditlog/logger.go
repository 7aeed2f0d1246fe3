// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// Config selects where each category of events goes.
type Config struct {
	Auth  string
	Admin string
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to the event store and to zap according to
// Config. A nil *Logger is a no-op so handlers and tests may omit it.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := All
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful password login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login attempt rejected by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// Logout logs a user signing out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLogout, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// PasswordChanged logs a signed-in user changing their own password.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventPasswordChanged, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// PasswordResetRequested logs a reset token being issued.
func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventPasswordResetRequested, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// PasswordResetCompleted logs a reset token being redeemed.
func (l *Logger) PasswordResetCompleted(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventPasswordResetCompleted, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// --- Admin Events ---

// Admin logs an admin mutation on About or Contact records.
func (l *Logger) Admin(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, details map[string]string) {
	e := fromRequest(r, audit.CategoryAdmin, eventType, true)
	e.ActorID = &actorID
	e.Details = details
	l.Log(ctx, e)
}

// UserCreated logs an admin creating an account.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, role string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventUserCreated, true)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// UserUpdated logs an admin editing an account. fields lists what changed.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, fields string) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventUserUpdated, true)
	e.ActorID = &actorID
	e.UserID = &userID
	e.Details = map[string]string{"fields": fields}
	l.Log(ctx, e)
}

// UserDeleted logs an admin removing an account.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAdmin, audit.EventUserDeleted, true)
	e.ActorID = &actorID
	e.UserID = &userID
	l.Log(ctx, e)
}
