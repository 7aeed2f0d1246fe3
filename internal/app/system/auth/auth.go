// Package auth authenticates API callers and guards admin routes.
//
// A caller presents a signed token either in an "Authorization: Bearer"
// header (API clients) or in the signed session cookie set at login
// (the browser frontend). LoadUser resolves the token to a stored user and
// puts it on the request context; RequireSignedIn and RequireRole then
// answer 401/403 in the standard JSON envelope.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/app/system/tokens"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultSessionName = "portfolio-session"

	tokenKey = "token"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session cookie                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager keeps the issued token in a signed, HttpOnly cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager creates the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None so the frontend on another origin can
// send them; in local dev over http they are SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SaveToken stores token in the session cookie.
func (sm *SessionManager) SaveToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Token returns the token held in the session cookie, if any.
func (sm *SessionManager) Token(r *http.Request) string {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return ""
	}
	tok, _ := sess.Values[tokenKey].(string)
	return tok
}

// Clear expires the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current user                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the authenticated user and whether there is one.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok
}

// WithUser returns r carrying u as the authenticated user.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*tokens.Claims, error)
}

// UserLoader fetches the user a token was issued to.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Authenticator resolves request credentials to a user.
type Authenticator struct {
	Sessions *SessionManager
	Tokens   TokenParser
	Users    UserLoader
	Log      *zap.Logger
}

// NewAuthenticator wires the authenticator. sessions may be nil when
// cookie auth is disabled.
func NewAuthenticator(sm *SessionManager, tp TokenParser, users UserLoader, logger *zap.Logger) *Authenticator {
	return &Authenticator{Sessions: sm, Tokens: tp, Users: users, Log: logger}
}

// LoadUser puts the authenticated user into the request context. Missing,
// invalid or stale credentials leave the request anonymous; only a failing
// user lookup aborts it.
func (a *Authenticator) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := BearerToken(r)
		if tok == "" && a.Sessions != nil {
			tok = a.Sessions.Token(r)
		}
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.Tokens.Parse(tok)
		if err != nil {
			a.Log.Debug("rejected token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		id, _ := primitive.ObjectIDFromHex(claims.UserID)

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		u, err := a.Users.GetByID(ctx, id)
		if errors.Is(err, userstore.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			respond.Error(w, r, a.Log, fmt.Errorf("load token user: %w", err))
			return
		}
		next.ServeHTTP(w, WithUser(r, &u))
	})
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Guards                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn answers 401 unless LoadUser found a user.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Error(w, r, nil, apierr.Unauthorized("Not authorized to access this route"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 when anonymous and 403 when the user's role is
// not one of allowed.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[models.Role(strings.ToLower(strings.TrimSpace(string(role))))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, r, nil, apierr.Unauthorized("Not authorized to access this route"))
				return
			}
			if _, has := set[models.Role(strings.ToLower(string(u.Role)))]; !has {
				respond.Error(w, r, nil, apierr.Forbidden(
					fmt.Sprintf("User role %s is not authorized to access this route", u.Role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
