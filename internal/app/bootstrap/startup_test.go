package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/errreport"
	"github.com/dalemusser/portfolio/internal/app/system/mailer"
	"github.com/dalemusser/portfolio/internal/app/system/ratelimit"
	"github.com/dalemusser/portfolio/internal/app/system/tokens"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type fakeAdminStore struct {
	users   map[string]models.User
	created []models.User
	updated []primitive.ObjectID
}

func newFakeAdminStore(existing ...models.User) *fakeAdminStore {
	f := &fakeAdminStore{users: map[string]models.User{}}
	for _, u := range existing {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeAdminStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (f *fakeAdminStore) Create(_ context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	f.created = append(f.created, u)
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeAdminStore) Update(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error) {
	f.updated = append(f.updated, id)
	for email, u := range f.users {
		if u.ID == id {
			u.Apply(patch)
			f.users[email] = u
			return u, nil
		}
	}
	return models.User{}, userstore.ErrNotFound
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("no email configured", func(t *testing.T) {
		f := newFakeAdminStore()
		if err := ensureAdmin(ctx, f, "Admin", "", "secret123", log); err != nil {
			t.Fatal(err)
		}
		if len(f.created) != 0 {
			t.Error("expected no user created")
		}
	})

	t.Run("creates missing admin", func(t *testing.T) {
		f := newFakeAdminStore()
		if err := ensureAdmin(ctx, f, "Admin", "admin@example.com", "secret123", log); err != nil {
			t.Fatal(err)
		}
		if len(f.created) != 1 {
			t.Fatalf("created %d users, want 1", len(f.created))
		}
		u := f.created[0]
		if u.Role != models.RoleAdmin || u.Name != "Admin" || !u.PasswordDirty() {
			t.Errorf("created = %+v", u)
		}
	})

	t.Run("skips creation without password", func(t *testing.T) {
		f := newFakeAdminStore()
		if err := ensureAdmin(ctx, f, "Admin", "admin@example.com", "", log); err != nil {
			t.Fatal(err)
		}
		if len(f.created) != 0 {
			t.Error("expected no user created")
		}
	})

	t.Run("promotes existing user", func(t *testing.T) {
		existing := models.User{ID: primitive.NewObjectID(), Name: "Dana", Email: "dana@example.com", Role: models.RoleUser}
		f := newFakeAdminStore(existing)
		if err := ensureAdmin(ctx, f, "Admin", existing.Email, "ignored123", log); err != nil {
			t.Fatal(err)
		}
		if len(f.created) != 0 {
			t.Error("existing user must not be recreated")
		}
		if got := f.users[existing.Email]; got.Role != models.RoleAdmin || got.PasswordDirty() {
			t.Errorf("promoted = %+v", got)
		}
	})

	t.Run("leaves existing admin alone", func(t *testing.T) {
		existing := models.User{ID: primitive.NewObjectID(), Email: "root@example.com", Role: models.RoleAdmin}
		f := newFakeAdminStore(existing)
		if err := ensureAdmin(ctx, f, "Admin", existing.Email, "", log); err != nil {
			t.Fatal(err)
		}
		if len(f.updated) != 0 {
			t.Error("expected no update")
		}
	})
}

// testHandler builds the router without a reachable database. Only routes
// that never touch Mongo are exercised.
func testHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	client, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI("mongodb://127.0.0.1:1").SetServerSelectionTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	deps := DBDeps{MongoClient: client, MongoDatabase: client.Database("portfolio_test")}

	cfg := validConfig()
	cfg.SiteName = "Portfolio"
	cfg.Version = "1.2.3"
	cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}

	tok, err := tokens.New(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := auth.NewSessionManager(cfg.SessionKey, "portfolio-session", "", tok.TTL(), false, logger)
	if err != nil {
		t.Fatal(err)
	}
	local, err := storage.NewLocal(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: cfg.StorageLocalURL})
	if err != nil {
		t.Fatal(err)
	}
	limit := ratelimit.New(5, time.Minute)
	t.Cleanup(limit.Close)

	svc := &Services{
		Tokens:       tok,
		Sessions:     sessions,
		Reporter:     errreport.Disabled(),
		Storage:      local,
		LocalFile:    local,
		Mailer:       mailer.New(mailer.Config{}, logger),
		ContactLimit: limit,
		ForgotLimit:  limit,
		LoginLimiter: ratelimit.NewLoginLimiter(limit, limit, logger),
	}

	h, err := BuildHandler(cfg, deps, svc, logger)
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h
}

func TestBuildHandler_Root(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Version string `json:"version"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Message != "Portfolio API is running" || body.Data.Version != "1.2.3" {
		t.Errorf("body = %+v", body)
	}
}

func TestBuildHandler_JSONNotFound(t *testing.T) {
	h := testHandler(t)

	for _, path := range []string{"/nowhere", "/about/nowhere/deeper"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if body.Success || body.Message != "Route "+path+" not found" {
			t.Errorf("%s: body = %+v", path, body)
		}
	}
}

func TestBuildHandler_CORSPreflight(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/contact", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestBuildHandler_AdminRoutesRequireAuth(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
