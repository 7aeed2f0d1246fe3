package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user whose password is hashed at the minimum bcrypt
// cost to keep tests fast.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, password string, role models.Role) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.SetPasswordHash(string(hash))

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin inserts an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, email, password string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Admin", email, password, models.RoleAdmin)
}

// CreateContact inserts a contact message created at createdAt.
func (f *Fixtures) CreateContact(ctx context.Context, subject string, read bool, createdAt time.Time) models.Contact {
	f.t.Helper()

	c := models.Contact{
		ID:        primitive.NewObjectID(),
		Name:      "Visitor",
		Email:     "visitor@example.com",
		Subject:   subject,
		Message:   "This message is long enough",
		Read:      read,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if _, err := f.db.Collection("contacts").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test contact: %v", err)
	}
	return c
}

// CreateAbout inserts the About document with the given visibility.
func (f *Fixtures) CreateAbout(ctx context.Context, summary string, vis models.Visibility) models.About {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.About{
		ID:         primitive.NewObjectID(),
		Singleton:  models.AboutSingletonKey,
		Name:       "Owner",
		Summary:    summary,
		Visibility: vis,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("about").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test about: %v", err)
	}
	return a
}
