package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/dalemusser/portfolio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureEmailIndex(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
}

func newUser(name, email, password string) models.User {
	u := models.User{Name: name, Email: email}
	u.SetPassword(password)
	return u
}

func storedHash(t *testing.T, db *mongo.Database, id primitive.ObjectID) string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var raw struct {
		Password string `bson:"password"`
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		t.Fatalf("load raw user: %v", err)
	}
	return raw.Password
}

func TestStore_Create_HashesAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newUser(" Ann ", "Ann@Example.com", "secret1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.Role != models.RoleUser {
		t.Errorf("Role = %q, want user", created.Role)
	}
	if created.Email != "ann@example.com" {
		t.Errorf("Email = %q, want lowercased", created.Email)
	}
	if created.Password != "" {
		t.Error("Create must not return the password")
	}

	hash := storedHash(t, db, created.ID)
	if hash == "" || hash == "secret1" {
		t.Fatalf("stored password must be a hash, got %q", hash)
	}
}

func TestStore_Create_RequiresPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{Name: "No Pass", Email: "np@example.com"})
	if !errors.Is(err, userstore.ErrPasswordRequired) {
		t.Errorf("err = %v, want ErrPasswordRequired", err)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ensureEmailIndex(t, db)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, newUser("A", "dup@example.com", "secret1")); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := store.Create(ctx, newUser("B", "DUP@example.com", "secret2"))
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_DefaultReadsHidePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newUser("A", "a@example.com", "secret1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	byEmail, err := store.GetByEmail(ctx, "A@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byID.Password != "" || byEmail.Password != "" {
		t.Error("default reads must not load the password")
	}

	withPw, err := store.GetByEmailWithPassword(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmailWithPassword: %v", err)
	}
	if !withPw.MatchPassword("secret1") {
		t.Error("expected password to match")
	}
}

func TestStore_Save_UnchangedPasswordKeepsHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newUser("A", "a@example.com", "secret1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := storedHash(t, db, created.ID)

	u, err := store.GetByIDWithPassword(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByIDWithPassword: %v", err)
	}
	u.Name = "Renamed"
	if err := store.Save(ctx, &u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if after := storedHash(t, db, created.ID); after != before {
		t.Error("saving without a password change must not alter the hash")
	}
}

func TestStore_Save_ChangedPasswordRehashes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newUser("A", "a@example.com", "old-secret"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, _ := store.GetByID(ctx, created.ID)
	u.SetPassword("new-secret")
	if err := store.Save(ctx, &u); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if u.PasswordDirty() {
		t.Error("Save should clear the dirty flag")
	}

	reloaded, err := store.GetByIDWithPassword(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.MatchPassword("new-secret") {
		t.Error("expected new password to match")
	}
	if reloaded.MatchPassword("old-secret") {
		t.Error("old password must no longer match")
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, newUser("A", "a@example.com", "secret1"))
	role := models.RoleAdmin
	name := "Boss"
	got, err := store.Update(ctx, created.ID, models.UserPatch{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Boss" || got.Role != models.RoleAdmin {
		t.Errorf("got %+v", got)
	}

	bad := "x"
	_, err = store.Update(ctx, created.ID, models.UserPatch{Password: &bad})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("short password: err = %v, want ValidationError", err)
	}

	_, err = store.Update(ctx, primitive.NewObjectID(), models.UserPatch{Name: &name})
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var first models.User
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u, err := store.Create(ctx, newUser("U", email, "secret1"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if i == 0 {
			first = u
		}
	}

	users, total, err := store.List(ctx, paging.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(users) != 2 {
		t.Errorf("List = %d users, total %d", len(users), total)
	}

	if err := store.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, first.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestStore_ResetTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := store.Create(ctx, newUser("A", "a@example.com", "secret1"))
	other, _ := store.Create(ctx, newUser("B", "b@example.com", "secret1"))
	now := time.Now()

	if err := store.SetResetToken(ctx, u.ID, "digest-1", now.Add(10*time.Minute)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if err := store.SetResetToken(ctx, other.ID, "digest-2", now.Add(-time.Minute)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	got, err := store.GetByResetToken(ctx, "digest-1", now)
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByResetToken = %v, %v", got.ID, err)
	}
	if _, err := store.GetByResetToken(ctx, "digest-2", now); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expired token: err = %v, want ErrNotFound", err)
	}

	n, err := store.ClearExpiredResetTokens(ctx, now)
	if err != nil || n != 1 {
		t.Errorf("ClearExpiredResetTokens = %d, %v; want 1", n, err)
	}

	if err := store.ClearResetToken(ctx, u.ID); err != nil {
		t.Fatalf("ClearResetToken: %v", err)
	}
	if _, err := store.GetByResetToken(ctx, "digest-1", now); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("cleared token: err = %v, want ErrNotFound", err)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, newUser("Ann", "ann@example.com", "secret1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ann" || got[0].Password != "" {
		t.Errorf("GetByIDs = %+v", got)
	}

	none, err := store.GetByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("GetByIDs(nil) = %v, %v", none, err)
	}
}
