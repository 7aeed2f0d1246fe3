// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/portfolio/internal/app/system/authutil"
	"github.com/dalemusser/portfolio/internal/app/system/normalize"
	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrPasswordRequired is returned by Create when no plaintext password was set.
	ErrPasswordRequired = errors.New("a password is required to create a user")
)

// publicProjection hides secrets from every default read.
var publicProjection = bson.M{
	"password":               0,
	"reset_password_token":   0,
	"reset_password_expires": 0,
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create validates u, hashes its dirty password and inserts it. The
// returned user has no password loaded.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if !u.PasswordDirty() {
		return models.User{}, ErrPasswordRequired
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	hash, err := authutil.HashPassword(u.Password)
	if err != nil {
		return models.User{}, err
	}
	u.SetPasswordHash(hash)

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	u.SetPasswordHash("")
	return u, nil
}

// GetByID loads a user without secrets.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, true)
}

// GetByIDs loads the users with the given ids, without secrets. Missing ids
// are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(publicProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByIDWithPassword loads a user including the password hash.
func (s *Store) GetByIDWithPassword(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, false)
}

// GetByEmail looks up a user by case-insensitive email, without secrets.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)}, true)
}

// GetByEmailWithPassword is GetByEmail including the password hash. Used by
// login only.
func (s *Store) GetByEmailWithPassword(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)}, false)
}

func (s *Store) findOne(ctx context.Context, filter bson.M, hideSecrets bool) (models.User, error) {
	opts := options.FindOne()
	if hideSecrets {
		opts.SetProjection(publicProjection)
	}
	var u models.User
	if err := s.c.FindOne(ctx, filter, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns one page of users, newest first, and the total count.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.User, int64, error) {
	total, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	find := options.Find().
		SetProjection(publicProjection).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	p.ApplyToFind(find)

	cur, err := s.c.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Save writes name, email and role. The password is rehashed and written
// only when it is dirty; otherwise the stored hash is left untouched.
func (s *Store) Save(ctx context.Context, u *models.User) error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"updated_at": u.UpdatedAt,
	}
	var hash string
	if u.PasswordDirty() {
		h, err := authutil.HashPassword(u.Password)
		if err != nil {
			return err
		}
		hash = h
		set["password"] = hash
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if u.PasswordDirty() {
		u.SetPasswordHash(hash)
	}
	return nil
}

// Update applies a partial update and returns the stored result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	u.Apply(patch)
	if err := s.Save(ctx, &u); err != nil {
		return models.User{}, err
	}
	u.SetPasswordHash("")
	return u, nil
}

// Delete removes a user by id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole counts users holding role.
func (s *Store) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": role})
}

// SetResetToken stores the digest of a reset token and its expiry.
func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"reset_password_token":   digest,
		"reset_password_expires": expires.UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByResetToken finds the user holding an unexpired reset token digest.
func (s *Store) GetByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error) {
	if digest == "" {
		return models.User{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{
		"reset_password_token":   digest,
		"reset_password_expires": bson.M{"$gt": now.UTC()},
	}, true)
}

// ClearResetToken removes any reset token from the user.
func (s *Store) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{
		"reset_password_token":   "",
		"reset_password_expires": "",
	}})
	return err
}

// ClearExpiredResetTokens removes reset tokens that expired before now and
// returns how many users were touched.
func (s *Store) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"reset_password_expires": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{
			"reset_password_token":   "",
			"reset_password_expires": "",
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	return res.ModifiedCount, nil
}
