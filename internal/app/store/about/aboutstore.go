// internal/app/store/about/aboutstore.go
package aboutstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/portfolio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when the About record does not exist (or is
	// not visible to the caller).
	ErrNotFound = errors.New("about profile not found")
	// ErrExists is returned by Create when the record is already present.
	ErrExists = errors.New("about profile already exists")
)

// MediaField names an About field that holds an uploaded file URL.
type MediaField string

const (
	MediaProfileImage MediaField = "profile_image"
	MediaResume       MediaField = "resume_url"
)

// Store is the single accessor for the About record. The collection may
// only ever hold one document; a unique index on `singleton` (see
// system/indexes) enforces it.
type Store struct {
	c *mongo.Collection
}

// New creates a new about store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("about")}
}

func singletonFilter() bson.M {
	return bson.M{"singleton": models.AboutSingletonKey}
}

// Get returns the record regardless of visibility.
func (s *Store) Get(ctx context.Context) (models.About, error) {
	return s.findOne(ctx, singletonFilter())
}

// GetPublic returns the record only when its visibility is public.
func (s *Store) GetPublic(ctx context.Context) (models.About, error) {
	f := singletonFilter()
	f["visibility"] = models.VisibilityPublic
	return s.findOne(ctx, f)
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.About, error) {
	var a models.About
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.About{}, ErrNotFound
		}
		return models.About{}, err
	}
	return a, nil
}

// Create inserts the record. It fails with ErrExists when one is already
// stored, including when a concurrent Create wins the race.
func (s *Store) Create(ctx context.Context, a models.About) (models.About, error) {
	// existence wins over validation: a second create is always ErrExists
	n, err := s.c.CountDocuments(ctx, singletonFilter())
	if err != nil {
		return models.About{}, err
	}
	if n > 0 {
		return models.About{}, ErrExists
	}

	a.Normalize()
	if err := a.Validate(); err != nil {
		return models.About{}, err
	}

	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Singleton = models.AboutSingletonKey
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.About{}, ErrExists
		}
		return models.About{}, err
	}
	return a, nil
}

// Upsert applies patch to the stored record, creating it when absent.
// Validation runs on the merged result.
func (s *Store) Upsert(ctx context.Context, patch models.AboutPatch) (models.About, error) {
	a, err := s.upsertOnce(ctx, patch)
	if wafflemongo.IsDup(err) {
		// a concurrent upsert inserted first; merge onto its record
		a, err = s.upsertOnce(ctx, patch)
	}
	return a, err
}

func (s *Store) upsertOnce(ctx context.Context, patch models.AboutPatch) (models.About, error) {
	a, err := s.Get(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return models.About{}, err
	}

	a.Apply(patch)
	a.Normalize()
	if err := a.Validate(); err != nil {
		return models.About{}, err
	}

	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
		a.CreatedAt = now
	}
	a.Singleton = models.AboutSingletonKey
	a.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, singletonFilter(), a, opts); err != nil {
		return models.About{}, err
	}
	return a, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context) error {
	res, err := s.c.DeleteOne(ctx, singletonFilter())
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSocialLinks merges patch onto the stored social links and saves
// the result. Links absent from patch are kept.
func (s *Store) UpdateSocialLinks(ctx context.Context, patch models.SocialLinksPatch) (models.SocialLinks, error) {
	a, err := s.Get(ctx)
	if err != nil {
		return models.SocialLinks{}, err
	}
	links := a.SocialLinks
	links.Apply(patch)
	links.Normalize()
	if err := links.Validate(); err != nil {
		return models.SocialLinks{}, err
	}
	a, err = s.setFields(ctx, bson.M{"social_links": links})
	if err != nil {
		return models.SocialLinks{}, err
	}
	return a.SocialLinks, nil
}

// UpdateAvailability merges patch onto the stored availability block (or
// an empty one) and saves the result.
func (s *Store) UpdateAvailability(ctx context.Context, patch models.AvailabilityPatch) (models.Availability, error) {
	a, err := s.Get(ctx)
	if err != nil {
		return models.Availability{}, err
	}
	var av models.Availability
	if a.Availability != nil {
		av = *a.Availability
	}
	av.Apply(patch)
	av.Normalize()
	if err := av.Validate(); err != nil {
		return models.Availability{}, err
	}
	a, err = s.setFields(ctx, bson.M{"availability": av})
	if err != nil {
		return models.Availability{}, err
	}
	if a.Availability == nil {
		return models.Availability{}, nil
	}
	return *a.Availability, nil
}

// SetMedia records the URL of an uploaded file and returns the previous
// URL so the caller can remove the old object.
func (s *Store) SetMedia(ctx context.Context, field MediaField, url string) (previous string, err error) {
	var before models.About
	err = s.c.FindOneAndUpdate(ctx, singletonFilter(),
		bson.M{"$set": bson.M{string(field): url, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	switch field {
	case MediaProfileImage:
		return before.ProfileImage, nil
	case MediaResume:
		return before.ResumeURL, nil
	}
	return "", nil
}

func (s *Store) setFields(ctx context.Context, set bson.M) (models.About, error) {
	set["updated_at"] = time.Now().UTC()
	var a models.About
	err := s.c.FindOneAndUpdate(ctx, singletonFilter(),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.About{}, ErrNotFound
	}
	if err != nil {
		return models.About{}, err
	}
	return a, nil
}
