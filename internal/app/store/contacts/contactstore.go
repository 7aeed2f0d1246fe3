// internal/app/store/contacts/contactstore.go
package contactstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no contact matches the id.
var ErrNotFound = errors.New("contact not found")

// ListFilter narrows List. A nil Read returns both read and unread.
type ListFilter struct {
	Read *bool
	paging.Params
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contacts")}
}

// List returns one page of contacts, newest first, and the number matching
// the filter. Pages past the end yield an empty, non-nil slice.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Contact, int64, error) {
	filter := bson.M{}
	if f.Read != nil {
		filter["read"] = *f.Read
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	f.Params.ApplyToFind(find)

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Contact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID loads one contact.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error) {
	var c models.Contact
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Contact{}, ErrNotFound
		}
		return models.Contact{}, err
	}
	return c, nil
}

// MarkRead sets read=true when it is not already set. It reports whether a
// change was written and the updated_at value it wrote.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID) (updatedAt time.Time, changed bool, err error) {
	// BSON dates hold milliseconds; truncate so the caller sees what a reload returns
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "read": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"read": true, "updated_at": now}},
	)
	if err != nil {
		return time.Time{}, false, err
	}
	if res.ModifiedCount == 0 {
		return time.Time{}, false, nil
	}
	return now, true, nil
}

// Create stores a new unread message.
func (s *Store) Create(ctx context.Context, c models.Contact) (models.Contact, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return models.Contact{}, err
	}

	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Read = false
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Update applies patch and re-validates the merged record before writing.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, patch models.ContactPatch) (models.Contact, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Contact{}, err
	}
	c.Apply(patch)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return models.Contact{}, err
	}
	c.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, c)
	if err != nil {
		return models.Contact{}, err
	}
	if res.MatchedCount == 0 {
		return models.Contact{}, ErrNotFound
	}
	return c, nil
}

// Delete removes one contact.
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

// ToggleRead flips the read flag in a single server-side update so two
// concurrent toggles never collapse into one.
func (s *Store) ToggleRead(ctx context.Context, id primitive.ObjectID) (models.Contact, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "read", Value: bson.D{{Key: "$not", Value: bson.A{"$read"}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}
	var c models.Contact
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Contact{}, ErrNotFound
	}
	if err != nil {
		return models.Contact{}, err
	}
	return c, nil
}
