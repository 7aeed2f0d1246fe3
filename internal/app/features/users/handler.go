// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/portfolio/internal/app/store/users"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"github.com/dalemusser/portfolio/internal/app/system/paging"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store is the user persistence the admin endpoints need.
// *userstore.Store satisfies it.
type Store interface {
	List(ctx context.Context, p paging.Params) ([]models.User, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Handler struct {
	Store    Store
	Log      *zap.Logger
	AuditLog *auditlog.Logger
}

// NewHandler constructs the user admin handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    userstore.New(db),
		Log:      logger,
		AuditLog: audit,
	}
}

func notFound(id string) error {
	return apierr.NotFound(fmt.Sprintf("User not found with id of %s", id))
}

func userID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, notFound(raw)
	}
	return id, nil
}

// storeErr maps store sentinels to API errors.
func storeErr(err error, id primitive.ObjectID) error {
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		return notFound(id.Hex())
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return apierr.Validation("A user with this email already exists",
			map[string]string{"email": "A user with this email already exists"})
	}
	return err
}
