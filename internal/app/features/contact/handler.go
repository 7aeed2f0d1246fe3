// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	contactstore "github.com/dalemusser/portfolio/internal/app/store/contacts"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"github.com/dalemusser/portfolio/internal/app/system/mailer"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store is the contact persistence the handlers need.
// *contactstore.Store satisfies it.
type Store interface {
	List(ctx context.Context, f contactstore.ListFilter) ([]models.Contact, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (time.Time, bool, error)
	Create(ctx context.Context, c models.Contact) (models.Contact, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ContactPatch) (models.Contact, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleRead(ctx context.Context, id primitive.ObjectID) (models.Contact, error)
}

// Notifier delivers the owner notification. *mailer.Mailer satisfies it.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, e mailer.Email) error
}

// Notify configures the optional email sent for each new message.
type Notify struct {
	To       string // owner address; empty disables notification
	SiteName string
	AdminURL string // link to the admin inbox, included in the mail
}

type Handler struct {
	Store    Store
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Mailer   Notifier
	Notify   Notify
}

// NewHandler constructs a contact Handler backed by MongoDB.
func NewHandler(db *mongo.Database, m Notifier, notify Notify, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    contactstore.New(db),
		Log:      logger,
		AuditLog: audit,
		Mailer:   m,
		Notify:   notify,
	}
}

func notFound(id string) error {
	return apierr.NotFound(fmt.Sprintf("Contact not found with id of %s", id))
}

// contactID parses the {id} URL parameter. A malformed id cannot match
// any record, so it is reported as not found.
func contactID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, notFound(raw)
	}
	return id, nil
}

// storeErr maps store sentinels to API errors.
func storeErr(err error, id primitive.ObjectID) error {
	if errors.Is(err, contactstore.ErrNotFound) {
		return notFound(id.Hex())
	}
	return err
}
