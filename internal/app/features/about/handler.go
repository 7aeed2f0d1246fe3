// internal/app/features/about/handler.go
package about

import (
	"context"
	"errors"

	aboutstore "github.com/dalemusser/portfolio/internal/app/store/about"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auditlog"
	"github.com/dalemusser/portfolio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store is the About persistence the handlers need.
// *aboutstore.Store satisfies it.
type Store interface {
	Get(ctx context.Context) (models.About, error)
	GetPublic(ctx context.Context) (models.About, error)
	Create(ctx context.Context, a models.About) (models.About, error)
	Upsert(ctx context.Context, patch models.AboutPatch) (models.About, error)
	Delete(ctx context.Context) error
	UpdateSocialLinks(ctx context.Context, patch models.SocialLinksPatch) (models.SocialLinks, error)
	UpdateAvailability(ctx context.Context, patch models.AvailabilityPatch) (models.Availability, error)
	SetMedia(ctx context.Context, field aboutstore.MediaField, url string) (string, error)
}

type Handler struct {
	Store    Store
	Storage  storage.Store // nil disables uploads
	Log      *zap.Logger
	AuditLog *auditlog.Logger
}

// NewHandler constructs an About Handler backed by MongoDB.
func NewHandler(db *mongo.Database, files storage.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    aboutstore.New(db),
		Storage:  files,
		Log:      logger,
		AuditLog: audit,
	}
}

var errNotFound = apierr.NotFound("About profile not found")

// storeErr maps store sentinels to API errors.
func storeErr(err error) error {
	switch {
	case errors.Is(err, aboutstore.ErrNotFound):
		return errNotFound
	case errors.Is(err, aboutstore.ErrExists):
		return apierr.Conflict("About profile already exists. Use update instead.")
	}
	return err
}

// sanitizePatch strips markup from the plain-text fields and cleans the
// rich-text bio before anything is stored.
func sanitizePatch(p *models.AboutPatch) {
	for _, s := range []*string{p.Name, p.Title, p.Tagline, p.Summary, p.Location} {
		if s != nil {
			*s = htmlsanitize.StripTags(*s)
		}
	}
	if p.Bio != nil {
		*p.Bio = htmlsanitize.Sanitize(*p.Bio)
	}
	if p.Availability != nil {
		p.Availability.Message = htmlsanitize.StripTags(p.Availability.Message)
	}
}
