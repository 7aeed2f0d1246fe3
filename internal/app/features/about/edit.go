// internal/app/features/about/edit.go
package about

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/domain/models"
)

// HandleCreate handles POST /about. It fails with a conflict when the
// profile already exists; PUT is the way to change it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var patch models.AboutPatch
	if err := respond.DecodeJSON(w, r, &patch); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	sanitizePatch(&patch)

	var a models.About
	a.Apply(patch)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, a)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}

	h.audit(ctx, r, audit.EventAboutCreated, nil)
	respond.Created(w, "About profile created successfully", created)
}

// HandleUpsert handles PUT /about. The body is merged onto the stored
// profile (or an empty one) and the result must validate.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var patch models.AboutPatch
	if err := respond.DecodeJSON(w, r, &patch); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	sanitizePatch(&patch)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.Upsert(ctx, patch)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}

	h.audit(ctx, r, audit.EventAboutUpdated, nil)
	respond.Message(w, "About profile updated successfully", a)
}

type socialLinksInput struct {
	SocialLinks *models.SocialLinksPatch `json:"socialLinks"`
}

type availabilityInput struct {
	Availability *models.AvailabilityPatch `json:"availability"`
}

// HandleSocialLinks handles PUT /about/social-links. The body carries a
// "socialLinks" object; links it leaves out keep their stored value.
func (h *Handler) HandleSocialLinks(w http.ResponseWriter, r *http.Request) {
	var in socialLinksInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.SocialLinks == nil {
		respond.Error(w, r, h.Log, apierr.Validation("Please provide socialLinks",
			map[string]string{"socialLinks": "Please provide socialLinks"}))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.UpdateSocialLinks(ctx, *in.SocialLinks)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}

	h.audit(ctx, r, audit.EventAboutUpdated, map[string]string{"section": "social_links"})
	respond.Message(w, "Social links updated successfully", out)
}

// HandleAvailability handles PUT /about/availability. The body carries an
// "availability" object merged onto the stored one.
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	var in availabilityInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.Availability == nil {
		respond.Error(w, r, h.Log, apierr.Validation("Please provide availability",
			map[string]string{"availability": "Please provide availability"}))
		return
	}
	patch := *in.Availability
	if patch.Message != nil {
		msg := htmlsanitize.StripTags(*patch.Message)
		patch.Message = &msg
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Store.UpdateAvailability(ctx, patch)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}

	h.audit(ctx, r, audit.EventAboutUpdated, map[string]string{"section": "availability"})
	respond.Message(w, "Availability updated successfully", out)
}

// HandleDelete handles DELETE /about.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx); err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}

	h.audit(ctx, r, audit.EventAboutDeleted, nil)
	respond.Empty(w, "About profile deleted successfully")
}

func (h *Handler) audit(ctx context.Context, r *http.Request, event string, details map[string]string) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Admin(ctx, r, event, u.ID, details)
	}
}
