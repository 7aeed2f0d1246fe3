// internal/app/features/contact/create.go
package contact

import (
	"context"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/mailer"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"github.com/dalemusser/portfolio/internal/app/system/timeouts"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"go.uber.org/zap"
)

type createInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// HandleCreate handles the public POST /contact. The record is always
// stored unread.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.Create(ctx, models.Contact{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.notifyOwner(r.Context(), c)
	respond.Created(w, "", c)
}

// notifyOwner sends the new-message email in the background. Delivery
// failure never affects the response.
func (h *Handler) notifyOwner(parent context.Context, c models.Contact) {
	if h.Mailer == nil || !h.Mailer.Enabled() || h.Notify.To == "" {
		return
	}

	e := mailer.BuildContactNotification(mailer.ContactNotificationData{
		SiteName: h.Notify.SiteName,
		Name:     c.Name,
		Email:    c.Email,
		Subject:  c.Subject,
		Message:  c.Message,
		AdminURL: h.Notify.AdminURL,
	})
	e.To = h.Notify.To

	ctx := context.WithoutCancel(parent)
	go func() {
		ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "contact notification")
		defer cancel()
		if err := h.Mailer.Send(ctx, e); err != nil {
			h.Log.Warn("contact notification failed",
				zap.String("contact_id", c.ID.Hex()),
				zap.Error(err))
		}
	}()
}
