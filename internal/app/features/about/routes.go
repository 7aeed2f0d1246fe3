// internal/app/features/about/routes.go
package about

import (
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the About endpoints (typically at "/about").
//
//	GET    /                public profile
//	GET    /admin           profile at any visibility
//	POST   /                create (conflict when present)
//	PUT    /                upsert
//	DELETE /                delete
//	PUT    /social-links    replace social links
//	PUT    /availability    replace availability
//	PUT    /profile-image   upload profile image
//	PUT    /resume          upload resume PDF
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServePublic)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Get("/admin", h.ServeAdmin)
		pr.Post("/", h.HandleCreate)
		pr.Put("/", h.HandleUpsert)
		pr.Delete("/", h.HandleDelete)
		pr.Put("/social-links", h.HandleSocialLinks)
		pr.Put("/availability", h.HandleAvailability)

		if h.Storage != nil {
			pr.Put("/profile-image", h.HandleProfileImage)
			pr.Put("/resume", h.HandleResume)
		}
	})

	return r
}
