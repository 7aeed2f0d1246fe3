// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all audit log routes under the path where this
// router is mounted (typically "/audit" from bootstrap). Admins only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/categories", h.ServeCategories)
	})

	return r
}
