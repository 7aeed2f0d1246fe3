// internal/app/features/contact/routes.go
package contact

import (
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the contact inbox under the path where this router is
// mounted (typically "/contact" from bootstrap).
//
// Posting a message is public; createLimit throttles it. Everything else
// is admin only.
func Routes(h *Handler, createLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	if createLimit == nil {
		createLimit = func(next http.Handler) http.Handler { return next }
	}
	r.With(createLimit).Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}", h.HandleEdit)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Put("/{id}/read", h.HandleToggleRead)
	})

	return r
}
