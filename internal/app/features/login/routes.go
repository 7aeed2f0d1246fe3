// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account endpoints (typically at "/auth"). Login
// throttles itself per IP and per email; forgotLimit throttles reset mail.
func Routes(h *Handler, forgotLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	if forgotLimit == nil {
		forgotLimit = func(next http.Handler) http.Handler { return next }
	}

	r.Post("/login", h.HandleLogin)
	r.With(forgotLimit).Post("/forgot-password", h.HandleForgotPassword)
	r.Put("/reset-password/{token}", h.HandleResetPassword)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/logout", h.HandleLogout)
		pr.Get("/me", h.ServeMe)
		pr.Put("/password", h.HandleChangePassword)
	})

	return r
}
