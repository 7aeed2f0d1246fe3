package home

import "github.com/go-chi/chi/v5"

// Routes registers GET / directly on r. Mounting at "/" would capture every
// unmatched path.
func Routes(r chi.Router, h *Handler) {
	r.Get("/", h.ServeRoot)
}
