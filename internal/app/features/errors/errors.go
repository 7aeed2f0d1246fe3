// internal/app/features/errors/errors.go
package errors

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/apierr"
	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler answers requests no route claimed, in the standard envelope.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, h.Log, apierr.NotFound(fmt.Sprintf("Route %s not found", r.URL.Path)))
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, map[string]any{
		"success": false,
		"message": fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path),
	})
}
