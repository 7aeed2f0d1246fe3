package home

import (
	"net/http"

	"github.com/dalemusser/portfolio/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler serves the API root.
type Handler struct {
	Name    string
	Version string
	Log     *zap.Logger
}

func NewHandler(name, version string, logger *zap.Logger) *Handler {
	return &Handler{
		Name:    name,
		Version: version,
		Log:     logger,
	}
}

type rootInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – API root                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, h.Name+" is running", rootInfo{Name: h.Name, Version: h.Version})
}
