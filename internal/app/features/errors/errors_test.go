package errors_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/portfolio/internal/app/features/errors"
	"github.com/dalemusser/portfolio/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestUnmatchedRoutes(t *testing.T) {
	h := uierrors.NewHandler(zap.NewNop())
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Get("/about", func(w http.ResponseWriter, _ *http.Request) {})

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/nowhere"))
	rec.AssertStatus(t, http.StatusNotFound)
	if env := rec.Decode(t, nil); env.Success || env.Message != "Route /nowhere not found" {
		t.Errorf("envelope = %+v", env)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("PATCH", "/about"))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
	if env := rec.Decode(t, nil); env.Success {
		t.Errorf("envelope = %+v", env)
	}
}
