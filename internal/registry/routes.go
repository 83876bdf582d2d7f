package registry

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/seed", h.SeedHandler)
	r.Get("/{license_id}", h.CheckHandler)

	return r
}
