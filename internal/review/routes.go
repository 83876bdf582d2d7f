package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/{detection_id}", h.ReviewHandler)

	return r
}
