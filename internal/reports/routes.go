package reports

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the report endpoints. submitLimit guards the upload
// path only; reads stay unthrottled for the dashboard.
func SetupRoutes(h *Handler, submitLimit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.With(submitLimit).Post("/", h.SubmitHandler)
	r.Get("/", h.ListHandler)
	r.Get("/{report_id}", h.GetHandler)
	r.Patch("/{report_id}", h.UpdateStatusHandler)

	return r
}
