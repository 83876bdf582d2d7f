package review

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BillboardSentinel/BS-Backend/internal/reports"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ledger *Ledger
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// ReviewHandler records a reviewer decision for one detection. Decision and
// notes arrive as query parameters, matching the dashboard's fetch call.
func (h *Handler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	detectionID := chi.URLParam(r, "detection_id")

	decision := r.URL.Query().Get("status")
	if decision == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}
	notes := r.URL.Query().Get("notes")

	err := h.ledger.AddReview(detectionID, decision, notes)
	if errors.Is(err, reports.ErrNotFound) {
		http.Error(w, "Detection not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to record review: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
