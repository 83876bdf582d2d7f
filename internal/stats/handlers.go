package stats

import (
	"encoding/json"
	"net/http"

	"github.com/BillboardSentinel/BS-Backend/internal/reports"
)

type Handler struct {
	store reports.Store
}

func NewHandler(store reports.Store) *Handler {
	return &Handler{store: store}
}

// SummaryHandler returns totals over the persisted state: report, detection
// and violation counts plus a per-kind violation breakdown.
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.Counts()
	if err != nil {
		http.Error(w, "Failed to compute stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"reports":            totals.Reports,
		"detections":         totals.Detections,
		"violations":         totals.Violations,
		"violations_by_type": totals.ByKind,
	})
}
