package registry

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the registry over HTTP: a seed trigger and a public
// license existence check.
type Handler struct {
	store   Store
	csvPath string
}

func NewHandler(store Store, csvPath string) *Handler {
	return &Handler{store: store, csvPath: csvPath}
}

// SeedHandler loads the registry CSV and inserts any licenses not yet
// present. Re-running is safe; existing rows are never overwritten.
func (h *Handler) SeedHandler(w http.ResponseWriter, r *http.Request) {
	records, err := ParseCSV(h.csvPath)
	if err != nil {
		http.Error(w, "Failed to read registry csv: "+err.Error(), http.StatusInternalServerError)
		return
	}

	n, err := h.store.Seed(records)
	if err != nil {
		http.Error(w, "Failed to seed registry: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("Registry seed inserted %d of %d rows", n, len(records))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"seeded": n})
}

// CheckHandler reports whether a license exists, with owner and expiry for
// the reviewer UI. It never exposes the full registry row.
func (h *Handler) CheckHandler(w http.ResponseWriter, r *http.Request) {
	licenseID := chi.URLParam(r, "license_id")

	board, err := h.store.Lookup(licenseID)
	if err == ErrNotFound {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"exists": false})
		return
	}
	if err != nil {
		http.Error(w, "Registry lookup failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"exists":   true,
		"owner":    board.Owner,
		"valid_to": board.ValidTo,
	})
}
