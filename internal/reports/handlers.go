package reports

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BillboardSentinel/BS-Backend/internal/redact"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Handler owns the report endpoints. The raw upload is written under
// StorageDir, redacted, and only the redacted path enters the pipeline.
type Handler struct {
	Pipeline   *Pipeline
	StorageDir string
	RedactMode string
}

func NewHandler(pipeline *Pipeline, storageDir, redactMode string) *Handler {
	return &Handler{Pipeline: pipeline, StorageDir: storageDir, RedactMode: redactMode}
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	lat, err := strconv.ParseFloat(r.FormValue("lat"), 64)
	if err != nil {
		http.Error(w, "lat is required", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(r.FormValue("lon"), 64)
	if err != nil {
		http.Error(w, "lon is required", http.StatusBadRequest)
		return
	}

	var heading *float64
	if raw := r.FormValue("device_heading"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid device_heading", http.StatusBadRequest)
			return
		}
		heading = &v
	}

	var detections []DetectionInput
	if err := json.Unmarshal([]byte(r.FormValue("detections_json")), &detections); err != nil {
		http.Error(w, "Invalid detections_json: "+err.Error(), http.StatusBadRequest)
		return
	}

	var phoneHash string
	if phone := r.FormValue("phone"); phone != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(phone), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Server error hashing phone", http.StatusInternalServerError)
			return
		}
		phoneHash = string(hashed)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	redactedPath, err := h.storeRedacted(file, header.Filename)
	if err != nil {
		http.Error(w, "Failed to store image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	summary, err := h.Pipeline.Submit(SubmitInput{
		Lat:           lat,
		Lon:           lon,
		DeviceHeading: heading,
		ImgURI:        redactedPath,
		PhoneHash:     phoneHash,
		Detections:    detections,
	})
	if err != nil {
		log.Printf("Report submission failed: %v", err)
		http.Error(w, "Failed to persist report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// storeRedacted saves the raw upload, writes a redacted copy next to it and
// returns the redacted path. The raw file stays on disk for audits but is
// never referenced by a report row.
func (h *Handler) storeRedacted(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.StorageDir, 0o755); err != nil {
		return "", err
	}

	uid := uuid.NewString()
	rawPath := filepath.Join(h.StorageDir, uid+"_raw_"+filepath.Base(filename))
	out, err := os.Create(rawPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	redactedPath := filepath.Join(h.StorageDir, uid+"_redacted.jpg")
	if err := redact.Image(rawPath, redactedPath, h.RedactMode); err != nil {
		return "", err
	}
	return redactedPath, nil
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "report_id")

	detail, err := h.Pipeline.Get(reportID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Pipeline.List()
	if err != nil {
		http.Error(w, "Failed to list reports: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *Handler) HeatmapHandler(w http.ResponseWriter, r *http.Request) {
	fc, err := h.Pipeline.Heatmap()
	if err != nil {
		http.Error(w, "Failed to build heatmap: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fc)
}

func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "report_id")

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Status == "" {
		http.Error(w, "No status provided", http.StatusBadRequest)
		return
	}

	rep, err := h.Pipeline.UpdateStatus(reportID, input.Status)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update status: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "status": rep.Status})
}
