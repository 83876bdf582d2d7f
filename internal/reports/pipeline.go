package reports

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BillboardSentinel/BS-Backend/internal/metrics"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SubmitInput is one parsed citizen submission: location, redacted image
// reference and the raw detection list. PhoneHash is optional and already
// hashed by the caller.
type SubmitInput struct {
	Lat           float64
	Lon           float64
	DeviceHeading *float64
	CapturedAt    time.Time
	ImgURI        string
	PhoneHash     string
	Detections    []DetectionInput
}

type DetectionSummary struct {
	ID         string    `json:"id"`
	Violations []Finding `json:"violations"`
	Confidence float64   `json:"confidence"`
}

type ReportSummary struct {
	ID         string             `json:"id"`
	Detections []DetectionSummary `json:"detections"`
}

type DetectionDetail struct {
	ID         string    `json:"id"`
	BBox       string    `json:"bbox"`
	EstW       float64   `json:"est_w"`
	EstH       float64   `json:"est_h"`
	LicenseID  string    `json:"license_id,omitempty"`
	Violations []Finding `json:"violations"`
}

type ReportDetail struct {
	ID         string            `json:"id"`
	ImgURI     string            `json:"img_uri"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Status     string            `json:"status"`
	CapturedAt time.Time         `json:"captured_at"`
	Detections []DetectionDetail `json:"detections"`
}

// ReportListEntry is the dashboard projection of one report.
type ReportListEntry struct {
	ID          string            `json:"id"`
	Location    string            `json:"location"`
	Coordinates [2]float64        `json:"coordinates"`
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Detections  []DetectionDetail `json:"detections"`
	Image       string            `json:"image"`
}

// Pipeline orchestrates a submission: persist the report, run the engine per
// detection, persist the resulting violations, return a per-detection
// summary. All rows of one submission commit as a unit.
type Pipeline struct {
	store  Store
	engine *Engine
}

func NewPipeline(store Store, engine *Engine) *Pipeline {
	return &Pipeline{store: store, engine: engine}
}

func (p *Pipeline) Submit(in SubmitInput) (*ReportSummary, error) {
	summary := &ReportSummary{Detections: []DetectionSummary{}}

	err := p.store.Atomically(func(tx Store) error {
		var userID *string
		if in.PhoneHash != "" {
			user := User{UserID: uuid.NewString(), PhoneHash: in.PhoneHash, Role: "citizen"}
			if err := tx.CreateUser(&user); err != nil {
				return fmt.Errorf("insert user: %w", err)
			}
			userID = &user.UserID
		}

		capturedAt := in.CapturedAt
		if capturedAt.IsZero() {
			capturedAt = time.Now().UTC()
		}
		var heading float64
		if in.DeviceHeading != nil {
			heading = *in.DeviceHeading
		}

		rep := Report{
			ID:            uuid.NewString(),
			UserID:        userID,
			CapturedAt:    capturedAt,
			Lat:           in.Lat,
			Lon:           in.Lon,
			ImgURI:        in.ImgURI,
			DeviceHeading: heading,
			ModelVersion:  "ondevice-0.1",
			Status:        StatusPending,
		}
		if err := tx.CreateReport(&rep); err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
		summary.ID = rep.ID

		for i, din := range in.Detections {
			det := din.toDetection(rep.ID)
			if err := tx.CreateDetection(&det); err != nil {
				return fmt.Errorf("insert detection %d: %w", i, err)
			}

			findings, err := p.engine.Evaluate(in.Lat, in.Lon, &det)
			if err != nil {
				return fmt.Errorf("evaluate detection %d: %w", i, err)
			}
			if findings == nil {
				findings = []Finding{}
			}

			for _, f := range findings {
				v := Violation{
					ID:          uuid.NewString(),
					DetectionID: det.ID,
					Kind:        f.Kind,
					Reason:      f.Reason,
					Severity:    f.Severity,
					CreatedAt:   time.Now().UTC(),
				}
				if err := tx.CreateViolation(&v); err != nil {
					return fmt.Errorf("insert violation: %w", err)
				}
			}

			summary.Detections = append(summary.Detections, DetectionSummary{
				ID:         det.ID,
				Violations: findings,
				Confidence: det.Confidence,
			})
		}
		return nil
	})
	if err != nil {
		metrics.SubmissionFailuresTotal.Inc()
		return nil, fmt.Errorf("submission failed: %w", err)
	}

	metrics.ReportsTotal.Inc()
	metrics.DetectionsTotal.Add(float64(len(summary.Detections)))
	for _, det := range summary.Detections {
		for _, f := range det.Violations {
			metrics.ViolationsTotal.WithLabelValues(f.Kind).Inc()
		}
	}
	return summary, nil
}

// Get joins a report with its detections and their violations.
func (p *Pipeline) Get(reportID string) (*ReportDetail, error) {
	rep, err := p.store.GetReport(reportID)
	if err != nil {
		return nil, err
	}

	dets, err := p.store.DetectionsByReport(rep.ID)
	if err != nil {
		return nil, err
	}

	detail := &ReportDetail{
		ID:         rep.ID,
		ImgURI:     rep.ImgURI,
		Lat:        rep.Lat,
		Lon:        rep.Lon,
		Status:     rep.Status,
		CapturedAt: rep.CapturedAt,
		Detections: []DetectionDetail{},
	}
	detail.Detections, err = p.joinViolations(dets)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns every report with nested detections for the dashboard.
func (p *Pipeline) List() ([]ReportListEntry, error) {
	reps, err := p.store.ListReports()
	if err != nil {
		return nil, err
	}

	out := []ReportListEntry{}
	for _, rep := range reps {
		dets, err := p.store.DetectionsByReport(rep.ID)
		if err != nil {
			return nil, err
		}
		joined, err := p.joinViolations(dets)
		if err != nil {
			return nil, err
		}

		entry := ReportListEntry{
			ID:          rep.ID,
			Location:    locationLabel(rep.ID),
			Coordinates: [2]float64{rep.Lat, rep.Lon},
			Status:      rep.Status,
			Timestamp:   rep.CapturedAt.Format(time.RFC3339),
			Detections:  joined,
		}
		if rep.ImgURI != "" {
			entry.Image = "/static/uploads/" + filepath.Base(rep.ImgURI)
		}
		out = append(out, entry)
	}
	return out, nil
}

// Heatmap projects every report location into a GeoJSON FeatureCollection.
func (p *Pipeline) Heatmap() (*geojson.FeatureCollection, error) {
	reps, err := p.store.ListReports()
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, rep := range reps {
		f := geojson.NewFeature(orb.Point{rep.Lon, rep.Lat})
		f.Properties["id"] = rep.ID
		f.Properties["captured_at"] = rep.CapturedAt.Format(time.RFC3339)
		fc.Append(f)
	}
	return fc, nil
}

// UpdateStatus sets the report status verbatim. Transition legality is
// deliberately not validated.
func (p *Pipeline) UpdateStatus(reportID, status string) (*Report, error) {
	return p.store.SaveReportStatus(reportID, status)
}

func (p *Pipeline) joinViolations(dets []Detection) ([]DetectionDetail, error) {
	ids := make([]string, 0, len(dets))
	for _, det := range dets {
		ids = append(ids, det.ID)
	}
	byDetection, err := p.store.ViolationsByDetections(ids)
	if err != nil {
		return nil, err
	}

	out := []DetectionDetail{}
	for _, det := range dets {
		findings := []Finding{}
		for _, v := range byDetection[det.ID] {
			findings = append(findings, Finding{Kind: v.Kind, Reason: v.Reason, Severity: v.Severity})
		}
		out = append(out, DetectionDetail{
			ID:         det.ID,
			BBox:       det.BBox,
			EstW:       det.EstWidthM,
			EstH:       det.EstHeightM,
			LicenseID:  det.LicenseID,
			Violations: findings,
		})
	}
	return out, nil
}

func locationLabel(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "Location " + id
}
