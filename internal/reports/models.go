package reports

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Report statuses. Stored as a plain string: reviewers set whatever the
// dashboard sends and no transition rules are enforced yet.
const (
	StatusPending   = "pending"
	StatusReviewed  = "reviewed"
	StatusDismissed = "dismissed"
	StatusConfirmed = "confirmed"
)

// Violation kinds produced by the engine. Manual review entries use
// ReviewKindPrefix + decision.
const (
	KindSize           = "size"
	KindPlacement      = "placement"
	KindLicenseMissing = "license_missing"
	KindLicenseInvalid = "license_invalid"
	ReviewKindPrefix   = "review:"
)

type User struct {
	UserID     string `gorm:"primaryKey" json:"user_id"`
	PhoneHash  string `json:"-"`
	Role       string `gorm:"default:'citizen'" json:"role"`
	TrustScore int    `gorm:"default:0" json:"trust_score"`
}

type Report struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	UserID        *string   `json:"user_id,omitempty"`
	CapturedAt    time.Time `json:"captured_at"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	ImgURI        string    `json:"img_uri"`
	DeviceHeading float64   `json:"device_heading"`
	ModelVersion  string    `gorm:"default:'ondevice-0.1'" json:"model_version"`
	Status        string    `gorm:"default:'pending'" json:"status"`
}

type Detection struct {
	ID         string  `gorm:"primaryKey" json:"id"`
	ReportID   string  `gorm:"index" json:"report_id"`
	BBox       string  `json:"bbox"`    // detector geometry, stored opaque
	Corners    string  `json:"corners"` // same
	EstWidthM  float64 `json:"est_width_m"`
	EstHeightM float64 `json:"est_height_m"`
	QRText     string  `json:"qr_text,omitempty"`
	OCRText    string  `json:"ocr_text,omitempty"`
	LicenseID  string  `json:"license_id,omitempty"`
	Confidence float64 `json:"confidence"`
}

type Violation struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	DetectionID string    `gorm:"index" json:"detection_id"`
	Kind        string    `json:"type"`
	Reason      string    `json:"reason"`
	Severity    int       `gorm:"default:3" json:"severity"`
	CreatedAt   time.Time `json:"-"`
}

func (User) TableName() string      { return "sentinel.users" }
func (Report) TableName() string    { return "sentinel.reports" }
func (Detection) TableName() string { return "sentinel.detections" }
func (Violation) TableName() string { return "sentinel.violations" }

// DetectionInput is one detector candidate as submitted by the client.
// Geometry passes through opaque; the numeric fields are pointers so that
// "absent" is distinguishable from zero and can be coerced to the lenient
// defaults the upstream detector contract allows.
type DetectionInput struct {
	BBox       json.RawMessage `json:"bbox,omitempty"`
	Corners    json.RawMessage `json:"corners,omitempty"`
	EstWidthM  *float64        `json:"est_width_m,omitempty"`
	EstHeightM *float64        `json:"est_height_m,omitempty"`
	QRText     string          `json:"qr_text,omitempty"`
	OCRText    string          `json:"ocr_text,omitempty"`
	LicenseID  string          `json:"license_id,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
}

// toDetection coerces missing numerics (0.0 for dimensions, 0.5 for
// confidence) and normalizes detector-extracted text. The claimed license id
// is kept exactly as submitted; the engine trims before lookup.
func (in DetectionInput) toDetection(reportID string) Detection {
	det := Detection{
		ID:         uuid.NewString(),
		ReportID:   reportID,
		QRText:     NormalizeText(in.QRText),
		OCRText:    NormalizeText(in.OCRText),
		LicenseID:  in.LicenseID,
		Confidence: 0.5,
	}
	if len(in.BBox) > 0 {
		det.BBox = string(in.BBox)
	}
	if len(in.Corners) > 0 {
		det.Corners = string(in.Corners)
	}
	if in.EstWidthM != nil {
		det.EstWidthM = *in.EstWidthM
	}
	if in.EstHeightM != nil {
		det.EstHeightM = *in.EstHeightM
	}
	if in.Confidence != nil {
		det.Confidence = *in.Confidence
	}
	return det
}
