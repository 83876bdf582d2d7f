package reports

import "errors"

// ErrNotFound is returned for lookups of reports or detections that do not
// exist. Handlers surface it as a 404, never a crash.
var ErrNotFound = errors.New("record not found")

// Totals backs the stats projection.
type Totals struct {
	Reports    int64
	Detections int64
	Violations int64
	ByKind     map[string]int64
}

// Store is the persistence surface the pipeline works against. Atomically is
// the unit of work: every write of one submission goes through the Store
// passed to fn and commits together or not at all.
type Store interface {
	Atomically(fn func(tx Store) error) error

	CreateUser(u *User) error
	CreateReport(rep *Report) error
	CreateDetection(det *Detection) error
	CreateViolation(v *Violation) error

	GetReport(id string) (*Report, error)
	ListReports() ([]Report, error)
	GetDetection(id string) (*Detection, error)
	DetectionsByReport(reportID string) ([]Detection, error)
	// ViolationsByDetections batch-loads violations for a set of detections,
	// keyed by detection id, in insertion order.
	ViolationsByDetections(detectionIDs []string) (map[string][]Violation, error)

	SaveReportStatus(id, status string) (*Report, error)

	Counts() (Totals, error)
}
