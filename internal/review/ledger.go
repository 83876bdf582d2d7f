package review

import (
	"time"

	"github.com/BillboardSentinel/BS-Backend/internal/metrics"
	"github.com/BillboardSentinel/BS-Backend/internal/reports"
	"github.com/google/uuid"
)

// Ledger appends manual review decisions to a detection's violation trail.
// Entries are additive only: engine-produced violations are never touched,
// so the audit history of a detection stays intact.
type Ledger struct {
	store reports.Store
}

func NewLedger(store reports.Store) *Ledger {
	return &Ledger{store: store}
}

// AddReview records one reviewer decision as a severity-0 violation with
// kind "review:<decision>". Returns reports.ErrNotFound for unknown
// detections.
func (l *Ledger) AddReview(detectionID, decision, notes string) error {
	if _, err := l.store.GetDetection(detectionID); err != nil {
		return err
	}

	v := reports.Violation{
		ID:          uuid.NewString(),
		DetectionID: detectionID,
		Kind:        reports.ReviewKindPrefix + decision,
		Reason:      notes,
		Severity:    0,
		CreatedAt:   time.Now().UTC(),
	}
	if err := l.store.CreateViolation(&v); err != nil {
		return err
	}

	metrics.ViolationsTotal.WithLabelValues(v.Kind).Inc()
	return nil
}
