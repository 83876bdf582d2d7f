package reports

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormStore keeps reports, detections and violations in Postgres. Atomically
// wraps one submission in a single transaction, matching the
// all-rows-or-none contract.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Atomically(fn func(tx Store) error) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	if err := fn(&GormStore{db: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *GormStore) CreateUser(u *User) error {
	return s.db.Create(u).Error
}

func (s *GormStore) CreateReport(rep *Report) error {
	return s.db.Create(rep).Error
}

func (s *GormStore) CreateDetection(det *Detection) error {
	return s.db.Create(det).Error
}

func (s *GormStore) CreateViolation(v *Violation) error {
	return s.db.Create(v).Error
}

func (s *GormStore) GetReport(id string) (*Report, error) {
	var rep Report
	err := s.db.First(&rep, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (s *GormStore) ListReports() ([]Report, error) {
	var reps []Report
	if err := s.db.Order("captured_at DESC").Find(&reps).Error; err != nil {
		return nil, err
	}
	return reps, nil
}

func (s *GormStore) GetDetection(id string) (*Detection, error) {
	var det Detection
	err := s.db.First(&det, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &det, nil
}

func (s *GormStore) DetectionsByReport(reportID string) ([]Detection, error) {
	var dets []Detection
	if err := s.db.Find(&dets, "report_id = ?", reportID).Error; err != nil {
		return nil, err
	}
	return dets, nil
}

func (s *GormStore) ViolationsByDetections(detectionIDs []string) (map[string][]Violation, error) {
	byDetection := make(map[string][]Violation)
	if len(detectionIDs) == 0 {
		return byDetection, nil
	}

	var violations []Violation
	err := s.db.
		Where("detection_id = ANY(?)", pq.Array(detectionIDs)).
		Order("created_at ASC, id ASC").
		Find(&violations).Error
	if err != nil {
		return nil, fmt.Errorf("batch-load violations: %w", err)
	}

	for _, v := range violations {
		byDetection[v.DetectionID] = append(byDetection[v.DetectionID], v)
	}
	return byDetection, nil
}

func (s *GormStore) SaveReportStatus(id, status string) (*Report, error) {
	rep, err := s.GetReport(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(rep).Update("status", status).Error; err != nil {
		return nil, err
	}
	rep.Status = status
	return rep, nil
}

func (s *GormStore) Counts() (Totals, error) {
	t := Totals{ByKind: make(map[string]int64)}

	if err := s.db.Model(&Report{}).Count(&t.Reports).Error; err != nil {
		return t, err
	}
	if err := s.db.Model(&Detection{}).Count(&t.Detections).Error; err != nil {
		return t, err
	}
	if err := s.db.Model(&Violation{}).Count(&t.Violations).Error; err != nil {
		return t, err
	}

	rows, err := s.db.Model(&Violation{}).
		Select("kind, count(*) as n").
		Group("kind").
		Rows()
	if err != nil {
		return t, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return t, err
		}
		t.ByKind[kind] = n
	}
	return t, rows.Err()
}
