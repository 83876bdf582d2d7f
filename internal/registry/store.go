package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Lookup when no billboard carries the license.
var ErrNotFound = errors.New("registry billboard not found")

// Store is the narrow registry surface the violation engine depends on.
type Store interface {
	// Seed inserts the given records, skipping any license_id that already
	// exists (first seed wins), and returns the number of new rows. Safe to
	// re-run.
	Seed(records []Record) (int, error)

	// Lookup returns the billboard for the exact license identifier as
	// supplied; trimming is the caller's job.
	Lookup(licenseID string) (*Billboard, error)
}

// GormStore keeps the registry in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Seed(records []Record) (int, error) {
	n := 0
	for _, rec := range records {
		var existing Billboard
		err := s.db.First(&existing, "license_id = ?", rec.LicenseID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return n, fmt.Errorf("check license %s: %w", rec.LicenseID, err)
		}

		board := Billboard{
			ID:        uuid.NewString(),
			LicenseID: rec.LicenseID,
			Owner:     rec.Owner,
			Lat:       rec.Lat,
			Lon:       rec.Lon,
			WidthM:    rec.WidthM,
			HeightM:   rec.HeightM,
			ValidFrom: rec.ValidFrom,
			ValidTo:   rec.ValidTo,
		}
		if err := s.db.Create(&board).Error; err != nil {
			return n, fmt.Errorf("insert license %s: %w", rec.LicenseID, err)
		}
		n++
	}
	return n, nil
}

func (s *GormStore) Lookup(licenseID string) (*Billboard, error) {
	var board Billboard
	err := s.db.First(&board, "license_id = ?", licenseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}
