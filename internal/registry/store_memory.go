package registry

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed Store used by tests and local tooling.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string]Billboard
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boards: make(map[string]Billboard)}
}

func (s *MemoryStore) Seed(records []Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range records {
		if _, ok := s.boards[rec.LicenseID]; ok {
			continue
		}
		s.boards[rec.LicenseID] = Billboard{
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
		n++
	}
	return n, nil
}

func (s *MemoryStore) Lookup(licenseID string) (*Billboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board, ok := s.boards[licenseID]
	if !ok {
		return nil, ErrNotFound
	}
	return &board, nil
}
