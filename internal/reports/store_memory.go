package reports

import "sync"

// MemoryStore is a map-backed Store for tests and local runs without
// Postgres. Atomically snapshots the maps and restores them when fn fails,
// giving the same all-or-nothing visibility as the SQL transaction.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]User
	reports    map[string]Report
	detections map[string]Detection
	// violations keeps insertion order per detection, matching the
	// engine's presentation order.
	violations map[string][]Violation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]User),
		reports:    make(map[string]Report),
		detections: make(map[string]Detection),
		violations: make(map[string][]Violation),
	}
}

type memorySnapshot struct {
	users      map[string]User
	reports    map[string]Report
	detections map[string]Detection
	violations map[string][]Violation
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := memorySnapshot{
		users:      make(map[string]User, len(s.users)),
		reports:    make(map[string]Report, len(s.reports)),
		detections: make(map[string]Detection, len(s.detections)),
		violations: make(map[string][]Violation, len(s.violations)),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.reports {
		snap.reports[k] = v
	}
	for k, v := range s.detections {
		snap.detections[k] = v
	}
	for k, v := range s.violations {
		snap.violations[k] = append([]Violation{}, v...)
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.reports = snap.reports
	s.detections = snap.detections
	s.violations = snap.violations
}

func (s *MemoryStore) Atomically(fn func(tx Store) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *MemoryStore) CreateUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = *u
	return nil
}

func (s *MemoryStore) CreateReport(rep *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.ID] = *rep
	return nil
}

func (s *MemoryStore) CreateDetection(det *Detection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detections[det.ID] = *det
	return nil
}

func (s *MemoryStore) CreateViolation(v *Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations[v.DetectionID] = append(s.violations[v.DetectionID], *v)
	return nil
}

func (s *MemoryStore) GetReport(id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rep, nil
}

func (s *MemoryStore) ListReports() ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reps := make([]Report, 0, len(s.reports))
	for _, rep := range s.reports {
		reps = append(reps, rep)
	}
	return reps, nil
}

func (s *MemoryStore) GetDetection(id string) (*Detection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	det, ok := s.detections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &det, nil
}

func (s *MemoryStore) DetectionsByReport(reportID string) ([]Detection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var dets []Detection
	for _, det := range s.detections {
		if det.ReportID == reportID {
			dets = append(dets, det)
		}
	}
	return dets, nil
}

func (s *MemoryStore) ViolationsByDetections(detectionIDs []string) (map[string][]Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDetection := make(map[string][]Violation)
	for _, id := range detectionIDs {
		if vs, ok := s.violations[id]; ok {
			byDetection[id] = append([]Violation{}, vs...)
		}
	}
	return byDetection, nil
}

func (s *MemoryStore) SaveReportStatus(id, status string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	rep.Status = status
	s.reports[id] = rep
	return &rep, nil
}

func (s *MemoryStore) Counts() (Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := Totals{
		Reports:    int64(len(s.reports)),
		Detections: int64(len(s.detections)),
		ByKind:     make(map[string]int64),
	}
	for _, vs := range s.violations {
		t.Violations += int64(len(vs))
		for _, v := range vs {
			t.ByKind[v.Kind]++
		}
	}
	return t, nil
}
