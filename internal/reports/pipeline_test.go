package reports

import (
	"errors"
	"testing"

	"github.com/BillboardSentinel/BS-Backend/internal/config"
	"github.com/BillboardSentinel/BS-Backend/internal/geo"
	"github.com/BillboardSentinel/BS-Backend/internal/registry"
	"github.com/stretchr/testify/require"
)

func pipelineFixture(t *testing.T) (*Pipeline, *MemoryStore) {
	t.Helper()

	reg := registry.NewMemoryStore()
	_, err := reg.Seed([]registry.Record{{LicenseID: "BLR-OK", Owner: "Acme"}})
	require.NoError(t, err)

	junctions := []geo.Junction{{Name: "Silk Board Junction", Lat: 12.9172, Lon: 77.6227}}
	engine := NewEngine(config.DefaultRules(), junctions, reg)

	store := NewMemoryStore()
	return NewPipeline(store, engine), store
}

func widthHeight(w, h float64) (*float64, *float64) {
	return &w, &h
}

func TestSubmit_PersistsAtomically(t *testing.T) {
	pipeline, store := pipelineFixture(t)

	w, h := widthHeight(13, 4)
	summary, err := pipeline.Submit(SubmitInput{
		// Far from the only junction so placement stays quiet.
		Lat: 13.2, Lon: 77.8,
		ImgURI: "/uploads/x_redacted.jpg",
		Detections: []DetectionInput{
			{EstWidthM: w, EstHeightM: h}, // oversized + no license
			{LicenseID: "BLR-OK"},         // compliant
		},
	})
	require.NoError(t, err)
	require.Len(t, summary.Detections, 2)
	require.Len(t, summary.Detections[0].Violations, 2)
	require.Equal(t, KindSize, summary.Detections[0].Violations[0].Kind)
	require.Equal(t, KindLicenseMissing, summary.Detections[0].Violations[1].Kind)
	require.Empty(t, summary.Detections[1].Violations)

	// Re-fetching returns identical counts and distribution.
	detail, err := pipeline.Get(summary.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, detail.Status)
	require.Len(t, detail.Detections, 2)

	total := 0
	for _, det := range detail.Detections {
		total += len(det.Violations)
		if det.ID == summary.Detections[0].ID {
			require.Len(t, det.Violations, 2)
		} else {
			require.Empty(t, det.Violations)
		}
	}
	require.Equal(t, 2, total)

	totals, err := store.Counts()
	require.NoError(t, err)
	require.Equal(t, int64(1), totals.Reports)
	require.Equal(t, int64(2), totals.Detections)
	require.Equal(t, int64(2), totals.Violations)
	require.Equal(t, int64(1), totals.ByKind[KindSize])
	require.Equal(t, int64(1), totals.ByKind[KindLicenseMissing])
}

func TestSubmit_CoercesMissingNumerics(t *testing.T) {
	pipeline, store := pipelineFixture(t)

	summary, err := pipeline.Submit(SubmitInput{
		Lat: 13.2, Lon: 77.8,
		Detections: []DetectionInput{{}},
	})
	require.NoError(t, err)
	require.Len(t, summary.Detections, 1)
	require.Equal(t, 0.5, summary.Detections[0].Confidence)

	dets, err := store.DetectionsByReport(summary.ID)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	require.Zero(t, dets[0].EstWidthM)
	require.Zero(t, dets[0].EstHeightM)
	require.Equal(t, 0.5, dets[0].Confidence)

	// Zero-area board trips no size rule, only the missing license.
	require.Len(t, summary.Detections[0].Violations, 1)
	require.Equal(t, KindLicenseMissing, summary.Detections[0].Violations[0].Kind)
}

// failingStore makes violation writes fail after a set number of inserts to
// exercise mid-submission rollback.
type failingStore struct {
	*MemoryStore
	failAfter int
	created   int
}

func (f *failingStore) CreateViolation(v *Violation) error {
	if f.created >= f.failAfter {
		return errors.New("disk full")
	}
	f.created++
	return f.MemoryStore.CreateViolation(v)
}

func (f *failingStore) Atomically(fn func(tx Store) error) error {
	snap := f.MemoryStore.snapshot()
	if err := fn(f); err != nil {
		f.MemoryStore.restore(snap)
		return err
	}
	return nil
}

func TestSubmit_RollsBackWholeSubmission(t *testing.T) {
	reg := registry.NewMemoryStore()
	engine := NewEngine(config.DefaultRules(), nil, reg)
	store := &failingStore{MemoryStore: NewMemoryStore(), failAfter: 1}
	pipeline := NewPipeline(store, engine)

	w, h := widthHeight(13, 4)
	_, err := pipeline.Submit(SubmitInput{
		Lat: 13.2, Lon: 77.8,
		// Two findings (size + license missing); the second write fails.
		Detections: []DetectionInput{{EstWidthM: w, EstHeightM: h}},
	})
	require.Error(t, err)

	// Nothing from the submission is visible: no orphaned report or
	// detection rows, no partial violation set.
	totals, err := store.MemoryStore.Counts()
	require.NoError(t, err)
	require.Zero(t, totals.Reports)
	require.Zero(t, totals.Detections)
	require.Zero(t, totals.Violations)
}

func TestSubmit_LinksPhoneUser(t *testing.T) {
	pipeline, store := pipelineFixture(t)

	summary, err := pipeline.Submit(SubmitInput{
		Lat: 13.2, Lon: 77.8,
		PhoneHash:  "$2a$10$fakehash",
		Detections: []DetectionInput{{LicenseID: "BLR-OK"}},
	})
	require.NoError(t, err)

	rep, err := store.GetReport(summary.ID)
	require.NoError(t, err)
	require.NotNil(t, rep.UserID)

	store.mu.RLock()
	user, ok := store.users[*rep.UserID]
	store.mu.RUnlock()
	require.True(t, ok)
	require.Equal(t, "$2a$10$fakehash", user.PhoneHash)
	require.Equal(t, "citizen", user.Role)
}

func TestUpdateStatus_AcceptsAnyString(t *testing.T) {
	pipeline, _ := pipelineFixture(t)

	summary, err := pipeline.Submit(SubmitInput{
		Lat: 13.2, Lon: 77.8,
		Detections: []DetectionInput{{LicenseID: "BLR-OK"}},
	})
	require.NoError(t, err)

	// Status transitions are unvalidated on purpose.
	for _, status := range []string{StatusConfirmed, StatusDismissed, "escalated_to_legal"} {
		rep, err := pipeline.UpdateStatus(summary.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, rep.Status)
	}

	_, err = pipeline.UpdateStatus("missing-id", StatusReviewed)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestGet_NotFound(t *testing.T) {
	pipeline, _ := pipelineFixture(t)

	_, err := pipeline.Get("no-such-report")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestHeatmapAndList(t *testing.T) {
	pipeline, _ := pipelineFixture(t)

	summary, err := pipeline.Submit(SubmitInput{
		Lat: 12.9716, Lon: 77.5946,
		ImgURI:     "/var/uploads/abc_redacted.jpg",
		Detections: []DetectionInput{{LicenseID: "BLR-OK"}},
	})
	require.NoError(t, err)

	fc, err := pipeline.Heatmap()
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	pt := fc.Features[0].Point()
	require.InDelta(t, 77.5946, pt.Lon(), 1e-9)
	require.InDelta(t, 12.9716, pt.Lat(), 1e-9)
	require.Equal(t, summary.ID, fc.Features[0].Properties["id"])

	entries, err := pipeline.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, summary.ID, entries[0].ID)
	require.Equal(t, [2]float64{12.9716, 77.5946}, entries[0].Coordinates)
	require.Equal(t, "/static/uploads/abc_redacted.jpg", entries[0].Image)
	require.Len(t, entries[0].Detections, 1)
}
