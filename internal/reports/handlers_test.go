package reports

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func passthrough(next http.Handler) http.Handler { return next }

func testRouter(t *testing.T) (http.Handler, *MemoryStore, string) {
	t.Helper()

	pipeline, store := pipelineFixture(t)
	dir := t.TempDir()
	h := NewHandler(pipeline, dir, "mosaic")
	return SetupRoutes(h, passthrough), store, dir
}

// submitForm builds a multipart body with a small PNG attached as "image".
func submitForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}

	part, err := mw.CreateFormFile("image", "board.png")
	require.NoError(t, err)
	img := imaging.New(40, 30, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
	require.NoError(t, imaging.Encode(part, img, imaging.PNG))
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestSubmitHandler_HappyPath(t *testing.T) {
	router, store, _ := testRouter(t)

	body, contentType := submitForm(t, map[string]string{
		"lat":             "13.2",
		"lon":             "77.8",
		"detections_json": `[{"est_width_m": 13, "est_height_m": 4}]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var summary ReportSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	require.NotEmpty(t, summary.ID)
	require.Len(t, summary.Detections, 1)
	require.Len(t, summary.Detections[0].Violations, 2)

	rep, err := store.GetReport(summary.ID)
	require.NoError(t, err)
	require.Contains(t, rep.ImgURI, "_redacted.jpg")
	require.NotContains(t, rep.ImgURI, "_raw_")
}

func TestSubmitHandler_MissingCoordinates(t *testing.T) {
	router, _, _ := testRouter(t)

	body, contentType := submitForm(t, map[string]string{
		"lon":             "77.8",
		"detections_json": `[]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "lat is required")
}

func TestSubmitHandler_BadDetectionsJSON(t *testing.T) {
	router, _, _ := testRouter(t)

	body, contentType := submitForm(t, map[string]string{
		"lat":             "13.2",
		"lon":             "77.8",
		"detections_json": "{not json",
	})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetHandler_NotFound(t *testing.T) {
	router, _, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-report", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), "Report not found")
}

func TestUpdateStatusHandler(t *testing.T) {
	router, store, _ := testRouter(t)

	rep := Report{ID: "rep-1", Lat: 12.9, Lon: 77.6, Status: StatusPending}
	require.NoError(t, store.CreateReport(&rep))

	req := httptest.NewRequest(http.MethodPatch, "/rep-1", strings.NewReader(`{"status":"confirmed"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, true, resp["ok"])
	require.Equal(t, StatusConfirmed, resp["status"])

	updated, err := store.GetReport("rep-1")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, updated.Status)
}

func TestUpdateStatusHandler_EmptyStatus(t *testing.T) {
	router, store, _ := testRouter(t)

	require.NoError(t, store.CreateReport(&Report{ID: "rep-1", Status: StatusPending}))

	req := httptest.NewRequest(http.MethodPatch, "/rep-1", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "No status provided")
}

func TestListHandler_Empty(t *testing.T) {
	router, _, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]\n", rr.Body.String())
}
