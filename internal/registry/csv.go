package registry

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts accepted for valid_from / valid_to. The registry export
// is ISO-8601 but not consistent about time-of-day or zone.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCSV reads the municipal registry export. Columns are addressed by
// header name so the city can reorder them between exports.
func ParseCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	req := []string{
		"license_id", "owner", "lat", "lon",
		"width_m", "height_m", "valid_from", "valid_to",
	}
	for _, k := range req {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	seen := map[string]bool{}
	var out []Record

	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		lic := get("license_id")
		if lic == "" {
			return nil, fmt.Errorf("row %d: license_id is required", rowIdx+1)
		}
		if seen[lic] {
			return nil, fmt.Errorf("row %d: duplicate license_id %q", rowIdx+1, lic)
		}
		seen[lic] = true

		lat, err := strconv.ParseFloat(get("lat"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lat: %w", rowIdx+1, err)
		}
		lon, err := strconv.ParseFloat(get("lon"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lon: %w", rowIdx+1, err)
		}
		width, err := strconv.ParseFloat(get("width_m"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad width_m: %w", rowIdx+1, err)
		}
		height, err := strconv.ParseFloat(get("height_m"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad height_m: %w", rowIdx+1, err)
		}
		validFrom, err := parseTime(get("valid_from"))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad valid_from: %w", rowIdx+1, err)
		}
		validTo, err := parseTime(get("valid_to"))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad valid_to: %w", rowIdx+1, err)
		}

		out = append(out, Record{
			LicenseID: lic,
			Owner:     get("owner"),
			Lat:       lat,
			Lon:       lon,
			WidthM:    width,
			HeightM:   height,
			ValidFrom: validFrom,
			ValidTo:   validTo,
		})
	}

	return out, nil
}

func parseTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
