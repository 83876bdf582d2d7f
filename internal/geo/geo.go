package geo

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrEmptyJunctionSet is returned when no junctions are configured. Callers
// degrade the placement check rather than failing the whole evaluation.
var ErrEmptyJunctionSet = errors.New("no junctions configured")

const earthRadiusM = 6371000

// Junction is a protected point location with a minimum-distance placement
// rule around it, typically a road intersection.
type Junction struct {
	Name string
	Lat  float64
	Lon  float64
}

// Distance returns the great-circle distance in meters between two
// lat/lon pairs, treating the earth as a sphere.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := radians(lat1)
	p2 := radians(lat2)
	dp := radians(lat2 - lat1)
	dl := radians(lon2 - lon1)

	a := math.Sin(dp/2)*math.Sin(dp/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dl/2)*math.Sin(dl/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

// Nearest scans the junction set and returns the closest junction to the
// given point along with its distance in meters. Ties keep the first
// junction encountered.
func Nearest(junctions []Junction, lat, lon float64) (Junction, float64, error) {
	if len(junctions) == 0 {
		return Junction{}, 0, ErrEmptyJunctionSet
	}

	best := junctions[0]
	bestDist := Distance(lat, lon, best.Lat, best.Lon)
	for _, j := range junctions[1:] {
		if d := Distance(lat, lon, j.Lat, j.Lon); d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best, bestDist, nil
}

// LoadJunctions reads a GeoJSON FeatureCollection of Point features with a
// "name" property. Loaded once at process start.
func LoadJunctions(path string) ([]Junction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read junctions file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse junctions geojson: %w", err)
	}

	var junctions []Junction
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		name, _ := f.Properties["name"].(string)
		junctions = append(junctions, Junction{
			Name: name,
			Lat:  pt.Lat(),
			Lon:  pt.Lon(),
		})
	}
	return junctions, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
