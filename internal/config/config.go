package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Rules holds the municipal thresholds the violation engine evaluates
// against. They are resolved once at startup and passed in explicitly —
// nothing in the evaluation path reads the environment.
type Rules struct {
	MaxWidthM        float64 `yaml:"max_width_m"`
	MaxHeightM       float64 `yaml:"max_height_m"`
	MinJunctionDistM float64 `yaml:"min_junction_dist_m"`
}

// Server captures process-level configuration for the HTTP server and its
// file/reference-data locations.
type Server struct {
	Port          string
	StorageDir    string
	JunctionsPath string
	RegistryCSV   string
	RedactMode    string
}

// DefaultRules returns the city defaults: 12x4 m cap, 50 m junction buffer.
func DefaultRules() Rules {
	return Rules{MaxWidthM: 12.0, MaxHeightM: 4.0, MinJunctionDistM: 50.0}
}

// RulesFromEnv layers CITY_MAX_W / CITY_MAX_H / CITY_MIN_DIST over the
// defaults, then applies a YAML rules file if CITY_RULES_FILE is set. The
// file wins over the environment so a deployment can pin its bylaws in one
// reviewable artifact.
func RulesFromEnv() (Rules, error) {
	r := DefaultRules()
	r.MaxWidthM = envFloat("CITY_MAX_W", r.MaxWidthM)
	r.MaxHeightM = envFloat("CITY_MAX_H", r.MaxHeightM)
	r.MinJunctionDistM = envFloat("CITY_MIN_DIST", r.MinJunctionDistM)

	if path := os.Getenv("CITY_RULES_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return r, fmt.Errorf("read rules file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &r); err != nil {
			return r, fmt.Errorf("parse rules file %s: %w", path, err)
		}
	}
	return r, nil
}

// ServerFromEnv builds the server config so main stays lean.
func ServerFromEnv() Server {
	s := Server{
		Port:          os.Getenv("PORT"),
		StorageDir:    os.Getenv("STORAGE_DIR"),
		JunctionsPath: os.Getenv("JUNCTIONS_FILE"),
		RegistryCSV:   os.Getenv("REGISTRY_CSV"),
		RedactMode:    os.Getenv("REDACT_MODE"),
	}
	if s.Port == "" {
		s.Port = "5050"
	}
	if s.StorageDir == "" {
		s.StorageDir = "./data/uploads"
	}
	if s.JunctionsPath == "" {
		s.JunctionsPath = "./data/junctions.geojson"
	}
	if s.RegistryCSV == "" {
		s.RegistryCSV = "./data/registry.csv"
	}
	if s.RedactMode == "" {
		s.RedactMode = "mosaic"
	}
	return s
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
