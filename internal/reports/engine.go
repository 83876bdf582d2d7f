package reports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BillboardSentinel/BS-Backend/internal/config"
	"github.com/BillboardSentinel/BS-Backend/internal/geo"
	"github.com/BillboardSentinel/BS-Backend/internal/registry"
)

// Finding is one rule breach before it is persisted as a Violation.
type Finding struct {
	Kind     string `json:"type"`
	Reason   string `json:"reason"`
	Severity int    `json:"severity"`
}

// Engine evaluates one detection against one report location. The rules are
// centralized here so they stay testable without HTTP or a database; all
// thresholds arrive via config at construction time.
type Engine struct {
	rules     config.Rules
	junctions []geo.Junction
	registry  registry.Store
}

func NewEngine(rules config.Rules, junctions []geo.Junction, reg registry.Store) *Engine {
	return &Engine{rules: rules, junctions: junctions, registry: reg}
}

// Evaluate runs every rule and returns the findings in presentation order:
// size, placement, license. Rules never short-circuit each other; a rule that
// cannot run (no junctions configured) is skipped, not failed.
func (e *Engine) Evaluate(lat, lon float64, det *Detection) ([]Finding, error) {
	var findings []Finding

	// Size cap
	if area := det.EstWidthM * det.EstHeightM; area > e.rules.MaxWidthM*e.rules.MaxHeightM {
		findings = append(findings, Finding{
			Kind:     KindSize,
			Reason:   fmt.Sprintf("Estimated %gx%g m (%.1f m2) exceeds cap", det.EstWidthM, det.EstHeightM, area),
			Severity: 4,
		})
	}

	// Junction proximity, measured from the report location
	j, distM, err := geo.Nearest(e.junctions, lat, lon)
	switch {
	case errors.Is(err, geo.ErrEmptyJunctionSet):
		// placement rule degraded, keep evaluating
	case err != nil:
		return nil, err
	case distM < e.rules.MinJunctionDistM:
		findings = append(findings, Finding{
			Kind:     KindPlacement,
			Reason:   fmt.Sprintf("Near %s (~%d m)", j.Name, int(distM)),
			Severity: 3,
		})
	}

	// License
	claimed := strings.TrimSpace(det.LicenseID)
	if claimed == "" {
		findings = append(findings, Finding{Kind: KindLicenseMissing, Reason: "No license", Severity: 5})
	} else if _, err := e.registry.Lookup(claimed); errors.Is(err, registry.ErrNotFound) {
		findings = append(findings, Finding{
			Kind:     KindLicenseInvalid,
			Reason:   fmt.Sprintf("License %s not found", det.LicenseID),
			Severity: 5,
		})
	} else if err != nil {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}
	// The registry row carries owner and valid_from/valid_to but neither is
	// cross-checked against the report yet; pending a bylaws decision.

	return findings, nil
}
