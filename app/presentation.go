package app

import (
	"exodash/domain/candidate"
	"exodash/domain/lightcurve"
	"exodash/domain/mission"
	"exodash/domain/physics"
)

// Presentation is what the result view renders next to a verdict.
type Presentation struct {
	Mission  string              `json:"mission"`
	Verdict  candidate.Verdict   `json:"verdict"`
	Label    string              `json:"label"`
	EqTemp   *float64            `json:"eq_temp_k"`
	Radius   *float64            `json:"radius_earth"`
	Zone     physics.Zone        `json:"habitability_zone"`
	Category physics.Category    `json:"planet_category"`
	Curve    []lightcurve.Sample `json:"light_curve,omitempty"`
	// CurveError explains a missing curve, e.g. a zero duration.
	CurveError string `json:"light_curve_error,omitempty"`
}

// Present derives the zone, category and light curve for a classified record. Missing
// measurements degrade to Unknown buckets and no curve rather than failing.
func Present(record candidate.Record, verdict candidate.Verdict, pc *physics.Classifier, points int) Presentation {
	p := Presentation{Mission: record.Mission, Verdict: verdict, Label: verdict.Label()}

	schema, err := mission.SchemaFor(record.Mission)
	if err != nil {
		p.Zone = pc.HabitabilityZone(nil)
		p.Category = pc.PlanetCategory(nil)
		p.CurveError = err.Error()
		return p
	}
	fields := schema.Physical

	p.EqTemp = floatPtr(record, fields.EqTemp)
	p.Radius = floatPtr(record, fields.Radius)
	p.Zone = pc.HabitabilityZone(p.EqTemp)
	p.Category = pc.PlanetCategory(p.Radius)

	depth, okDepth := record.Float(fields.Depth)
	duration, okDuration := record.Float(fields.Duration)
	if !okDepth || !okDuration {
		p.CurveError = "transit depth and duration are required for the light curve"
		return p
	}
	curve, err := lightcurve.Synthesize(depth*fields.DepthScale, duration, points)
	if err != nil {
		p.CurveError = err.Error()
		return p
	}
	p.Curve = curve
	return p
}

func floatPtr(r candidate.Record, name string) *float64 {
	if name == "" {
		return nil
	}
	x, ok := r.Float(name)
	if !ok {
		return nil
	}
	return &x
}
