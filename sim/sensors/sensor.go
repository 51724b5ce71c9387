// Package sensors implements the probability-of-detection models used by LDAR
// monitoring methods, together with the quantification-error predictors that
// turn a true emission rate into a measured one.
//
// The package has no dependency on sim/ — a sensor consumes a pure SiteSample
// value and returns a pure Report value. The caller (method deployment in
// sim/) builds the sample from a Site and merges the report back into its own
// survey bookkeeping, so every state transition stays visible at the call
// site.
package sensors

import (
	"math/rand/v2"
)

// Level selects the granularity at which detection decisions are made.
type Level string

const (
	// LevelSite sums all detectable emission rates at the site and makes one
	// Bernoulli detection decision for the whole site.
	LevelSite Level = "site"
	// LevelEquipment makes one decision per equipment group.
	LevelEquipment Level = "equipment"
	// LevelComponent makes one decision per individual emission. This is the
	// only level at which individual emissions get tagged.
	LevelComponent Level = "component"
)

// Env carries the environmental values a detection model may consult.
type Env struct {
	Windspeed float64 // m/s at the site for the current timestep
}

// EmissionSample is one emission as seen by a sensor.
type EmissionSample struct {
	EmissionID       string
	EquipmentID      string
	Rate             float64 // true rate, g/s
	SpatiallyCovered bool    // outcome of the method's one-time spatial coverage draw
}

// SiteSample is the sensor-facing view of one site on one survey day.
type SiteSample struct {
	SiteID    string
	Emissions []EmissionSample
	Env       Env
}

// DetectionRecord is a per-emission detection outcome (component level only).
type DetectionRecord struct {
	EmissionID   string
	MeasuredRate float64 // g/s, after quantification error
}

// GroupReport is a per-equipment-group detection outcome (equipment level only).
type GroupReport struct {
	EquipmentID  string
	TrueRate     float64
	MeasuredRate float64
	Detected     bool
}

// Report is the pure result of surveying one site with one sensor.
type Report struct {
	Level        Level
	Detected     bool
	TrueRate     float64 // g/s, sum over detectable emissions
	MeasuredRate float64 // g/s, sum over detected (and quantified) emissions
	Records      []DetectionRecord
	Groups       []GroupReport
	// MissedLeaks counts emissions present but not detected: below MDL,
	// outside spatial coverage, or lost to a failed Bernoulli draw. Used for
	// coverage diagnostics, not part of detection control flow.
	MissedLeaks int
}

// PoDModel is a probability-of-detection curve. Implementations are pure up
// to the supplied RNG: zero or negative rates always yield probability 0.
type PoDModel interface {
	ProbDetect(rate float64, env Env, rng *rand.Rand) float64
}

// Sensor pairs a detection level with a PoD model and a quantification
// predictor. Construct via New; the zero value is not usable.
type Sensor struct {
	Level Level
	PoD   PoDModel
	Quant QuantificationPredictor
}

// Detect runs the sensor over a site sample and returns the survey outcome.
// Emission order in the sample determines draw order, so callers must present
// emissions in a stable order for reproducibility.
func (s *Sensor) Detect(sample SiteSample, rng *rand.Rand) Report {
	report := Report{Level: s.Level}

	detectable := make([]EmissionSample, 0, len(sample.Emissions))
	for _, em := range sample.Emissions {
		if !em.SpatiallyCovered {
			report.MissedLeaks++
			continue
		}
		detectable = append(detectable, em)
		report.TrueRate += em.Rate
	}
	if len(detectable) == 0 {
		return report
	}

	switch s.Level {
	case LevelSite:
		s.detectSite(detectable, sample.Env, rng, &report)
	case LevelEquipment:
		s.detectEquipment(detectable, sample.Env, rng, &report)
	case LevelComponent:
		s.detectComponent(detectable, sample.Env, rng, &report)
	}
	return report
}

func (s *Sensor) detectSite(emissions []EmissionSample, env Env, rng *rand.Rand, report *Report) {
	total := 0.0
	for _, em := range emissions {
		total += em.Rate
	}
	p := s.PoD.ProbDetect(total, env, rng)
	if rng.Float64() < p {
		report.Detected = true
		report.MeasuredRate = s.Quant.Quantify(total, rng)
	} else {
		report.MissedLeaks += len(emissions)
	}
}

func (s *Sensor) detectEquipment(emissions []EmissionSample, env Env, rng *rand.Rand, report *Report) {
	// Group by equipment ID, preserving first-appearance order so draw order
	// is stable across runs.
	order := []string{}
	groups := map[string][]EmissionSample{}
	for _, em := range emissions {
		if _, ok := groups[em.EquipmentID]; !ok {
			order = append(order, em.EquipmentID)
		}
		groups[em.EquipmentID] = append(groups[em.EquipmentID], em)
	}

	for _, eqID := range order {
		members := groups[eqID]
		gr := GroupReport{EquipmentID: eqID}
		for _, em := range members {
			gr.TrueRate += em.Rate
		}
		p := s.PoD.ProbDetect(gr.TrueRate, env, rng)
		if rng.Float64() < p {
			gr.Detected = true
			gr.MeasuredRate = s.Quant.Quantify(gr.TrueRate, rng)
			report.Detected = true
			report.MeasuredRate += gr.MeasuredRate
		} else {
			report.MissedLeaks += len(members)
		}
		report.Groups = append(report.Groups, gr)
	}
}

func (s *Sensor) detectComponent(emissions []EmissionSample, env Env, rng *rand.Rand, report *Report) {
	for _, em := range emissions {
		p := s.PoD.ProbDetect(em.Rate, env, rng)
		if rng.Float64() < p {
			measured := s.Quant.Quantify(em.Rate, rng)
			report.Detected = true
			report.MeasuredRate += measured
			report.Records = append(report.Records, DetectionRecord{
				EmissionID:   em.EmissionID,
				MeasuredRate: measured,
			})
		} else {
			report.MissedLeaks++
		}
	}
}
