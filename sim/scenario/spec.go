// Package scenario loads LDAR program scenarios from YAML and builds ready-
// to-run simulators from them: synthetic site fleets, initial backdated leak
// populations, emission rate sources, and the method roster.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	sim "github.com/ldar-sim/ldar-sim/sim"
)

// Spec is the top-level scenario configuration, loaded from YAML via Load.
type Spec struct {
	Version    string `yaml:"version"`
	Seed       int64  `yaml:"seed"`
	StartDate  string `yaml:"start_date"` // YYYY-MM-DD
	Years      int    `yaml:"years"`
	Replicates int    `yaml:"replicates"`

	Sites     SitesSpec          `yaml:"sites"`
	Emissions EmissionsSpec      `yaml:"emissions"`
	Methods   []sim.MethodConfig `yaml:"methods"`
	Weather   WeatherSpec        `yaml:"weather"`
}

// SitesSpec describes the synthetic site fleet.
type SitesSpec struct {
	Count              int           `yaml:"count"`
	EquipmentGroups    int           `yaml:"equipment_groups"`
	ComponentsPerGroup int           `yaml:"components_per_group"`
	Subtypes           []SubtypeSpec `yaml:"subtypes,omitempty"`
	LatMin             float64       `yaml:"lat_min"`
	LatMax             float64       `yaml:"lat_max"`
	LonMin             float64       `yaml:"lon_min"`
	LonMax             float64       `yaml:"lon_max"`
}

// SubtypeSpec weights a site subtype within the fleet.
type SubtypeSpec struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// EmissionsSpec parametrizes leak generation.
type EmissionsSpec struct {
	LPR        float64        `yaml:"lpr"` // per-site per-day new-leak probability
	RateSource RateSourceSpec `yaml:"rate_source"`
	MaxRate    float64        `yaml:"max_rate"` // g/s resample bound; 0 = uncapped

	InitialLeakProb float64 `yaml:"initial_leak_prob"` // per-site pre-existing leak probability
	MaxBackdateDays int     `yaml:"max_backdate_days"`

	RepairDelay      int     `yaml:"repair_delay"` // days
	RepairCost       float64 `yaml:"repair_cost"`
	NaturalRepairDay int     `yaml:"natural_repair_day"` // 0 disables

	VentFraction float64 `yaml:"vent_fraction"`
	VentDuration int     `yaml:"vent_duration"` // days

	IntermittentFraction float64 `yaml:"intermittent_fraction"`
	ActiveDutyDays       int     `yaml:"active_duty_days"`
	InactiveDutyDays     int     `yaml:"inactive_duty_days"`
}

// RateSourceSpec selects and parametrizes an emission rate source.
type RateSourceSpec struct {
	Type   string             `yaml:"type"` // "lognormal", "empirical", "constant"
	Params map[string]float64 `yaml:"params,omitempty"`
	File   string             `yaml:"file,omitempty"`
}

// WeatherSpec selects a synthetic weather/daylight oracle pair.
type WeatherSpec struct {
	Type              string  `yaml:"type"` // "constant" (default) or "bernoulli"
	Windspeed         float64 `yaml:"windspeed"`
	PassRate          float64 `yaml:"pass_rate"`
	DaylightMean      float64 `yaml:"daylight_mean"`      // hours; 0 = constant 24h
	DaylightAmplitude float64 `yaml:"daylight_amplitude"` // hours
}

// Load reads and validates a scenario file. All data errors surface here,
// before any simulation day runs.
func Load(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate rejects malformed scenarios. Errors name the offending field or
// method so a bad file is diagnosable from the message alone.
func (s *Spec) Validate() error {
	if _, err := s.Start(); err != nil {
		return err
	}
	if s.Years <= 0 {
		return fmt.Errorf("scenario years must be > 0, got %d", s.Years)
	}
	if s.Sites.Count <= 0 {
		return fmt.Errorf("scenario needs sites.count > 0, got %d", s.Sites.Count)
	}
	if s.Sites.EquipmentGroups <= 0 || s.Sites.ComponentsPerGroup <= 0 {
		return fmt.Errorf("sites need equipment_groups > 0 and components_per_group > 0")
	}
	for _, st := range s.Sites.Subtypes {
		if st.Weight < 0 {
			return fmt.Errorf("site subtype %q has negative weight", st.Name)
		}
	}
	if s.Emissions.LPR < 0 || s.Emissions.LPR > 1 {
		return fmt.Errorf("emissions.lpr must be in [0,1], got %g", s.Emissions.LPR)
	}
	if _, err := NewRateSource(s.Emissions.RateSource); err != nil {
		return err
	}
	if s.Emissions.VentFraction > 0 && s.Emissions.VentDuration <= 0 {
		return fmt.Errorf("vent_fraction > 0 requires vent_duration > 0")
	}
	if s.Emissions.IntermittentFraction > 0 &&
		(s.Emissions.ActiveDutyDays <= 0 || s.Emissions.InactiveDutyDays <= 0) {
		return fmt.Errorf("intermittent_fraction > 0 requires active and inactive duty days > 0")
	}
	if len(s.Methods) == 0 {
		return fmt.Errorf("scenario declares no methods")
	}
	for i := range s.Methods {
		if err := s.Methods[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Start parses the scenario start date, defaulting to 2025-01-01.
func (s *Spec) Start() (time.Time, error) {
	if s.StartDate == "" {
		return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", s.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q (want YYYY-MM-DD): %w", s.StartDate, err)
	}
	return t, nil
}

// HorizonDays converts the year count to a day horizon.
func (s *Spec) HorizonDays() int {
	return s.Years * 365
}
