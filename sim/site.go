package sim

import (
	"fmt"
	"time"

	"github.com/ldar-sim/ldar-sim/sim/sensors"
)

// SurveyStats is one method's mutable survey bookkeeping at one site.
// Keyed by method identifier in Site.SurveyStats rather than string-formatted
// flat keys, so adding a method never collides with another's counters.
type SurveyStats struct {
	TSinceLastLDAR  int // days since this method last completed a survey here
	SurveysThisYear int
	AttemptedToday  bool
	MissedLeaks     int
}

// Component is a single potential emission point on a piece of equipment.
type Component struct {
	ID        string
	Emissions []*Emission
}

// Equipment is one equipment group at a site.
type Equipment struct {
	ID         string
	Components []*Component
}

// Site is one facility: its equipment tree, its per-method survey
// bookkeeping, and its flag state.
//
// Invariant: at most one FlaggedBy owner at a time; the flag clears exactly
// when a follow-up survey completes or the owning campaign closes.
type Site struct {
	ID      string
	Lat     float64
	Lon     float64
	LatIdx  int // index into the weather deployment cube
	LonIdx  int
	Subtype string

	Equipment []*Equipment

	SurveyStats map[string]*SurveyStats

	CurrentlyFlagged bool
	DateFlagged      time.Time
	FlaggedBy        string
}

// NewSite creates a site with the given equipment-group and
// components-per-group counts and empty bookkeeping.
func NewSite(id string, lat, lon float64, subtype string, equipmentGroups, componentsPerGroup int) *Site {
	s := &Site{
		ID:          id,
		Lat:         lat,
		Lon:         lon,
		Subtype:     subtype,
		SurveyStats: make(map[string]*SurveyStats),
	}
	for g := 0; g < equipmentGroups; g++ {
		eq := &Equipment{ID: equipmentID(id, g)}
		for c := 0; c < componentsPerGroup; c++ {
			eq.Components = append(eq.Components, &Component{ID: componentID(eq.ID, c)})
		}
		s.Equipment = append(s.Equipment, eq)
	}
	return s
}

func equipmentID(siteID string, i int) string {
	return fmt.Sprintf("%s-eq%d", siteID, i)
}

func componentID(equipmentID string, i int) string {
	return fmt.Sprintf("%s-c%d", equipmentID, i)
}

// StatsFor returns (creating on first use) the survey bookkeeping for a
// method at this site.
func (s *Site) StatsFor(method string) *SurveyStats {
	st, ok := s.SurveyStats[method]
	if !ok {
		st = &SurveyStats{}
		s.SurveyStats[method] = st
	}
	return st
}

// ActiveEmissions returns every Active emission at the site in tree order.
func (s *Site) ActiveEmissions() []*Emission {
	var out []*Emission
	for _, eq := range s.Equipment {
		for _, c := range eq.Components {
			for _, em := range c.Emissions {
				if em.Status == StatusActive {
					out = append(out, em)
				}
			}
		}
	}
	return out
}

// EmittingRate returns the site's total currently-emitting true rate in g/s.
func (s *Site) EmittingRate() float64 {
	var total float64
	for _, em := range s.ActiveEmissions() {
		if em.Emitting() {
			total += em.TrueRate
		}
	}
	return total
}

// DetectableSample builds the sensor-facing view of this site for one
// method's survey: currently-emitting active emissions with the method's
// one-time spatial coverage draw resolved. Tree order keeps draw order
// stable.
func (s *Site) DetectableSample(method string, spatialCoverage float64, env sensors.Env, rng interface{ Float64() float64 }) sensors.SiteSample {
	sample := sensors.SiteSample{SiteID: s.ID, Env: env}
	for _, eq := range s.Equipment {
		for _, c := range eq.Components {
			for _, em := range c.Emissions {
				if !em.Emitting() {
					continue
				}
				sample.Emissions = append(sample.Emissions, sensors.EmissionSample{
					EmissionID:       em.ID,
					EquipmentID:      eq.ID,
					Rate:             em.TrueRate,
					SpatiallyCovered: em.SpatialCoverage(method, spatialCoverage, rng),
				})
			}
		}
	}
	return sample
}

// FindEmission looks up an active emission by ID.
func (s *Site) FindEmission(id string) *Emission {
	for _, eq := range s.Equipment {
		for _, c := range eq.Components {
			for _, em := range c.Emissions {
				if em.ID == id {
					return em
				}
			}
		}
	}
	return nil
}

// AddEmission attaches an emission to the component at the given flat index
// (wrapping), used by the daily new-leak draw.
func (s *Site) AddEmission(em *Emission, componentIdx int) {
	var comps []*Component
	for _, eq := range s.Equipment {
		comps = append(comps, eq.Components...)
	}
	if len(comps) == 0 {
		// Sites are always generated with at least one component; reaching
		// here is a scenario-builder bug.
		panic("AddEmission: site has no components")
	}
	comps[componentIdx%len(comps)].Emissions = append(comps[componentIdx%len(comps)].Emissions, em)
}

// ClearFlag removes the site's flag. Called when a follow-up survey
// completes or a campaign window closes.
func (s *Site) ClearFlag() {
	s.CurrentlyFlagged = false
	s.FlaggedBy = ""
}
