package scenario

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	sim "github.com/ldar-sim/ldar-sim/sim"
)

// SubsystemInfrastructure is the RNG subsystem for fleet generation: site
// placement, subtype assignment, and the initial leak population. Isolated
// from the daily emissions stream so the initial state of a replicate does
// not perturb its in-simulation draws.
const SubsystemInfrastructure = "infrastructure"

// GenerateSites builds the synthetic fleet described by the spec.
func GenerateSites(spec *Spec, rng *rand.Rand) []*sim.Site {
	cfg := spec.Sites
	sites := make([]*sim.Site, 0, cfg.Count)

	var totalWeight float64
	for _, st := range cfg.Subtypes {
		totalWeight += st.Weight
	}

	for i := 0; i < cfg.Count; i++ {
		lat := cfg.LatMin + rng.Float64()*(cfg.LatMax-cfg.LatMin)
		lon := cfg.LonMin + rng.Float64()*(cfg.LonMax-cfg.LonMin)

		subtype := "default"
		if totalWeight > 0 {
			draw := rng.Float64() * totalWeight
			for _, st := range cfg.Subtypes {
				draw -= st.Weight
				if draw < 0 {
					subtype = st.Name
					break
				}
			}
		}

		site := sim.NewSite(fmt.Sprintf("site_%d", i), lat, lon, subtype,
			cfg.EquipmentGroups, cfg.ComponentsPerGroup)
		// The synthetic weather oracles run a 1x1 grid; every site maps to
		// its single cell.
		site.LatIdx = 0
		site.LonIdx = 0
		sites = append(sites, site)
	}
	return sites
}

// LeakGenerator builds the sim-side generator from the emissions spec.
// The rate source must already have validated.
func (s *Spec) LeakGenerator() (*sim.LeakGenerator, error) {
	source, err := NewRateSource(s.Emissions.RateSource)
	if err != nil {
		return nil, err
	}
	e := s.Emissions
	return &sim.LeakGenerator{
		LPR:                  e.LPR,
		Source:               source,
		MaxRate:              e.MaxRate,
		RepairDelayDays:      e.RepairDelay,
		RepairCost:           e.RepairCost,
		NaturalRepairDay:     e.NaturalRepairDay,
		VentFraction:         e.VentFraction,
		VentDuration:         e.VentDuration,
		IntermittentFraction: e.IntermittentFraction,
		ActiveDutyDays:       e.ActiveDutyDays,
		InactiveDutyDays:     e.InactiveDutyDays,
	}, nil
}

// Oracles builds the synthetic weather and daylight oracles the spec asks
// for.
func (s *Spec) Oracles(horizonDays int, rng *rand.Rand) (sim.WeatherOracle, sim.DaylightOracle, error) {
	w := s.Weather
	wind := w.Windspeed
	if wind <= 0 {
		wind = 3.0
	}

	var weather sim.WeatherOracle
	switch w.Type {
	case "", "constant":
		weather = sim.NewConstantWeather(wind, horizonDays)
	case "bernoulli":
		if w.PassRate <= 0 || w.PassRate > 1 {
			return nil, nil, fmt.Errorf("bernoulli weather requires pass_rate in (0,1], got %g", w.PassRate)
		}
		weather = sim.NewBernoulliWeather(wind, horizonDays, w.PassRate, rng)
	default:
		return nil, nil, fmt.Errorf("unknown weather type %q", w.Type)
	}

	var daylight sim.DaylightOracle
	if w.DaylightMean > 0 {
		daylight = &sim.SeasonalDaylight{MeanHours: w.DaylightMean, AmplitudeHours: w.DaylightAmplitude}
	} else {
		daylight = &sim.ConstantDaylight{Hours: 24}
	}
	return weather, daylight, nil
}

// Build assembles a complete replicate: fleet, initial leak population,
// oracles, and simulator, all deterministic under the given key.
func Build(spec *Spec, key sim.SimulationKey) (*sim.Simulator, error) {
	start, err := spec.Start()
	if err != nil {
		return nil, err
	}
	horizon := spec.HorizonDays()

	prng := sim.NewPartitionedRNG(key)
	infraRNG := prng.ForSubsystem(SubsystemInfrastructure)

	sites := GenerateSites(spec, infraRNG)

	leakGen, err := spec.LeakGenerator()
	if err != nil {
		return nil, err
	}

	// Initial leak population: each site carries a pre-existing leak with
	// probability initial_leak_prob, backdated a uniform number of days.
	initial := 0
	for _, site := range sites {
		if spec.Emissions.InitialLeakProb <= 0 || infraRNG.Float64() >= spec.Emissions.InitialLeakProb {
			continue
		}
		backdate := 0
		if spec.Emissions.MaxBackdateDays > 0 {
			backdate = infraRNG.IntN(spec.Emissions.MaxBackdateDays + 1)
		}
		leakGen.BackdatedLeak(site, start, backdate, infraRNG)
		initial++
	}
	logrus.Debugf("generated %d sites with %d initial leak(s)", len(sites), initial)

	weather, daylight, err := spec.Oracles(horizon, infraRNG)
	if err != nil {
		return nil, err
	}

	return sim.NewSimulator(key, start, horizon, sites, spec.Methods, leakGen, weather, daylight)
}
