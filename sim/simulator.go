package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ldar-sim/ldar-sim/sim/series"
	"github.com/ldar-sim/ldar-sim/sim/sensors"
)

// Simulator is the outer daily driver: it advances the time counter,
// triggers each method's schedule and deployment, reconciles detections,
// ages and repairs emissions, and records the day's statistics.
//
// Ownership: the Simulator owns Sites; Sites own Equipment and Emissions;
// Schedules hold non-owning references into the site list. Single-threaded —
// methods run sequentially in declared order, which is exactly what makes
// same-day multi-method interactions deterministic (first-detector-wins).
type Simulator struct {
	Ctx         *SimulationContext
	Sites       []*Site
	Methods     []*Method
	Campaigns   *CampaignCoordinator
	LeakGen     *LeakGenerator
	Metrics     *Metrics
	HorizonDays int
}

// NewSimulator wires methods over the site fleet, connects screening methods
// to their follow-up schedules, and precomputes the per-method weather
// cubes. Configuration errors are returned before any simulation day runs.
func NewSimulator(key SimulationKey, start time.Time, horizonDays int, sites []*Site,
	methodConfigs []MethodConfig, leakGen *LeakGenerator,
	weather WeatherOracle, daylight DaylightOracle) (*Simulator, error) {

	if horizonDays <= 0 {
		return nil, fmt.Errorf("simulation horizon must be > 0 days, got %d", horizonDays)
	}
	start = Midnight(start)
	end := start.AddDate(0, 0, horizonDays-1)

	methods := make([]*Method, 0, len(methodConfigs))
	byName := make(map[string]*Method, len(methodConfigs))
	for _, cfg := range methodConfigs {
		if _, dup := byName[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate method name %q", cfg.Name)
		}
		m, err := NewMethod(cfg, sites, start, end)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
		byName[cfg.Name] = m
	}

	// Wire screening methods to the follow-up schedules their flags feed.
	for _, m := range methods {
		name := m.Config.FollowUpMethod
		if name == "" {
			continue
		}
		target, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("method %s: follow_up_method %q does not exist", m.Name(), name)
		}
		if !target.Config.IsFollowUp {
			return nil, fmt.Errorf("method %s: follow_up_method %q is not a follow-up method", m.Name(), name)
		}
		m.SetFollowUpSchedule(target.Schedule)
	}

	// Precompute weather gates once per method; the daily loop only indexes.
	if weather != nil {
		for _, m := range methods {
			m.Cube = weather.DeploymentDaysCube(m.Name())
		}
	}

	// Materialize per-method survey bookkeeping up front so day-since
	// counters accrue from day zero.
	for _, m := range methods {
		for _, site := range sites {
			site.StatsFor(m.Name())
		}
	}

	ctx := &SimulationContext{
		RNG:      NewPartitionedRNG(key),
		Time:     NewTimeCounter(start),
		Weather:  weather,
		Daylight: daylight,
	}

	metrics := NewMetrics()
	for _, m := range methods {
		metrics.MethodFor(m.Name()).CostAccrued += m.Config.UpfrontCost
	}

	return &Simulator{
		Ctx:         ctx,
		Sites:       sites,
		Methods:     methods,
		Campaigns:   NewCampaignCoordinator(methods, sites),
		LeakGen:     leakGen,
		Metrics:     metrics,
		HorizonDays: horizonDays,
	}, nil
}

// Run executes the full daily loop over the horizon.
func (s *Simulator) Run() {
	for day := 0; day < s.HorizonDays; day++ {
		s.SimulateDay()
		s.Ctx.Time.NextDay()
	}
	logrus.Infof("[day %04d] simulation ended", s.Ctx.Time.Timestep)
}

// SimulateDay runs one day of the program: method schedules and deployments
// in declared order, attribution, the daily new-leak draw, emission aging
// and repairs, campaign bookkeeping, and the day record.
func (s *Simulator) SimulateDay() {
	tc := s.Ctx.Time
	today := tc.CurrentDate
	logrus.Debugf("[day %04d] %s", tc.Timestep, today.Format("2006-01-02"))

	// Annual counters roll over at Jan 1.
	if tc.Timestep > 0 && today.Month() == time.January && today.Day() == 1 {
		for _, site := range s.Sites {
			for _, st := range site.SurveyStats {
				st.SurveysThisYear = 0
			}
		}
	}
	for _, site := range s.Sites {
		for _, st := range site.SurveyStats {
			st.AttemptedToday = false
		}
	}

	prev := s.snapshotCounters()

	for _, m := range s.Methods {
		wp := m.Schedule.GetWorkplan(today)
		stats := m.Deploy(s.Ctx, wp)

		counters := s.Metrics.MethodFor(m.Name())
		counters.SitesVisited += stats.SitesVisited
		counters.CostAccrued += stats.CostAccrued

		s.attribute(m, wp)
		m.Schedule.Update(wp)
	}

	newLeaks := s.drawNewLeaks(today)
	emittedKg := s.ageEmissions(today)
	s.Campaigns.EndOfDay(s.Ctx, s.Metrics)

	s.Metrics.Days = append(s.Metrics.Days, series.DayRecord{
		Date:           today,
		Timestep:       tc.Timestep,
		ActiveLeaks:    s.countActive(),
		NewLeaks:       newLeaks,
		DailyEmittedKg: emittedKg,
		Methods:        s.Metrics.snapshotMethods(prev),
	})
}

// attribute reconciles the day's completed survey reports into emission and
// site state: component-level tags, site flags, follow-up resolution, and
// survey bookkeeping.
func (s *Simulator) attribute(m *Method, wp *Workplan) {
	counters := s.Metrics.MethodFor(m.Name())

	for _, item := range wp.Items {
		if item.Attempted {
			item.Site.StatsFor(m.Name()).AttemptedToday = true
		}
	}

	for _, item := range wp.Completed() {
		site := item.Site
		report := item.Report
		st := site.StatsFor(m.Name())

		counters.MissedLeaks += report.MissedLeaks
		st.MissedLeaks += report.MissedLeaks

		if m.Sensor.Level == sensors.LevelComponent {
			for _, rec := range report.Records {
				em := site.FindEmission(rec.EmissionID)
				if em == nil || em.Status != StatusActive {
					continue
				}
				UpdateTag(em, rec.MeasuredRate, site, m.Name(), report.Crew, wp.Date, counters)
			}
		} else if report.Detected && m.FollowUpSchedule() != nil {
			UpdateFlag(site, m.Name(), wp.Date, counters)
			m.FollowUpSchedule().FlagSite(site, wp.Date, report.SiteMeasuredRate)
		}

		// A completed follow-up survey resolves the site's flag.
		if m.Config.IsFollowUp && site.CurrentlyFlagged {
			s.Campaigns.RecordFollowUp(site)
			site.ClearFlag()
		}

		// Survey bookkeeping resets after attribution so the tag's
		// estimated-start-date heuristic sees the pre-survey gap.
		st.TSinceLastLDAR = 0
		st.SurveysThisYear++
	}
}

// drawNewLeaks runs the per-site daily Bernoulli draw at rate LPR.
func (s *Simulator) drawNewLeaks(today time.Time) int {
	if s.LeakGen == nil || s.LeakGen.LPR <= 0 {
		return 0
	}
	rng := s.Ctx.RNG.ForSubsystem(SubsystemEmissions)
	newLeaks := 0
	for _, site := range s.Sites {
		if rng.Float64() < s.LeakGen.LPR {
			s.LeakGen.NewLeak(site, today, rng)
			newLeaks++
		}
	}
	s.Metrics.TotalNewLeaks += newLeaks
	return newLeaks
}

// ageEmissions advances every active emission one day and applies repairs
// and expiries. Returns the fleet's emitted mass for the day in kg.
func (s *Simulator) ageEmissions(today time.Time) float64 {
	var emittedGrams float64
	for _, site := range s.Sites {
		for _, em := range site.ActiveEmissions() {
			emittedGrams += em.AgeOneDay(today)

			switch {
			case em.Status == StatusExpired:
				s.Metrics.TotalExpired++
			case em.NaturallyRepairableOn():
				// Natural repair claims the emission (tag overwrite is the
				// permitted one) and fixes it the same day.
				UpdateTag(em, 0, site, NaturalCompany, 0, today, nil)
				em.Repair(today)
				s.Metrics.TotalRepairs++
			case em.RepairDueOn(today):
				em.Repair(today)
				s.Metrics.TotalRepairs++
			}

			if em.EndOfLife() {
				s.Metrics.EmissionRecords = append(s.Metrics.EmissionRecords, em.SummaryRecord())
			}
		}

		// Days-since-last-survey advances for every method at every site.
		for _, st := range site.SurveyStats {
			st.TSinceLastLDAR++
		}
	}
	kg := emittedGrams / 1000
	s.Metrics.TotalEmittedKg += kg
	return kg
}

func (s *Simulator) countActive() int {
	n := 0
	for _, site := range s.Sites {
		n += len(site.ActiveEmissions())
	}
	return n
}

func (s *Simulator) snapshotCounters() map[string]MethodCounters {
	out := make(map[string]MethodCounters, len(s.Metrics.Methods))
	for name, c := range s.Metrics.Methods {
		out[name] = *c
	}
	return out
}

// RunReplicates fans n independent Monte Carlo replicates out across
// goroutines. Each replicate is built fresh by the supplied constructor with
// its own derived seed and owns all of its state, so no synchronization
// beyond the join is needed.
func RunReplicates(n int, key SimulationKey, build func(rep int, key SimulationKey) (*Simulator, error)) ([]*Metrics, error) {
	results := make([]*Metrics, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for rep := 0; rep < n; rep++ {
		wg.Add(1)
		go func(rep int) {
			defer wg.Done()
			s, err := build(rep, key.ForReplicate(rep))
			if err != nil {
				errs[rep] = fmt.Errorf("replicate %d: %w", rep, err)
				return
			}
			s.Run()
			results[rep] = s.Metrics
		}(rep)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
