package sim

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ldar-sim/ldar-sim/sim/sensors"
)

// Method is one monitoring program: its sensor, its schedule, its crews, and
// its precomputed weather gate.
type Method struct {
	Config   MethodConfig
	Policy   DeploymentPolicy
	Sensor   *sensors.Sensor
	Schedule *Schedule
	Crews    []*CrewDailyReport
	Cube     DeploymentCube

	// followUpTo receives this method's site flags (screening methods only).
	followUpTo *Schedule
}

// NewMethod validates the config and builds the method's planners, sensor,
// schedule, and crew pool over the given sites.
func NewMethod(cfg MethodConfig, sites []*Site, simStart, simEnd time.Time) (*Method, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := PolicyForDeployment(cfg.DeploymentType, cfg.ConsiderDaylight)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", cfg.Name, err)
	}
	sensor, err := sensors.New(cfg.Name, cfg.Sensor)
	if err != nil {
		return nil, err
	}

	var planners map[string]*SurveyPlanner
	if !cfg.IsFollowUp {
		planners = make(map[string]*SurveyPlanner, len(sites))
		for _, site := range sites {
			planners[site.ID] = NewSurveyPlanner(site.ID, cfg.RS, cfg.Months(), cfg.DeploymentYears, simStart, simEnd)
		}
	}

	nCrews := cfg.NCrews
	if !policy.CrewSharing {
		// Stationary methods get one crew-equivalent per site.
		nCrews = len(sites)
	}
	crews := make([]*CrewDailyReport, nCrews)
	for i := range crews {
		crews[i] = &CrewDailyReport{CrewID: i}
	}

	return &Method{
		Config:   cfg,
		Policy:   policy,
		Sensor:   sensor,
		Schedule: NewSchedule(cfg.Name, sites, planners, cfg.IsFollowUp, cfg.ReportingDelay),
		Crews:    crews,
	}, nil
}

// Name returns the method identifier.
func (m *Method) Name() string {
	return m.Config.Name
}

// SetFollowUpSchedule wires the schedule that receives this method's flags.
func (m *Method) SetFollowUpSchedule(s *Schedule) {
	m.followUpTo = s
}

// FollowUpSchedule returns the wired follow-up schedule, or nil.
func (m *Method) FollowUpSchedule() *Schedule {
	return m.followUpTo
}

// resetCrews refills every crew's minutes for a new day. The workday is
// capped by daylight when the method's policy considers it.
func (m *Method) resetCrews(ctx *SimulationContext) float64 {
	minutes := m.Config.MaxWorkday * 60
	if m.Policy.ConsiderDaylight && ctx.Daylight != nil {
		daylight := ctx.Daylight.GetDaylight(ctx.Time.Timestep) * 60
		if daylight < minutes {
			minutes = daylight
		}
	}
	for _, crew := range m.Crews {
		crew.MinutesRemaining = minutes
		crew.Deployed = false
	}
	return minutes
}

// weatherOK consults the precomputed deployment cube. Fails closed: an
// unfavorable day consumes no crew time and leaves the site queued.
func (m *Method) weatherOK(site *Site, timestep int) bool {
	if !m.Policy.WeatherGating || m.Cube == nil {
		return true
	}
	return m.Cube.At(site.LonIdx, site.LatIdx, timestep)
}

// Deploy consumes the day's workplan: weather-gates each site, allocates
// crew-minutes most-urgent-first, rolls over surveys that do not fit in the
// remaining minutes, and invokes the sensor for each completed survey.
func (m *Method) Deploy(ctx *SimulationContext, wp *Workplan) CrewDeploymentStats {
	stats := CrewDeploymentStats{Method: m.Name()}
	if len(wp.Items) == 0 {
		return stats
	}

	m.resetCrews(ctx)
	rng := ctx.RNG.ForSubsystem(SubsystemMethod(m.Name()))

	if m.Policy.CrewSharing {
		m.deployShared(ctx, wp, rng, &stats)
	} else {
		m.deployStationary(ctx, wp, rng, &stats)
	}

	for _, crew := range m.Crews {
		if crew.Deployed {
			stats.CostAccrued += m.Config.CostPerDay
		}
	}
	logrus.Debugf("[%s] deployed: %d visited, %d deferred, %d weather-blocked",
		m.Name(), stats.SitesVisited, stats.SitesDeferred, stats.SitesWeather)
	return stats
}

// deployShared walks the workplan in priority order, assigning sites to the
// crew pool until the plan empties or every crew runs out of minutes.
func (m *Method) deployShared(ctx *SimulationContext, wp *Workplan, rng *rand.Rand, stats *CrewDeploymentStats) {
	crewIdx := 0
	for _, item := range wp.Items {
		if crewIdx >= len(m.Crews) {
			stats.SitesDeferred++
			continue
		}
		if !m.weatherOK(item.Site, ctx.Time.Timestep) {
			stats.SitesWeather++
			continue
		}

		travel := 0.0
		if m.Policy.SupportsTravel {
			travel = m.Config.TravelTimeMinutes
		}
		needed := m.Config.SurveyTimeMinutes - item.Report.TimeSurveyed

		// Skip crews that cannot even reach the site.
		for crewIdx < len(m.Crews) && m.Crews[crewIdx].MinutesRemaining <= travel {
			crewIdx++
		}
		if crewIdx >= len(m.Crews) {
			stats.SitesDeferred++
			continue
		}
		crew := m.Crews[crewIdx]
		item.Attempted = true
		item.Report.Crew = crew.CrewID
		crew.Deployed = true

		if crew.MinutesRemaining >= travel+needed {
			crew.MinutesRemaining -= travel + needed
			item.Report.TimeTravelled += travel
			item.Report.TimeSurveyed = m.Config.SurveyTimeMinutes
			item.Report.SurveyInProgress = false
			item.Report.SurveyComplete = true
			stats.MinutesWorked += travel + needed
			m.completeSurvey(ctx, item, rng, stats)
		} else {
			// Rollover: the only path by which TimeSurveyed can fall short
			// of the full survey-time requirement.
			available := crew.MinutesRemaining - travel
			crew.MinutesRemaining = 0
			item.Report.TimeTravelled += travel
			item.Report.TimeSurveyed += available
			item.Report.SurveyInProgress = true
			stats.MinutesWorked += travel + available
			crewIdx++
		}
	}
}

// deployStationary visits every weather-passing site with its dedicated
// crew-equivalent; no travel, no sharing.
func (m *Method) deployStationary(ctx *SimulationContext, wp *Workplan, rng *rand.Rand, stats *CrewDeploymentStats) {
	for i, item := range wp.Items {
		if !m.weatherOK(item.Site, ctx.Time.Timestep) {
			stats.SitesWeather++
			continue
		}
		crew := m.Crews[i%len(m.Crews)]
		crew.Deployed = true
		item.Attempted = true
		item.Report.Crew = crew.CrewID
		item.Report.TimeSurveyed = m.Config.SurveyTimeMinutes
		item.Report.SurveyComplete = true
		stats.MinutesWorked += m.Config.SurveyTimeMinutes
		m.completeSurvey(ctx, item, rng, stats)
	}
}

// completeSurvey runs the sensor over the site and merges the detection
// result into the survey report.
func (m *Method) completeSurvey(ctx *SimulationContext, item *WorkItem, rng *rand.Rand, stats *CrewDeploymentStats) {
	env := sensors.Env{}
	if ctx.Weather != nil {
		env.Windspeed = ctx.Weather.Windspeed(ctx.Time.Timestep, item.Site.LatIdx, item.Site.LonIdx)
	}
	sample := item.Site.DetectableSample(m.Name(), m.Config.Sensor.SpatialCoverage, env, rng)
	item.Report.MergeSensorReport(m.Sensor.Detect(sample, rng))
	stats.SitesVisited++
	stats.CostAccrued += m.Config.CostPerSite
}
