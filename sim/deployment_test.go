package sim

import (
	"testing"

	"github.com/ldar-sim/ldar-sim/sim/sensors"
)

func componentSensor() sensors.Config {
	return sensors.Config{
		Type:  sensors.TypeLogistic,
		Level: "component",
		MDL:   []float64{1e-6, 0.01},
	}
}

// followUpMethod builds a mobile follow-up method so tests can inject work
// items via FlagSite without a planner.
func followUpMethod(t *testing.T, cfg MethodConfig) *Method {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = "ogi-fu"
	}
	cfg.Sensor = componentSensor()
	cfg.IsFollowUp = true
	m, err := NewMethod(cfg, nil, day(0), day(365))
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	return m
}

func testCtx(horizon int) *SimulationContext {
	return &SimulationContext{
		RNG:     NewPartitionedRNG(NewSimulationKey(11)),
		Time:    NewTimeCounter(day(0)),
		Weather: NewConstantWeather(2.0, horizon),
	}
}

func TestDeploy_Rollover_ConservesSurveyTimeAcrossDays(t *testing.T) {
	// GIVEN a 60-minute workday, a 100-minute survey, and 10-minute travel
	m := followUpMethod(t, MethodConfig{
		DeploymentType:    DeploymentMobile,
		NCrews:            1,
		MaxWorkday:        1,
		SurveyTimeMinutes: 100,
		TravelTimeMinutes: 10,
	})
	ctx := testCtx(10)
	m.Cube = ctx.Weather.DeploymentDaysCube(m.Name())

	site := testSite("site_0")
	m.Schedule.FlagSite(site, day(0), 1.0)

	// WHEN day one deploys
	wp := m.Schedule.GetWorkplan(ctx.Time.CurrentDate)
	stats := m.Deploy(ctx, wp)
	report := wp.Items[0].Report

	// THEN the crew surveys the 50 minutes left after travel and rolls over
	if !report.SurveyInProgress || report.SurveyComplete {
		t.Fatalf("day 1: InProgress=%v Complete=%v, want rollover", report.SurveyInProgress, report.SurveyComplete)
	}
	if report.TimeSurveyed != 50 {
		t.Errorf("day 1 TimeSurveyed = %v, want 50", report.TimeSurveyed)
	}
	if stats.MinutesWorked != 60 {
		t.Errorf("day 1 MinutesWorked = %v, want 60", stats.MinutesWorked)
	}
	if stats.SitesVisited != 0 {
		t.Errorf("rolled-over site counted as visited")
	}

	// AND the survey finishes on day two with full time accounted
	m.Schedule.Update(wp)
	ctx.Time.NextDay()
	wp2 := m.Schedule.GetWorkplan(ctx.Time.CurrentDate)
	if len(wp2.Items) != 1 {
		t.Fatalf("day 2 workplan has %d items, want the rollover", len(wp2.Items))
	}
	m.Deploy(ctx, wp2)
	report2 := wp2.Items[0].Report

	if !report2.SurveyComplete || report2.SurveyInProgress {
		t.Fatalf("day 2: Complete=%v InProgress=%v, want completed", report2.SurveyComplete, report2.SurveyInProgress)
	}
	if report2.TimeSurveyed != 100 {
		t.Errorf("final TimeSurveyed = %v, want the full 100", report2.TimeSurveyed)
	}
	if report2.TimeTravelled != 20 {
		t.Errorf("TimeTravelled = %v, want 20 (travel debited both days)", report2.TimeTravelled)
	}
}

func TestDeploy_WeatherGate_ConsumesNoTime(t *testing.T) {
	// GIVEN a method whose weather gate never passes
	m := followUpMethod(t, MethodConfig{
		DeploymentType:    DeploymentMobile,
		NCrews:            1,
		MaxWorkday:        8,
		SurveyTimeMinutes: 30,
	})
	blocked := NewBernoulliWeather(2.0, 10, 0, nil)
	m.Cube = blocked.DeploymentDaysCube(m.Name())
	ctx := testCtx(10)

	site := testSite("site_0")
	m.Schedule.FlagSite(site, day(0), 1.0)
	wp := m.Schedule.GetWorkplan(day(0))

	// WHEN the day deploys
	stats := m.Deploy(ctx, wp)

	// THEN no crew time is spent and the site stays queued for tomorrow
	if stats.SitesWeather != 1 || stats.MinutesWorked != 0 {
		t.Errorf("stats = %+v, want 1 weather-blocked site and 0 minutes", stats)
	}
	if wp.Items[0].Attempted {
		t.Error("weather-blocked site marked attempted")
	}
	if wp.Items[0].Report.TimeSurveyed != 0 {
		t.Error("weather-blocked site accrued survey time")
	}
	m.Schedule.Update(wp)
	if next := m.Schedule.GetWorkplan(day(1)); len(next.Items) != 1 {
		t.Error("weather-blocked site lost from the queue")
	}
}

func TestDeploy_CapacityExhausted_DefersWithoutAttempt(t *testing.T) {
	// GIVEN one crew whose workday fits exactly one survey
	m := followUpMethod(t, MethodConfig{
		DeploymentType:    DeploymentMobile,
		NCrews:            1,
		MaxWorkday:        1,
		SurveyTimeMinutes: 60,
	})
	ctx := testCtx(10)
	m.Cube = ctx.Weather.DeploymentDaysCube(m.Name())

	m.Schedule.FlagSite(testSite("first"), day(0), 2.0)
	m.Schedule.FlagSite(testSite("second"), day(0), 1.0)
	wp := m.Schedule.GetWorkplan(day(0))

	// WHEN the day deploys
	stats := m.Deploy(ctx, wp)

	// THEN the higher-rate site completes and the other defers untouched
	if stats.SitesVisited != 1 || stats.SitesDeferred != 1 {
		t.Fatalf("stats = %+v, want 1 visited 1 deferred", stats)
	}
	if !wp.Items[0].Report.SurveyComplete {
		t.Error("first site did not complete")
	}
	if wp.Items[1].Attempted || wp.Items[1].Report.SurveyInProgress {
		t.Error("deferred site was touched")
	}
}

func TestDeploy_Stationary_NoTravelDedicatedCrews(t *testing.T) {
	// GIVEN a stationary method over three sites
	sites := []*Site{testSite("a"), testSite("b"), testSite("c")}
	cfg := MethodConfig{
		Name:              "cms",
		Sensor:            componentSensor(),
		DeploymentType:    DeploymentStationary,
		RS:                365,
		MaxWorkday:        24,
		SurveyTimeMinutes: 1,
		TravelTimeMinutes: 45, // ignored: fixed sensors do not travel
	}
	m, err := NewMethod(cfg, sites, day(0), day(365))
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	if len(m.Crews) != len(sites) {
		t.Fatalf("stationary method has %d crews, want one per site", len(m.Crews))
	}
	ctx := testCtx(10)
	m.Cube = ctx.Weather.DeploymentDaysCube(m.Name())

	// WHEN every site is due on the same day
	wp := m.Schedule.GetWorkplan(day(0))
	if len(wp.Items) != len(sites) {
		t.Fatalf("daily plan has %d items, want all %d sites", len(wp.Items), len(sites))
	}
	stats := m.Deploy(ctx, wp)

	// THEN all due sites complete with zero travel
	if stats.SitesVisited != len(wp.Items) || stats.SitesDeferred != 0 {
		t.Errorf("stats = %+v, want all %d sites visited", stats, len(wp.Items))
	}
	for _, item := range wp.Items {
		if !item.Report.SurveyComplete {
			t.Errorf("site %s did not complete", item.Site.ID)
		}
		if item.Report.TimeTravelled != 0 {
			t.Errorf("site %s accrued travel time on a fixed sensor", item.Site.ID)
		}
	}
}

func TestDeploy_DaylightCapsWorkday(t *testing.T) {
	// GIVEN an 8-hour workday but only 30 minutes of daylight
	m := followUpMethod(t, MethodConfig{
		DeploymentType:    DeploymentMobile,
		NCrews:            1,
		MaxWorkday:        8,
		SurveyTimeMinutes: 100,
		ConsiderDaylight:  true,
	})
	ctx := testCtx(10)
	ctx.Daylight = &ConstantDaylight{Hours: 0.5}
	m.Cube = ctx.Weather.DeploymentDaysCube(m.Name())

	m.Schedule.FlagSite(testSite("site_0"), day(0), 1.0)
	wp := m.Schedule.GetWorkplan(day(0))

	// WHEN the day deploys
	m.Deploy(ctx, wp)
	report := wp.Items[0].Report

	// THEN the crew only works the daylight minutes and rolls over
	if report.TimeSurveyed != 30 {
		t.Errorf("TimeSurveyed = %v, want the 30 daylight minutes", report.TimeSurveyed)
	}
	if !report.SurveyInProgress {
		t.Error("daylight-capped survey not marked in progress")
	}
}
