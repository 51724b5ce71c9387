package sim

import (
	"testing"
	"time"
)

func yearSpan(year int) (time.Time, time.Time) {
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
}

func TestGenSurveyPlan_Simple_AllMonthsEvenlySpaced(t *testing.T) {
	// GIVEN 12 required surveys with no month restriction
	plan := genSurveyPlan(12, nil, 2025)

	// THEN 12 due dates land roughly monthly
	if len(plan) != 12 {
		t.Fatalf("plan has %d dates, want 12", len(plan))
	}
	for i := 1; i < len(plan); i++ {
		gap := DaysBetween(plan[i-1], plan[i])
		if gap < 28 || gap > 32 {
			t.Errorf("gap between due dates %d and %d is %d days, want ~30", i-1, i, gap)
		}
	}
}

func TestGenSurveyPlan_Split_CompressesIntoAllowedMonths(t *testing.T) {
	// GIVEN 2 surveys restricted to a split window (January and July)
	plan := genSurveyPlan(2, []time.Month{time.January, time.July}, 2025)

	// THEN one due date lands in each allowed month
	if len(plan) != 2 {
		t.Fatalf("plan has %d dates, want 2", len(plan))
	}
	if plan[0].Month() != time.January {
		t.Errorf("first due date in %v, want January", plan[0].Month())
	}
	if plan[1].Month() != time.July {
		t.Errorf("second due date in %v, want July", plan[1].Month())
	}
}

func TestGenSurveyPlan_ConsecutiveMonths_StaysInWindow(t *testing.T) {
	// GIVEN 4 surveys restricted to the June-August field season
	months := []time.Month{time.June, time.July, time.August}
	plan := genSurveyPlan(4, months, 2025)

	// THEN every due date lies inside the window, evenly spread
	if len(plan) != 4 {
		t.Fatalf("plan has %d dates, want 4", len(plan))
	}
	for i, d := range plan {
		if !containsMonth(months, d.Month()) {
			t.Errorf("due date %d (%v) outside deployment months", i, d)
		}
	}
	for i := 1; i < len(plan); i++ {
		gap := DaysBetween(plan[i-1], plan[i])
		if gap < 20 || gap > 26 {
			t.Errorf("gap %d is %d days, want ~23 (92-day window / 4)", i, gap)
		}
	}
}

func TestGenSurveyPlan_NeverExceedsFrequency(t *testing.T) {
	// Survey quota invariant: the planner never proposes more due dates in a
	// year than the survey frequency.
	for _, rs := range []int{1, 4, 12, 52, 400} {
		plan := genSurveyPlan(rs, nil, 2025)
		if len(plan) > rs {
			t.Errorf("rs=%d produced %d due dates", rs, len(plan))
		}
	}
}

func TestSurveyPlanner_DueOn_SkipsSitesAtAnnualQuota(t *testing.T) {
	// GIVEN a planner with one required survey in 2025
	start, end := yearSpan(2025)
	p := NewSurveyPlanner("site_0", 1, nil, nil, start, end)
	due := p.DueDates()[0]

	if !p.DueOn(due) {
		t.Fatal("site not due on its precomputed due date")
	}

	// WHEN the annual quota is met
	p.MarkCompleted(due)

	// THEN the site is skipped for the rest of the year
	if p.DueOn(due) {
		t.Error("site at annual quota still reported due")
	}
	if p.CompletedIn(2025) != 1 || p.RequiredIn(2025) != 1 {
		t.Errorf("counters = %d/%d, want 1/1", p.CompletedIn(2025), p.RequiredIn(2025))
	}
}

func TestSurveyPlanner_Rollover_NotRequeuedUntilComplete(t *testing.T) {
	// GIVEN a planner mid-rollover
	start, end := yearSpan(2025)
	p := NewSurveyPlanner("site_0", 12, nil, nil, start, end)
	due := p.DueDates()[1]
	p.BeginRollover()

	// THEN the site is never re-queued while the rollover is open
	if p.DueOn(due) {
		t.Error("mid-rollover site reported due")
	}

	// WHEN the rollover completes
	p.MarkCompleted(due)
	if p.DueOn(p.DueDates()[2]) != true {
		t.Error("site not due again after rollover completed")
	}
}

func TestSurveyPlanner_DeploymentYears_Whitelist(t *testing.T) {
	// GIVEN a two-year horizon with only 2026 whitelisted
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	p := NewSurveyPlanner("site_0", 2, nil, []int{2026}, start, end)

	// THEN no due dates land in 2025
	for _, d := range p.DueDates() {
		if d.Year() != 2026 {
			t.Errorf("due date %v outside deployment years", d)
		}
	}
	if p.RequiredIn(2025) != 0 || p.RequiredIn(2026) != 2 {
		t.Errorf("required = %d/%d, want 0/2", p.RequiredIn(2025), p.RequiredIn(2026))
	}
}
