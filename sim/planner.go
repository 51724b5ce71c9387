package sim

import (
	"time"
)

// SurveyPlanner holds one site's precomputed survey plan for one scheduled
// method: the ordered due dates over the simulation horizon plus the
// per-year required/completed counters.
//
// Invariants: the planner never proposes more due dates in a year than the
// method's survey frequency, and a site mid-rollover is never re-queued
// until the rollover completes.
type SurveyPlanner struct {
	SiteID string

	dueDates        []time.Time
	requiredByYear  map[int]int
	completedByYear map[int]int
	inProgress      bool
}

// NewSurveyPlanner precomputes due dates from simStart to simEnd (inclusive
// of both years) for a method with rs required surveys per year, restricted
// to the deployment month/year whitelists. Empty whitelists allow all.
func NewSurveyPlanner(siteID string, rs int, months []time.Month, years []int, simStart, simEnd time.Time) *SurveyPlanner {
	p := &SurveyPlanner{
		SiteID:          siteID,
		requiredByYear:  make(map[int]int),
		completedByYear: make(map[int]int),
	}
	if rs <= 0 {
		return p
	}
	for year := simStart.Year(); year <= simEnd.Year(); year++ {
		if len(years) > 0 && !containsInt(years, year) {
			continue
		}
		plan := genSurveyPlan(rs, months, year)
		p.dueDates = append(p.dueDates, plan...)
		p.requiredByYear[year] = len(plan)
	}
	return p
}

// genSurveyPlan distributes rs due dates as evenly as possible across the
// allowed months of one year. When the deployment months are a strict subset
// of the year, the dates compress into the allowed window while preserving
// even spacing: the allowed days are laid out consecutively and sampled at
// regular intervals.
func genSurveyPlan(rs int, months []time.Month, year int) []time.Time {
	var allowed []time.Time
	day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == year {
		if len(months) == 0 || containsMonth(months, day.Month()) {
			allowed = append(allowed, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	if len(allowed) == 0 {
		return nil
	}
	if rs > len(allowed) {
		rs = len(allowed)
	}

	plan := make([]time.Time, 0, rs)
	// Sample index i*len/rs so the rs dates split the window into equal
	// stretches, first survey at the window start.
	for i := 0; i < rs; i++ {
		plan = append(plan, allowed[i*len(allowed)/rs])
	}
	return plan
}

// DueOn reports whether the site comes due on the given date: a precomputed
// due date, annual quota not yet met, and no rollover in flight.
func (p *SurveyPlanner) DueOn(date time.Time) bool {
	if p.inProgress {
		return false
	}
	if p.completedByYear[date.Year()] >= p.requiredByYear[date.Year()] {
		return false
	}
	date = Midnight(date)
	for _, d := range p.dueDates {
		if d.Equal(date) {
			return true
		}
	}
	return false
}

// RequiredIn returns the number of surveys required in the given year.
func (p *SurveyPlanner) RequiredIn(year int) int {
	return p.requiredByYear[year]
}

// CompletedIn returns the number of surveys completed in the given year.
func (p *SurveyPlanner) CompletedIn(year int) int {
	return p.completedByYear[year]
}

// DueDates exposes the precomputed plan (for tests and diagnostics).
func (p *SurveyPlanner) DueDates() []time.Time {
	return p.dueDates
}

// BeginRollover marks the site as mid-survey so it is not re-queued by the
// due-date scan while a partial survey is waiting to resume.
func (p *SurveyPlanner) BeginRollover() {
	p.inProgress = true
}

// MarkCompleted records a finished survey and closes any rollover.
func (p *SurveyPlanner) MarkCompleted(date time.Time) {
	p.inProgress = false
	p.completedByYear[date.Year()]++
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsMonth(xs []time.Month, x time.Month) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
