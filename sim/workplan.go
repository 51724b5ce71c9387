package sim

import (
	"time"

	"github.com/ldar-sim/ldar-sim/sim/sensors"
)

// SiteSurveyReport tracks one site's progress through one survey. It is
// created empty when the site enters a day's workplan, mutated across one or
// more days until SurveyComplete, then reduced to summary records.
//
// Invariant (rollover conservation): TimeSurveyed only falls short of the
// method's full survey-time requirement while SurveyInProgress is set, and a
// report is never both SurveyComplete and SurveyInProgress.
type SiteSurveyReport struct {
	SiteID        string
	Method        string
	Crew          int
	TimeSurveyed  float64 // minutes spent surveying so far
	TimeTravelled float64 // minutes spent traveling so far

	SurveyComplete   bool
	SurveyInProgress bool

	Level            sensors.Level
	Detected         bool
	SiteTrueRate     float64
	SiteMeasuredRate float64
	Records          []sensors.DetectionRecord
	Groups           []sensors.GroupReport
	MissedLeaks      int
}

// MergeSensorReport copies a sensor's pure detection result into the survey
// report.
func (r *SiteSurveyReport) MergeSensorReport(sr sensors.Report) {
	r.Level = sr.Level
	r.Detected = sr.Detected
	r.SiteTrueRate = sr.TrueRate
	r.SiteMeasuredRate = sr.MeasuredRate
	r.Records = sr.Records
	r.Groups = sr.Groups
	r.MissedLeaks = sr.MissedLeaks
}

// WorkItem is one due site inside a workplan, carrying the scheduling state
// the Schedule needs to requeue it if deployment cannot finish it today.
type WorkItem struct {
	Site    *Site
	Planner *SurveyPlanner // nil for follow-up items
	Report  *SiteSurveyReport

	// RateAtSite orders follow-up items within a tier (higher first).
	RateAtSite float64

	tier int
	seq  int64

	// Attempted is set by deployment when any crew time (or a weather check
	// that passed) was spent on the item today.
	Attempted bool
}

// Workplan is one method's ordered list of due sites for one day, most
// urgent first. Created fresh from the Schedule's queue each day, consumed
// by deployment, then handed back to the Schedule for requeueing and to the
// attribution engine for completed reports.
type Workplan struct {
	Method string
	Date   time.Time
	Items  []*WorkItem
}

// Completed returns the items whose surveys finished today.
func (w *Workplan) Completed() []*WorkItem {
	var out []*WorkItem
	for _, it := range w.Items {
		if it.Report.SurveyComplete {
			out = append(out, it)
		}
	}
	return out
}

// CrewDailyReport is one crew's remaining capacity for the day. Reset daily.
type CrewDailyReport struct {
	CrewID           int
	MinutesRemaining float64
	Deployed         bool
}

// CrewDeploymentStats summarizes one method's deployment day.
type CrewDeploymentStats struct {
	Method        string
	SitesVisited  int
	SitesDeferred int
	SitesWeather  int // sites skipped by the weather gate
	MinutesWorked float64
	CostAccrued   float64
}
