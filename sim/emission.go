package sim

import (
	"time"

	"github.com/google/uuid"

	"github.com/ldar-sim/ldar-sim/sim/series"
)

// EmissionStatus tracks where an emission is in its lifecycle.
type EmissionStatus string

const (
	StatusInactive EmissionStatus = "inactive"
	StatusActive   EmissionStatus = "active"
	StatusRepaired EmissionStatus = "repaired"
	StatusExpired  EmissionStatus = "expired"
)

// NaturalCompany is the repair channel that acts independently of any LDAR
// program: operators finding and fixing leaks on their own. It is the only
// channel allowed to overwrite an existing tag's company attribution.
const NaturalCompany = "natural"

// MakeupCompany marks sites force-flagged by campaign makeup sampling.
const MakeupCompany = "makeup"

// Emission is a single leak (repairable/fugitive) or vent (non-repairable)
// source at a component.
//
// Invariants:
//   - An emission is never measured before it is tagged.
//   - Tagged never reverts to false; only the natural channel may overwrite
//     the company/crew/date attribution of an existing tag.
//   - DaysActive increases by exactly 1 per simulated day spent Active.
//   - A non-repairable emission expires exactly when
//     DaysActive + DaysActiveB4Sim >= Duration.
//   - An intermittent emission accrues DaysEmitting only while its duty
//     sub-state is on AND the emission is Active.
type Emission struct {
	ID         string
	SiteID     string
	TrueRate   float64 // g/s
	StartDate  time.Time
	Repairable bool
	Status     EmissionStatus

	DaysActive      int
	DaysActiveB4Sim int // days already emitting before simulation start

	// Detection / tagging state. MeasuredRate is nil until tagged.
	MeasuredRate       *float64
	Tagged             bool
	TaggedByCompany    string
	TaggedByCrew       int
	TagDate            time.Time
	EstimatedDateBegan time.Time
	InitDetectBy       string
	InitDetectDate     time.Time

	// Repairable only.
	RepairDelay      int // days between tagging and repair completion
	RepairCost       float64
	NaturalRepairDay int // DaysActive at which the natural channel acts
	RepairDate       time.Time

	// Non-repairable only.
	Duration   int // total emitting lifetime, days
	ExpiryDate time.Time

	// Intermittent duty cycle. Zero ActiveDutyDays means continuous.
	ActiveDutyDays   int
	InactiveDutyDays int
	emitting         bool
	dutyRemaining    int
	DaysEmitting     int

	// One-time-sampled spatial coverage outcome per method name.
	spatialCoverage map[string]bool
}

// NewEmission creates an Active emission starting on the given date.
func NewEmission(siteID string, rate float64, start time.Time, repairable bool) *Emission {
	return &Emission{
		ID:              uuid.NewString(),
		SiteID:          siteID,
		TrueRate:        rate,
		StartDate:       Midnight(start),
		Repairable:      repairable,
		Status:          StatusActive,
		emitting:        true,
		spatialCoverage: make(map[string]bool),
	}
}

// SetDutyCycle configures intermittent behavior. The emission starts in the
// on sub-state with a full active window remaining.
func (e *Emission) SetDutyCycle(activeDays, inactiveDays int) {
	e.ActiveDutyDays = activeDays
	e.InactiveDutyDays = inactiveDays
	e.emitting = true
	e.dutyRemaining = activeDays
}

// Intermittent reports whether the emission cycles on and off.
func (e *Emission) Intermittent() bool {
	return e.ActiveDutyDays > 0 && e.InactiveDutyDays > 0
}

// Emitting reports whether the emission is currently releasing gas: Active
// status and, for intermittent sources, an on duty sub-state.
func (e *Emission) Emitting() bool {
	return e.Status == StatusActive && e.emitting
}

// SpatialCoverage returns the method's one-time spatial coverage draw for
// this emission, sampling it on first use. Probability 0 means the method
// declared no spatial gate and the emission is always covered.
func (e *Emission) SpatialCoverage(method string, prob float64, rng interface{ Float64() float64 }) bool {
	if covered, ok := e.spatialCoverage[method]; ok {
		return covered
	}
	covered := prob <= 0 || rng.Float64() < prob
	e.spatialCoverage[method] = covered
	return covered
}

// AgeOneDay advances the emission by one simulated day and applies the
// end-of-day lifecycle transitions: duty-cycle flips, vent expiry, natural
// repair eligibility, and repair-delay completion. Returns the emitted mass
// for the day in grams.
func (e *Emission) AgeOneDay(today time.Time) float64 {
	if e.Status != StatusActive {
		return 0
	}

	var emittedGrams float64
	if e.emitting {
		emittedGrams = e.TrueRate * 86400
		e.DaysEmitting++
	}
	e.DaysActive++

	if e.Intermittent() {
		e.dutyRemaining--
		if e.dutyRemaining <= 0 {
			if e.emitting {
				e.emitting = false
				e.dutyRemaining = e.InactiveDutyDays
			} else {
				e.emitting = true
				e.dutyRemaining = e.ActiveDutyDays
			}
		}
	}

	if !e.Repairable && e.Duration > 0 && e.DaysActive+e.DaysActiveB4Sim >= e.Duration {
		e.Status = StatusExpired
		e.ExpiryDate = today
	}
	return emittedGrams
}

// NaturallyRepairableOn reports whether the natural repair channel acts on
// this emission today. Natural repair ignores tagging state entirely.
func (e *Emission) NaturallyRepairableOn() bool {
	return e.Repairable && e.Status == StatusActive &&
		e.NaturalRepairDay > 0 && e.DaysActive >= e.NaturalRepairDay
}

// RepairDueOn reports whether an LDAR-tagged repair completes today:
// RepairDelay days have passed since the tag date.
func (e *Emission) RepairDueOn(today time.Time) bool {
	return e.Repairable && e.Status == StatusActive && e.Tagged &&
		e.TaggedByCompany != NaturalCompany &&
		DaysBetween(e.TagDate, today) >= e.RepairDelay
}

// Repair transitions the emission to Repaired.
func (e *Emission) Repair(today time.Time) {
	e.Status = StatusRepaired
	e.RepairDate = today
}

// EndOfLife reports whether the emission has left active tracking.
func (e *Emission) EndOfLife() bool {
	return e.Status == StatusRepaired || e.Status == StatusExpired
}

// SummaryRecord converts the emission into the plain historical record the
// output layer consumes.
func (e *Emission) SummaryRecord() series.EmissionRecord {
	rec := series.EmissionRecord{
		ID:             e.ID,
		SiteID:         e.SiteID,
		TrueRate:       e.TrueRate,
		Repairable:     e.Repairable,
		Status:         string(e.Status),
		DaysActive:     e.DaysActive,
		StartDate:      e.StartDate,
		Tagged:         e.Tagged,
		TaggedBy:       e.TaggedByCompany,
		TagDate:        e.TagDate,
		InitDetectBy:   e.InitDetectBy,
		InitDetectDate: e.InitDetectDate,
		RepairCost:     e.RepairCost,
	}
	if e.MeasuredRate != nil {
		rec.MeasuredRate = *e.MeasuredRate
	}
	switch e.Status {
	case StatusRepaired:
		rec.EndDate = e.RepairDate
	case StatusExpired:
		rec.EndDate = e.ExpiryDate
	}
	return rec
}
