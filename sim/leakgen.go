package sim

import (
	"math/rand/v2"
	"time"
)

// EmissionsSource supplies true emission rates for newly created emissions.
// Implementations are unit-tagged; the core works in g/s.
type EmissionsSource interface {
	// Sample returns a non-negative rate in the source's units.
	Sample(rng *rand.Rand) float64
	// Units names the rate unit (informational; "gps" expected).
	Units() string
}

// maxRateResamples bounds the rejection loop when a source keeps producing
// rates above the cap. After this many tries the draw is clamped instead of
// failing — distributions are bounded by resampling, never by error.
const maxRateResamples = 100

// LeakGenerator creates new emissions: the daily per-site Bernoulli draw at
// rate LPR, and the initial backdated population at simulation start.
type LeakGenerator struct {
	// LPR is the leak production rate: per-site per-day probability of a
	// new repairable leak.
	LPR float64
	// Source draws true rates; draws above MaxRate are resampled.
	Source  EmissionsSource
	MaxRate float64 // g/s; 0 disables the cap

	// Repairable leak parameters.
	RepairDelayDays  int
	RepairCost       float64
	NaturalRepairDay int // DaysActive at which natural repair acts; 0 disables

	// Non-repairable (vent) parameters. VentFraction of new emissions are
	// vents with the given lifetime.
	VentFraction float64
	VentDuration int // days

	// Intermittent duty cycle applied to IntermittentFraction of emissions.
	IntermittentFraction float64
	ActiveDutyDays       int
	InactiveDutyDays     int
}

// SampleRate draws a rate, resampling above MaxRate.
func (g *LeakGenerator) SampleRate(rng *rand.Rand) float64 {
	rate := g.Source.Sample(rng)
	for i := 0; g.MaxRate > 0 && rate > g.MaxRate; i++ {
		if i >= maxRateResamples {
			rate = g.MaxRate
			break
		}
		rate = g.Source.Sample(rng)
	}
	return rate
}

// NewLeak creates one emission starting today at the given site.
func (g *LeakGenerator) NewLeak(site *Site, today time.Time, rng *rand.Rand) *Emission {
	repairable := true
	if g.VentFraction > 0 && rng.Float64() < g.VentFraction {
		repairable = false
	}

	em := NewEmission(site.ID, g.SampleRate(rng), today, repairable)
	if repairable {
		em.RepairDelay = g.RepairDelayDays
		em.RepairCost = g.RepairCost
		em.NaturalRepairDay = g.NaturalRepairDay
	} else {
		em.Duration = g.VentDuration
	}
	if g.IntermittentFraction > 0 && rng.Float64() < g.IntermittentFraction {
		em.SetDutyCycle(g.ActiveDutyDays, g.InactiveDutyDays)
	}

	site.AddEmission(em, rng.IntN(1<<30))
	return em
}

// BackdatedLeak creates an initial-population emission that began some days
// before simulation start. For vents the pre-sim active days wrap modulo the
// duration, modelling a recurring source partway through its cycle.
func (g *LeakGenerator) BackdatedLeak(site *Site, simStart time.Time, backdateDays int, rng *rand.Rand) *Emission {
	em := g.NewLeak(site, simStart.AddDate(0, 0, -backdateDays), rng)
	if !em.Repairable && em.Duration > 0 {
		em.DaysActiveB4Sim = backdateDays % em.Duration
	} else {
		em.DaysActiveB4Sim = backdateDays
	}
	return em
}
