package sim

import (
	"fmt"
	"sort"

	"github.com/ldar-sim/ldar-sim/sim/series"
)

// MethodCounters aggregates one method's program-wide counters. These feed
// the per-day MethodDayRecord snapshots and the final summary.
type MethodCounters struct {
	Tags          int
	RedundantTags int
	SitesVisited  int
	EffFlags      int
	RedundantFlags int
	// FlagsWithTaggedLeaks counts flag attempts on sites that already held a
	// tagged active leak. Diagnostic only.
	FlagsWithTaggedLeaks int
	MissedLeaks          int
	CostAccrued          float64
}

// Metrics aggregates statistics about the simulation for final reporting and
// for the day-by-day output stream the excluded aggregation layer consumes.
type Metrics struct {
	Methods map[string]*MethodCounters

	TotalNewLeaks  int
	TotalRepairs   int
	TotalExpired   int
	TotalEmittedKg float64

	Days            []series.DayRecord
	EmissionRecords []series.EmissionRecord
}

// NewMetrics creates an empty metrics aggregate.
func NewMetrics() *Metrics {
	return &Metrics{Methods: make(map[string]*MethodCounters)}
}

// MethodFor returns (creating on first use) the counters for a method.
func (m *Metrics) MethodFor(name string) *MethodCounters {
	c, ok := m.Methods[name]
	if !ok {
		c = &MethodCounters{}
		m.Methods[name] = c
	}
	return c
}

// snapshotMethods converts the running counters into the day record's
// per-method deltas against the previous snapshot.
func (m *Metrics) snapshotMethods(prev map[string]MethodCounters) map[string]series.MethodDayRecord {
	out := make(map[string]series.MethodDayRecord, len(m.Methods))
	for name, c := range m.Methods {
		p := prev[name]
		out[name] = series.MethodDayRecord{
			Method:         name,
			Tags:           c.Tags - p.Tags,
			RedundantTags:  c.RedundantTags - p.RedundantTags,
			SitesVisited:   c.SitesVisited - p.SitesVisited,
			EffFlags:       c.EffFlags - p.EffFlags,
			RedundantFlags: c.RedundantFlags - p.RedundantFlags,
			MissedLeaks:    c.MissedLeaks - p.MissedLeaks,
			CostAccrued:    c.CostAccrued - p.CostAccrued,
		}
	}
	return out
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Simulated days       : %d\n", len(m.Days))
	fmt.Printf("New leaks            : %d\n", m.TotalNewLeaks)
	fmt.Printf("Repairs completed    : %d\n", m.TotalRepairs)
	fmt.Printf("Vents expired        : %d\n", m.TotalExpired)
	fmt.Printf("Total emitted        : %.1f kg\n", m.TotalEmittedKg)

	names := make([]string, 0, len(m.Methods))
	for name := range m.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := m.Methods[name]
		fmt.Printf("--- %s ---\n", name)
		fmt.Printf("  Tags               : %d (+%d redundant)\n", c.Tags, c.RedundantTags)
		fmt.Printf("  Sites visited      : %d\n", c.SitesVisited)
		fmt.Printf("  Effective flags    : %d (+%d redundant)\n", c.EffFlags, c.RedundantFlags)
		fmt.Printf("  Missed leaks       : %d\n", c.MissedLeaks)
		fmt.Printf("  Cost accrued       : $%.2f\n", c.CostAccrued)
	}
}
