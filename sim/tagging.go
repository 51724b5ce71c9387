package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// UpdateTag reconciles one detection event against an emission's tag state.
// First detector wins; redundant same-company detections are counted but do
// not re-tag; the natural repair channel is the one writer allowed to
// overwrite an existing tag's attribution (repair happens independently of
// LDAR credit). Returns true when the detection produced a new tag credit
// for the company.
//
// counters may be nil (natural channel has no method counters).
func UpdateTag(em *Emission, measured float64, site *Site, company string, crew int, today time.Time, counters *MethodCounters) bool {
	today = Midnight(today)

	if em.Tagged {
		switch {
		case em.TaggedByCompany == company:
			// Same company re-detects its own tag.
			if counters != nil {
				counters.RedundantTags++
			}
			return false
		case company == NaturalCompany:
			// Natural repair claims an already-tagged emission. Attribution
			// moves to the natural channel; initial-detector credit stays.
			em.TaggedByCompany = NaturalCompany
			em.TagDate = today
			return false
		default:
			// A different company detects an already-tagged emission. The
			// redundancy check is per-company, so this is a new tag for the
			// detecting company's ledger, but the emission's attribution is
			// monotonic and does not change.
			if counters != nil {
				counters.Tags++
			}
			return true
		}
	}

	em.Tagged = true
	em.TagDate = today
	em.TaggedByCompany = company
	em.TaggedByCrew = crew

	if company != NaturalCompany {
		em.MeasuredRate = &measured
		// Half-time-since-last-LDAR heuristic for when the leak began.
		tSince := site.StatsFor(company).TSinceLastLDAR
		em.EstimatedDateBegan = today.AddDate(0, 0, -tSince/2)
		if counters != nil {
			counters.Tags++
		}
	}

	// Initial-detector credit is set once and never overwritten. If the site
	// was already flagged when the tag occurs, credit is donated to the
	// original flagger (give-credit-to-screening-method semantics).
	if site.CurrentlyFlagged && site.FlaggedBy != "" && site.FlaggedBy != company {
		em.InitDetectBy = site.FlaggedBy
		em.InitDetectDate = Midnight(site.DateFlagged)
	} else {
		em.InitDetectBy = company
		em.InitDetectDate = today
	}

	logrus.Debugf("[%s] tagged emission %s at site %s (measured %.4f g/s)",
		company, em.ID, site.ID, measured)
	return true
}

// UpdateFlag flags a site for follow-up exactly once. Subsequent flags are
// counted as redundant and do not alter FlaggedBy. Returns true when the
// flag is newly placed.
func UpdateFlag(site *Site, company string, today time.Time, counters *MethodCounters) bool {
	if counters != nil && siteHasTaggedActiveLeak(site) {
		counters.FlagsWithTaggedLeaks++
	}

	if site.CurrentlyFlagged {
		if counters != nil {
			counters.RedundantFlags++
		}
		return false
	}

	site.CurrentlyFlagged = true
	site.DateFlagged = Midnight(today)
	site.FlaggedBy = company
	if counters != nil {
		counters.EffFlags++
	}
	logrus.Debugf("[%s] flagged site %s", company, site.ID)
	return true
}

func siteHasTaggedActiveLeak(site *Site) bool {
	for _, em := range site.ActiveEmissions() {
		if em.Tagged {
			return true
		}
	}
	return false
}
