package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Campaign is one fixed-length follow-up coverage window for a (subtype,
// screening method) pair. Window length is floor(365/RS) days, so each
// survey cycle gets its own quota window.
type Campaign struct {
	Subtype      string
	Method       string // screening method whose flags this campaign covers
	WindowDays   int
	MinFollowups int
	MinDaysToEnd int // checkpoint offset before window close

	followUp *Schedule // schedule that receives makeup flags

	windowStart int // timestep of the current window's first day
	followedUp  map[string]bool
	madeUp      bool
}

// CampaignCoordinator enforces the minimum-followup quota across all
// campaigns: at each window's checkpoint, any shortfall between quota and
// actually-followed-up sites is filled by randomly force-flagging additional
// sites, so every campaign meets its minimum coverage regardless of natural
// flag volume.
type CampaignCoordinator struct {
	campaigns []*Campaign
	sites     []*Site
}

// NewCampaignCoordinator builds campaigns for every screening method that
// declares a followup quota, one per site subtype present in the fleet.
func NewCampaignCoordinator(methods []*Method, sites []*Site) *CampaignCoordinator {
	cc := &CampaignCoordinator{sites: sites}

	subtypes := map[string]bool{}
	for _, s := range sites {
		subtypes[s.Subtype] = true
	}
	ordered := make([]string, 0, len(subtypes))
	for st := range subtypes {
		ordered = append(ordered, st)
	}
	sort.Strings(ordered)

	for _, m := range methods {
		cfg := m.Config
		if cfg.MinFollowupsPerCampaign <= 0 || m.FollowUpSchedule() == nil || cfg.RS <= 0 {
			continue
		}
		for _, st := range ordered {
			cc.campaigns = append(cc.campaigns, &Campaign{
				Subtype:      st,
				Method:       cfg.Name,
				WindowDays:   365 / cfg.RS,
				MinFollowups: cfg.MinFollowupsPerCampaign,
				MinDaysToEnd: cfg.MinFollowupDaysToEnd,
				followUp:     m.FollowUpSchedule(),
				followedUp:   make(map[string]bool),
			})
		}
	}
	return cc
}

// Campaigns exposes the coordinator's campaigns (for tests).
func (cc *CampaignCoordinator) Campaigns() []*Campaign {
	return cc.campaigns
}

// FollowedUpCount returns how many sites the campaign has covered this window.
func (c *Campaign) FollowedUpCount() int {
	return len(c.followedUp)
}

// RecordFollowUp credits a completed follow-up survey at a flagged site to
// the matching campaigns. Called by the attribution step before the flag is
// cleared.
func (cc *CampaignCoordinator) RecordFollowUp(site *Site) {
	for _, c := range cc.campaigns {
		if c.Subtype != site.Subtype {
			continue
		}
		if site.FlaggedBy == c.Method || site.FlaggedBy == MakeupCompany {
			c.followedUp[site.ID] = true
		}
	}
}

// EndOfDay runs checkpoint makeup sampling and window turnover.
func (cc *CampaignCoordinator) EndOfDay(ctx *SimulationContext, metrics *Metrics) {
	timestep := ctx.Time.Timestep
	for _, c := range cc.campaigns {
		dayInWindow := timestep - c.windowStart

		if !c.madeUp && c.WindowDays-dayInWindow == c.MinDaysToEnd {
			cc.makeup(ctx, c, metrics)
			c.madeUp = true
		}

		if dayInWindow >= c.WindowDays {
			cc.closeWindow(c, timestep)
		}
	}
}

// makeup fills the quota shortfall by force-flagging randomly sampled sites.
func (cc *CampaignCoordinator) makeup(ctx *SimulationContext, c *Campaign, metrics *Metrics) {
	shortfall := c.MinFollowups - len(c.followedUp)
	if shortfall <= 0 {
		return
	}

	var eligible []*Site
	for _, s := range cc.sites {
		if s.Subtype == c.Subtype && !c.followedUp[s.ID] && !s.CurrentlyFlagged {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return
	}

	rng := ctx.RNG.ForSubsystem(SubsystemCampaign)
	order := rng.Perm(len(eligible))
	if shortfall > len(eligible) {
		shortfall = len(eligible)
	}
	for _, idx := range order[:shortfall] {
		site := eligible[idx]
		UpdateFlag(site, MakeupCompany, ctx.Time.CurrentDate, metrics.MethodFor(c.Method))
		c.followUp.FlagSite(site, ctx.Time.CurrentDate, site.EmittingRate())
	}
	logrus.Debugf("[campaign %s/%s] makeup-flagged %d site(s) at checkpoint",
		c.Method, c.Subtype, shortfall)
}

// closeWindow clears any flags this campaign still owns and starts the next
// window.
func (cc *CampaignCoordinator) closeWindow(c *Campaign, timestep int) {
	for _, s := range cc.sites {
		if s.Subtype != c.Subtype || !s.CurrentlyFlagged {
			continue
		}
		if s.FlaggedBy == c.Method || s.FlaggedBy == MakeupCompany {
			s.ClearFlag()
		}
	}
	c.windowStart = timestep
	c.followedUp = make(map[string]bool)
	c.madeUp = false
}
