package sim

import (
	"container/heap"
	"time"

	"github.com/sirupsen/logrus"
)

// Priority tiers for the survey queue. Lower values pop first.
const (
	// UnfinishedSurveyHighestPriority resumes partially completed surveys
	// before anything else, so a crew always finishes an in-progress site
	// before starting a new one.
	UnfinishedSurveyHighestPriority = 0
	// QueuedSurveyPriority covers previously queued but unattended sites.
	QueuedSurveyPriority = 1
	// DefaultSurveyPriority covers newly due sites.
	DefaultSurveyPriority = 2
)

// surveyQueue implements heap.Interface ordered by
// (tier asc, RateAtSite desc, insertion seq asc).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type surveyQueue []*WorkItem

func (q surveyQueue) Len() int { return len(q) }

func (q surveyQueue) Less(i, j int) bool {
	if q[i].tier != q[j].tier {
		return q[i].tier < q[j].tier
	}
	if q[i].RateAtSite != q[j].RateAtSite {
		return q[i].RateAtSite > q[j].RateAtSite
	}
	return q[i].seq < q[j].seq
}

func (q surveyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *surveyQueue) Push(x any) {
	*q = append(*q, x.(*WorkItem))
}

func (q *surveyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// pendingFollowUp is a flagged site waiting out its reporting delay before
// it may enter the survey queue.
type pendingFollowUp struct {
	site    *Site
	dueDate time.Time
	rate    float64
}

// Schedule owns one method's survey queue: which sites are due today, in
// what order, and what to do with sites deployment could not finish.
//
// For scheduled methods the due scan walks the per-site SurveyPlanners; for
// follow-up methods sites arrive via FlagSite and mature after the
// reporting delay. Rollover reports are owned exclusively by this Schedule —
// no other component reads or mutates an in-progress SiteSurveyReport.
type Schedule struct {
	Method         string
	FollowUp       bool
	ReportingDelay int // days between flag and follow-up due

	planners map[string]*SurveyPlanner
	sites    []*Site // declared order, drives the due scan

	queue        surveyQueue
	sitesInQueue map[string]bool
	seq          int64

	pending []pendingFollowUp
}

// NewSchedule builds a Schedule over the given sites. planners may be nil
// for follow-up methods.
func NewSchedule(method string, sites []*Site, planners map[string]*SurveyPlanner, followUp bool, reportingDelay int) *Schedule {
	return &Schedule{
		Method:         method,
		FollowUp:       followUp,
		ReportingDelay: reportingDelay,
		planners:       planners,
		sites:          sites,
		sitesInQueue:   make(map[string]bool),
	}
}

// Planner returns the survey planner for a site (nil for follow-up methods).
func (s *Schedule) Planner(siteID string) *SurveyPlanner {
	if s.planners == nil {
		return nil
	}
	return s.planners[siteID]
}

// FlagSite registers a flagged site for follow-up, due ReportingDelay days
// from the flag date. Multiple simultaneous flags on one site never
// duplicate the queue entry.
func (s *Schedule) FlagSite(site *Site, flagDate time.Time, rateAtSite float64) {
	if s.sitesInQueue[site.ID] {
		return
	}
	s.sitesInQueue[site.ID] = true
	s.pending = append(s.pending, pendingFollowUp{
		site:    site,
		dueDate: Midnight(flagDate).AddDate(0, 0, s.ReportingDelay),
		rate:    rateAtSite,
	})
}

// QueuedSiteIDs reports which sites are queued or pending (for tests).
func (s *Schedule) QueuedSiteIDs() map[string]bool {
	return s.sitesInQueue
}

func (s *Schedule) push(item *WorkItem) {
	item.seq = s.seq
	s.seq++
	heap.Push(&s.queue, item)
}

// GetWorkplan computes the day's due sites and pops them in priority order.
// Returns an empty workplan (not an error) when nothing is due.
func (s *Schedule) GetWorkplan(date time.Time) *Workplan {
	date = Midnight(date)

	if s.FollowUp {
		// Move matured follow-ups into the queue.
		var still []pendingFollowUp
		for _, p := range s.pending {
			if !p.dueDate.After(date) {
				s.push(&WorkItem{
					Site:       p.site,
					Report:     &SiteSurveyReport{SiteID: p.site.ID, Method: s.Method},
					RateAtSite: p.rate,
					tier:       DefaultSurveyPriority,
				})
			} else {
				still = append(still, p)
			}
		}
		s.pending = still
	} else {
		for _, site := range s.sites {
			planner := s.planners[site.ID]
			if planner == nil || !planner.DueOn(date) || s.sitesInQueue[site.ID] {
				continue
			}
			s.sitesInQueue[site.ID] = true
			s.push(&WorkItem{
				Site:    site,
				Planner: planner,
				Report:  &SiteSurveyReport{SiteID: site.ID, Method: s.Method},
				tier:    DefaultSurveyPriority,
			})
		}
	}

	wp := &Workplan{Method: s.Method, Date: date}
	for s.queue.Len() > 0 {
		wp.Items = append(wp.Items, heap.Pop(&s.queue).(*WorkItem))
	}
	if len(wp.Items) > 0 {
		logrus.Debugf("[%s] workplan for %s: %d site(s)", s.Method, date.Format("2006-01-02"), len(wp.Items))
	}
	return wp
}

// Update reconciles the workplan after deployment: completed items leave the
// queue, partially surveyed items resume tomorrow at the highest priority,
// and everything else is requeued as previously-queued. Deferred sites are
// never lost.
func (s *Schedule) Update(wp *Workplan) {
	for _, item := range wp.Items {
		report := item.Report
		switch {
		case report.SurveyComplete:
			delete(s.sitesInQueue, item.Site.ID)
			if item.Planner != nil {
				item.Planner.MarkCompleted(wp.Date)
			}
		case report.SurveyInProgress:
			if item.Planner != nil {
				item.Planner.BeginRollover()
			}
			item.tier = UnfinishedSurveyHighestPriority
			s.push(item)
		default:
			item.tier = QueuedSurveyPriority
			s.push(item)
		}
	}
}
