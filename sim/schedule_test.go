package sim

import (
	"testing"
	"time"
)

func testSite(id string) *Site {
	return NewSite(id, 54.0, -110.0, "default", 1, 1)
}

func TestSchedule_PriorityOrdering_TiersBeforeRate(t *testing.T) {
	// GIVEN a queue containing one unfinished-survey entry, one queued
	// entry, and one new entry with a higher rate than the queued entry
	s := NewSchedule("followup", nil, nil, true, 0)

	s.push(&WorkItem{
		Site: testSite("queued"), RateAtSite: 1.0, tier: QueuedSurveyPriority,
		Report: &SiteSurveyReport{SiteID: "queued"},
	})
	s.push(&WorkItem{
		Site: testSite("new-big"), RateAtSite: 50.0, tier: DefaultSurveyPriority,
		Report: &SiteSurveyReport{SiteID: "new-big"},
	})
	s.push(&WorkItem{
		Site: testSite("unfinished"), RateAtSite: 0.0, tier: UnfinishedSurveyHighestPriority,
		Report: &SiteSurveyReport{SiteID: "unfinished", SurveyInProgress: true},
	})

	// WHEN the day's workplan pops the queue
	wp := s.GetWorkplan(day(0))

	// THEN the unfinished entry comes first, then the queued entry (rate
	// ordering only applies within a tier), then the new entry
	want := []string{"unfinished", "queued", "new-big"}
	if len(wp.Items) != len(want) {
		t.Fatalf("workplan has %d items, want %d", len(wp.Items), len(want))
	}
	for i, id := range want {
		if wp.Items[i].Site.ID != id {
			t.Errorf("position %d: got %s, want %s", i, wp.Items[i].Site.ID, id)
		}
	}
}

func TestSchedule_RateOrdersWithinTier(t *testing.T) {
	// GIVEN two new follow-up entries with different rates
	s := NewSchedule("followup", nil, nil, true, 0)
	s.FlagSite(testSite("small"), day(0), 1.0)
	s.FlagSite(testSite("big"), day(0), 9.0)

	// WHEN popped
	wp := s.GetWorkplan(day(0))

	// THEN the larger detected rate is served first
	if wp.Items[0].Site.ID != "big" || wp.Items[1].Site.ID != "small" {
		t.Errorf("got order [%s %s], want [big small]",
			wp.Items[0].Site.ID, wp.Items[1].Site.ID)
	}
}

func TestSchedule_FollowUp_ReportingDelayAndDedup(t *testing.T) {
	// GIVEN a follow-up schedule with a 2-day reporting delay
	s := NewSchedule("followup", nil, nil, true, 2)
	site := testSite("flagged")

	// WHEN the site is flagged twice on the same day
	s.FlagSite(site, day(0), 3.0)
	s.FlagSite(site, day(0), 3.0)

	// THEN it is not due before the delay elapses
	if got := len(s.GetWorkplan(day(1)).Items); got != 0 {
		t.Fatalf("site due %d day(s) after flag, want none before reporting delay", got)
	}

	// AND exactly one entry matures at flag date + delay
	wp := s.GetWorkplan(day(2))
	if len(wp.Items) != 1 {
		t.Fatalf("workplan has %d items, want 1 (no duplicates)", len(wp.Items))
	}
	if wp.Items[0].Site.ID != "flagged" {
		t.Errorf("wrong site in workplan: %s", wp.Items[0].Site.ID)
	}
}

func TestSchedule_Update_RequeuesDeferredAndRollover(t *testing.T) {
	// GIVEN a workplan where one site completed, one rolled over, and one
	// was never reached
	s := NewSchedule("ogi", nil, nil, true, 0)
	s.FlagSite(testSite("done"), day(0), 1)
	s.FlagSite(testSite("partial"), day(0), 1)
	s.FlagSite(testSite("deferred"), day(0), 1)
	wp := s.GetWorkplan(day(0))

	for _, item := range wp.Items {
		switch item.Site.ID {
		case "done":
			item.Report.SurveyComplete = true
		case "partial":
			item.Report.SurveyInProgress = true
			item.Report.TimeSurveyed = 30
		}
	}

	// WHEN the schedule reconciles the day
	s.Update(wp)

	// THEN tomorrow's workplan holds the rollover first, then the deferred
	// site; the completed site is gone. Deferred sites are never lost.
	next := s.GetWorkplan(day(1))
	if len(next.Items) != 2 {
		t.Fatalf("next workplan has %d items, want 2", len(next.Items))
	}
	if next.Items[0].Site.ID != "partial" {
		t.Errorf("rollover not served first: got %s", next.Items[0].Site.ID)
	}
	if next.Items[0].Report.TimeSurveyed != 30 {
		t.Error("rollover lost its partial survey time")
	}
	if next.Items[1].Site.ID != "deferred" {
		t.Errorf("deferred site not requeued: got %s", next.Items[1].Site.ID)
	}
	if s.QueuedSiteIDs()["done"] {
		t.Error("completed site still marked queued")
	}
}

func TestSchedule_Scheduled_DueScanHonorsPlanner(t *testing.T) {
	// GIVEN a scheduled method over two sites, one due today
	siteA, siteB := testSite("a"), testSite("b")
	start := day(0)
	end := start.AddDate(1, 0, 0)
	planners := map[string]*SurveyPlanner{
		"a": NewSurveyPlanner("a", 12, nil, nil, start, end),
		"b": NewSurveyPlanner("b", 12, []time.Month{time.July}, nil, start, end),
	}
	s := NewSchedule("ogi", []*Site{siteA, siteB}, planners, false, 0)

	// WHEN the Jan 1 workplan is computed
	wp := s.GetWorkplan(day(0))

	// THEN only the unrestricted site appears (the other waits for July)
	if len(wp.Items) != 1 || wp.Items[0].Site.ID != "a" {
		t.Fatalf("workplan = %+v, want only site a", wp.Items)
	}
}
