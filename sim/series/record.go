// Package series provides day-by-day output record types for LDAR program
// analysis. This package has no dependencies on sim/ — it stores pure data
// types that the excluded output/aggregation layer consumes.
package series

import "time"

// MethodDayRecord captures one monitoring method's activity on one day.
type MethodDayRecord struct {
	Method        string
	Tags          int
	RedundantTags int
	SitesVisited  int
	EffFlags      int
	RedundantFlags int
	MissedLeaks   int
	CostAccrued   float64
}

// DayRecord captures fleet-wide state at the end of one simulated day.
type DayRecord struct {
	Date          time.Time
	Timestep      int
	ActiveLeaks   int
	NewLeaks      int
	DailyEmittedKg float64
	Methods       map[string]MethodDayRecord
}

// EmissionRecord is the end-of-life summary for a single emission, kept for
// historical reporting after the emission leaves active tracking.
type EmissionRecord struct {
	ID             string
	SiteID         string
	TrueRate       float64
	MeasuredRate   float64
	Repairable     bool
	Status         string
	DaysActive     int
	StartDate      time.Time
	EndDate        time.Time
	Tagged         bool
	TaggedBy       string
	TagDate        time.Time
	InitDetectBy   string
	InitDetectDate time.Time
	RepairCost     float64
}
