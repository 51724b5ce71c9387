package sim

import "time"

// TimeCounter tracks the simulation calendar. Timestep is the zero-based day
// index since Start; CurrentDate is the matching calendar date (UTC midnight).
type TimeCounter struct {
	Start       time.Time
	CurrentDate time.Time
	Timestep    int
}

// NewTimeCounter creates a TimeCounter positioned at the start date.
func NewTimeCounter(start time.Time) *TimeCounter {
	start = Midnight(start)
	return &TimeCounter{Start: start, CurrentDate: start, Timestep: 0}
}

// NextDay advances the counter by exactly one day.
func (tc *TimeCounter) NextDay() {
	tc.Timestep++
	tc.CurrentDate = tc.CurrentDate.AddDate(0, 0, 1)
}

// Year returns the calendar year of the current date.
func (tc *TimeCounter) Year() int {
	return tc.CurrentDate.Year()
}

// Midnight truncates a time to UTC midnight. All simulation dates are
// normalized this way so date equality is exact.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (b after a is positive).
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}
