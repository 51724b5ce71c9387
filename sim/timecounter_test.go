package sim

import (
	"testing"
	"time"
)

func TestTimeCounter_NextDay_AdvancesDateAndTimestep(t *testing.T) {
	// GIVEN a counter at 2025-12-31
	tc := NewTimeCounter(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))

	// WHEN it advances one day
	tc.NextDay()

	// THEN timestep and date move together, crossing the year boundary
	if tc.Timestep != 1 {
		t.Errorf("Timestep = %d, want 1", tc.Timestep)
	}
	if tc.Year() != 2026 || tc.CurrentDate.Month() != time.January || tc.CurrentDate.Day() != 1 {
		t.Errorf("CurrentDate = %v, want 2026-01-01", tc.CurrentDate)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 14 {
		t.Errorf("DaysBetween = %d, want 14", got)
	}
	if got := DaysBetween(b, a); got != -14 {
		t.Errorf("reverse DaysBetween = %d, want -14", got)
	}
}
