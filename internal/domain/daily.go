package domain

import "time"

// DailyRecord is the derived per-calendar-day view. It is produced by the
// aggregation engine and never persisted.
type DailyRecord struct {
	Day           time.Time    `json:"day"`
	Weight        *WeightEntry `json:"weight"`
	Foods         []FoodEntry  `json:"foods"`
	TotalCalories int          `json:"totalCalories"`
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	return DayStart(t, loc, 0)
}

// DayStart returns midnight of the calendar day offset days away from the
// day of t in loc. The date is computed on the calendar, not by adding
// durations, so every instant of one day maps to the same value even where
// a clock change skips midnight.
func DayStart(t time.Time, loc *time.Location, offset int) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, loc)
}
