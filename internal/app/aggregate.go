package app

import (
	"cmp"
	"slices"
	"time"

	"fitmate/internal/domain"
)

// Rebuild derives the per-day view from the complete contents of both entry
// collections. The result holds exactly one record per calendar day (in loc)
// that has at least one entry, sorted ascending by day. For each day the
// latest weight entry wins and foods are ordered by time; equal timestamps
// fall back to the store's write sequence. Rebuild is pure; a nil loc means
// time.Local.
func Rebuild(weights []domain.WeightEntry, foods []domain.FoodEntry, loc *time.Location) []domain.DailyRecord {
	if loc == nil {
		loc = time.Local
	}

	foodsByDay := make(map[time.Time][]domain.FoodEntry)
	for _, f := range foods {
		day := domain.StartOfDay(f.Time, loc)
		foodsByDay[day] = append(foodsByDay[day], f)
	}

	latestByDay := make(map[time.Time]domain.WeightEntry)
	for _, w := range weights {
		day := domain.StartOfDay(w.Date, loc)
		if cur, ok := latestByDay[day]; !ok || w.WrittenAfter(cur) {
			latestByDay[day] = w
		}
	}

	days := make([]time.Time, 0, len(foodsByDay)+len(latestByDay))
	for day := range foodsByDay {
		days = append(days, day)
	}
	for day := range latestByDay {
		if _, ok := foodsByDay[day]; !ok {
			days = append(days, day)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	records := make([]domain.DailyRecord, 0, len(days))
	for _, day := range days {
		rec := domain.DailyRecord{Day: day}
		if w, ok := latestByDay[day]; ok {
			rec.Weight = &w
		}
		dayFoods := foodsByDay[day]
		if dayFoods == nil {
			dayFoods = []domain.FoodEntry{}
		}
		slices.SortFunc(dayFoods, compareFoods)
		rec.Foods = dayFoods
		for _, f := range dayFoods {
			rec.TotalCalories += f.Calories
		}
		records = append(records, rec)
	}
	return records
}

func compareFoods(a, b domain.FoodEntry) int {
	if c := a.Time.Compare(b.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

// cloneRecords deep-copies records so callers cannot reach engine-owned
// memory.
func cloneRecords(records []domain.DailyRecord) []domain.DailyRecord {
	out := make([]domain.DailyRecord, len(records))
	for i, r := range records {
		out[i] = r
		if r.Weight != nil {
			w := *r.Weight
			out[i].Weight = &w
		}
		out[i].Foods = slices.Clone(r.Foods)
	}
	return out
}
