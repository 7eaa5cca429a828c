package app

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"fitmate/internal/domain"
)

// DefaultRecentDays is the window RecentEntries uses when days is not set.
const DefaultRecentDays = 30

// CSVHeader is the first line written by ExportCSV.
const CSVHeader = "date,weight_kg,note"

// csvDateLayout is the timestamp format of exported rows.
const csvDateLayout = "2006-01-02 15:04:05"

// Timestamped is implemented by every entry type.
type Timestamped interface {
	OccurredAt() time.Time
}

// RecentEntries returns the entries at or after now minus days calendar
// days, keeping input order. days <= 0 selects DefaultRecentDays.
func RecentEntries[E Timestamped](entries []E, days int, now time.Time, loc *time.Location) []E {
	if days <= 0 {
		days = DefaultRecentDays
	}
	if loc == nil {
		loc = time.Local
	}
	cutoff := now.In(loc).AddDate(0, 0, -days)

	out := make([]E, 0, len(entries))
	for _, e := range entries {
		if !e.OccurredAt().Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// EntriesBetween returns the entries in the half-open range [from, to),
// keeping input order. A zero bound leaves that side open.
func EntriesBetween[E Timestamped](entries []E, from, to time.Time) []E {
	out := make([]E, 0, len(entries))
	for _, e := range entries {
		at := e.OccurredAt()
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && !at.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sortedByDate(weights []domain.WeightEntry) []domain.WeightEntry {
	sorted := slices.Clone(weights)
	slices.SortFunc(sorted, func(a, b domain.WeightEntry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return sorted
}

// NetChange returns the latest weight minus the earliest weight. Positive
// means weight was gained. Fewer than two entries yield 0.
func NetChange(weights []domain.WeightEntry) float64 {
	if len(weights) < 2 {
		return 0
	}
	sorted := sortedByDate(weights)
	return sorted[len(sorted)-1].Weight - sorted[0].Weight
}

// WeekAverage is the mean weight of one calendar week.
type WeekAverage struct {
	WeekStart time.Time `json:"weekStart"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
}

// WeekStart returns midnight of the first day of the week containing t.
func WeekStart(t time.Time, loc *time.Location, firstDay time.Weekday) time.Time {
	day := domain.StartOfDay(t, loc)
	offset := (int(day.Weekday()) - int(firstDay) + 7) % 7
	return domain.DayStart(day, loc, -offset)
}

// WeeklyAverages groups weights by calendar week and returns the mean per
// week, ascending. Weeks without entries are absent.
func WeeklyAverages(weights []domain.WeightEntry, loc *time.Location, firstDay time.Weekday) []WeekAverage {
	type acc struct {
		sum float64
		n   int
	}
	buckets := make(map[time.Time]*acc)
	for _, w := range weights {
		ws := WeekStart(w.Date, loc, firstDay)
		a, ok := buckets[ws]
		if !ok {
			a = &acc{}
			buckets[ws] = a
		}
		a.sum += w.Weight
		a.n++
	}

	out := make([]WeekAverage, 0, len(buckets))
	for ws, a := range buckets {
		out = append(out, WeekAverage{WeekStart: ws, Average: a.sum / float64(a.n), Count: a.n})
	}
	slices.SortFunc(out, func(a, b WeekAverage) int { return a.WeekStart.Compare(b.WeekStart) })
	return out
}

var noteEscaper = strings.NewReplacer(",", "、", "\r\n", " ", "\n", " ", "\r", " ")

// ExportCSV renders weights as a three-column table, oldest first. Commas
// and line breaks inside notes are replaced so every row keeps exactly three
// columns.
func ExportCSV(weights []domain.WeightEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')
	for _, w := range sortedByDate(weights) {
		b.WriteString(w.Date.In(loc).Format(csvDateLayout))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Weight, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(noteEscaper.Replace(w.Note))
		b.WriteByte('\n')
	}
	return b.String()
}

var calorieRe = regexp.MustCompile(`(?i)(\d+)\s*(kcal|calories?|カロリー)`)

// EstimateCaloriesFromText extracts the first integer directly followed by a
// calorie unit from OCR text. ok is false when nothing matches.
func EstimateCaloriesFromText(text string) (kcal int, ok bool) {
	m := calorieRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DayBalance compares one day's intake with the calorie target.
type DayBalance struct {
	Day       time.Time `json:"day"`
	Consumed  int       `json:"consumed"`
	Target    int       `json:"target"`
	Remaining int       `json:"remaining"`
}

// NetCalories returns the calorie balance for every record against target.
func NetCalories(records []domain.DailyRecord, target int) []DayBalance {
	out := make([]DayBalance, 0, len(records))
	for _, r := range records {
		out = append(out, DayBalance{
			Day:       r.Day,
			Consumed:  r.TotalCalories,
			Target:    target,
			Remaining: target - r.TotalCalories,
		})
	}
	return out
}
