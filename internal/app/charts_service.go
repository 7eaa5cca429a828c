package app

import (
	"context"
	"errors"
	"time"

	"fitmate/internal/domain"
)

// MaxChartDays caps the chart window.
const MaxChartDays = 366

var errBadUnit = errors.New("unit must be \"kg\" or \"lb\"")

// ChartsService serves chart data. Per-day data is read from the engine
// snapshot only, never recomputed from the stores.
type ChartsService struct {
	engine   *Engine
	weights  WeightSource
	firstDay time.Weekday
	now      func() time.Time
}

// NewChartsService creates a ChartsService. firstDay sets the first day of
// the week used for weekly averages.
func NewChartsService(engine *Engine, weights WeightSource, firstDay time.Weekday) *ChartsService {
	return &ChartsService{engine: engine, weights: weights, firstDay: firstDay, now: time.Now}
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day           string       `json:"day"`
	TotalCalories int          `json:"totalCalories"`
	FoodCount     int          `json:"foodCount"`
	Weight        *WeightPoint `json:"weight"`
}

// WeightPoint is the optional weight value within a DayPoint.
type WeightPoint struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func clampDays(days int) int {
	if days <= 0 {
		return DefaultRecentDays
	}
	if days > MaxChartDays {
		return MaxChartDays
	}
	return days
}

// window returns the snapshot records whose day falls in the last days
// calendar days, today included.
func (s *ChartsService) window(days int) []domain.DailyRecord {
	loc := s.engine.Location()
	from := domain.DayStart(s.now(), loc, -(days - 1))

	records := s.engine.Snapshot().Records
	out := make([]domain.DailyRecord, 0, len(records))
	for _, r := range records {
		if !r.Day.Before(from) {
			out = append(out, r)
		}
	}
	return out
}

// GetDaily returns the days with activity within the last days days, with
// weights converted to unit.
func (s *ChartsService) GetDaily(ctx context.Context, days int, unit string) ([]DayPoint, error) {
	if !domain.ValidUnit(unit) {
		return nil, errBadUnit
	}
	days = clampDays(days)

	records := s.window(days)
	points := make([]DayPoint, 0, len(records))
	for _, r := range records {
		p := DayPoint{
			Day:           r.Day.Format("2006-01-02"),
			TotalCalories: r.TotalCalories,
			FoodCount:     len(r.Foods),
		}
		if r.Weight != nil {
			p.Weight = &WeightPoint{Value: domain.ConvertWeight(r.Weight.Weight, domain.UnitKg, unit), Unit: unit}
		}
		points = append(points, p)
	}
	return points, nil
}

// GetWeekly returns weekly average weights over every stored entry,
// converted to unit.
func (s *ChartsService) GetWeekly(ctx context.Context, unit string) ([]WeekAverage, error) {
	if !domain.ValidUnit(unit) {
		return nil, errBadUnit
	}
	all, err := s.weights.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	weeks := WeeklyAverages(all, s.engine.Location(), s.firstDay)
	for i := range weeks {
		weeks[i].Average = domain.ConvertWeight(weeks[i].Average, domain.UnitKg, unit)
	}
	return weeks, nil
}

// Balance returns the calorie balance of each active day in the window
// against the target derived from p.
func (s *ChartsService) Balance(ctx context.Context, p domain.Profile, days int) ([]DayBalance, error) {
	target, err := domain.DailyCalorieTarget(p)
	if err != nil {
		return nil, err
	}
	return NetCalories(s.window(clampDays(days)), target), nil
}
