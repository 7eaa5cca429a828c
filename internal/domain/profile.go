package domain

import "fmt"

// Sex selects the BMR formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel scales BMR into daily energy expenditure.
type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

// DietDeficitKcal is subtracted from maintenance calories for weight loss.
const DietDeficitKcal = 500

// Profile holds the body metrics used for the daily calorie target.
type Profile struct {
	Age      int           `json:"age"`
	WeightKg float64       `json:"weightKg"`
	HeightCm float64       `json:"heightCm"`
	Sex      Sex           `json:"sex"`
	Activity ActivityLevel `json:"activity"`
}

func (a ActivityLevel) multiplier() (float64, bool) {
	switch a {
	case ActivityLow:
		return 1.2, true
	case ActivityModerate:
		return 1.55, true
	case ActivityHigh:
		return 1.9, true
	}
	return 0, false
}

// DailyCalorieTarget returns the Harris-Benedict maintenance calories for p
// minus DietDeficitKcal, truncated to whole kilocalories.
func DailyCalorieTarget(p Profile) (int, error) {
	if p.Age <= 0 || p.WeightKg <= 0 || p.HeightCm <= 0 {
		return 0, fmt.Errorf("%w: age, weight and height must be > 0", ErrInvalidEntry)
	}
	mult, ok := p.Activity.multiplier()
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidEntry, p.Activity)
	}

	var bmr float64
	switch p.Sex {
	case SexMale:
		bmr = 88.362 + 13.397*p.WeightKg + 4.799*p.HeightCm - 5.677*float64(p.Age)
	case SexFemale:
		bmr = 447.593 + 9.247*p.WeightKg + 3.098*p.HeightCm - 4.330*float64(p.Age)
	default:
		return 0, fmt.Errorf("%w: unknown sex %q", ErrInvalidEntry, p.Sex)
	}
	return int(bmr*mult - DietDeficitKcal), nil
}
