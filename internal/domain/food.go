package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MealType is the closed set of meal categories a food entry belongs to.
type MealType int

const (
	MealBreakfast MealType = iota
	MealLunch
	MealDinner
	MealSnack
)

var mealNames = [...]string{"breakfast", "lunch", "dinner", "snack"}

// Valid reports whether m is one of the known meal categories.
func (m MealType) Valid() bool {
	return m >= MealBreakfast && m <= MealSnack
}

func (m MealType) String() string {
	if !m.Valid() {
		return fmt.Sprintf("MealType(%d)", int(m))
	}
	return mealNames[m]
}

// ParseMealType maps a case-insensitive meal name to its MealType.
func ParseMealType(s string) (MealType, error) {
	for i, name := range mealNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return MealType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown meal type %q", ErrInvalidEntry, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m MealType) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: meal type %d", ErrInvalidEntry, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MealType) UnmarshalText(b []byte) error {
	v, err := ParseMealType(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// FoodEntry represents a single food consumption event.
type FoodEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Calories int       `json:"calories"`
	Time     time.Time `json:"time"`
	Meal     MealType  `json:"meal"`
	Fat      float64   `json:"fat"`
	Carbs    float64   `json:"carbs"`
	Protein  float64   `json:"protein"`
	Seq      int64     `json:"-"`
}

// OccurredAt returns the consumption timestamp.
func (e FoodEntry) OccurredAt() time.Time { return e.Time }

// WrittenAfter reports whether e orders after o: later timestamp first,
// then later write.
func (e FoodEntry) WrittenAfter(o FoodEntry) bool { return writtenAfter(e.Time, e.Seq, o.Time, o.Seq) }

// FoodRepository is the port for food persistence. Food entries are not
// updated in place.
type FoodRepository interface {
	SaveFood(ctx context.Context, e FoodEntry) error
	DeleteFood(ctx context.Context, id string) error
	ListFoods(ctx context.Context) ([]FoodEntry, error)
}
