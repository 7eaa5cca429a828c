package domain

import "fmt"

// Food schema versions. Version 1 stored no meal category at all; version 2
// stores the MealType raw value. Version 3 adds the write sequence to both
// entry tables and leaves the meal column as in version 2.
const (
	FoodSchemaV1      = 1
	FoodSchemaV2      = 2
	FoodSchemaV3      = 3
	FoodSchemaCurrent = FoodSchemaV3
)

// LegacyMealDefault is assigned to version 1 food rows, which carry no meal
// category.
const LegacyMealDefault = MealBreakfast

// MigrateMealType resolves the meal category of a stored food row written
// under schemaVersion. raw is nil when the column was absent or NULL.
func MigrateMealType(schemaVersion int, raw *int64) (MealType, error) {
	switch schemaVersion {
	case FoodSchemaV1:
		return LegacyMealDefault, nil
	case FoodSchemaV2, FoodSchemaV3:
		if raw == nil {
			return 0, fmt.Errorf("%w: missing meal type", ErrInvalidEntry)
		}
		m := MealType(*raw)
		if !m.Valid() {
			return 0, fmt.Errorf("%w: meal type %d", ErrInvalidEntry, *raw)
		}
		return m, nil
	default:
		return 0, fmt.Errorf("unsupported food schema version %d", schemaVersion)
	}
}
