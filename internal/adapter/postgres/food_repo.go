package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fitmate/internal/domain"
)

// SaveFood inserts a new food entry.
func (d *DB) SaveFood(ctx context.Context, e domain.FoodEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO foods(id, name, calories, eaten_at, meal, fat, carbs, protein) VALUES($1, $2, $3, $4, $5, $6, $7, $8);",
		e.ID, e.Name, e.Calories, e.Time.UTC(), int64(e.Meal), e.Fat, e.Carbs, e.Protein,
	)
	if err != nil {
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

// DeleteFood removes a food entry by ID.
func (d *DB) DeleteFood(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM foods WHERE id=$1;", id)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	return requireAffected(res)
}

// ListFoods returns every food entry, newest first.
func (d *DB) ListFoods(ctx context.Context) ([]domain.FoodEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, calories, eaten_at, meal, fat, carbs, protein, seq FROM foods ORDER BY eaten_at DESC, seq DESC;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.FoodEntry{}
	for rows.Next() {
		var (
			e    domain.FoodEntry
			meal sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Calories, &e.Time, &meal, &e.Fat, &e.Carbs, &e.Protein, &e.Seq); err != nil {
			return nil, err
		}
		var raw *int64
		if meal.Valid {
			raw = &meal.Int64
		}
		if e.Meal, err = domain.MigrateMealType(domain.FoodSchemaCurrent, raw); err != nil {
			return nil, fmt.Errorf("food %s: %w", e.ID, err)
		}
		e.Time = e.Time.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
