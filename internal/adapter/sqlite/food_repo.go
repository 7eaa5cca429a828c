package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"fitmate/internal/domain"
)

// SaveFood inserts a new food entry.
func (d *DB) SaveFood(ctx context.Context, e domain.FoodEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO foods(id, name, calories, eaten_at, meal, fat, carbs, protein, seq) VALUES(?, ?, ?, ?, ?, ?, ?, ?, "+nextSeq("foods")+");",
		e.ID, e.Name, e.Calories, toNanos(e.Time), int64(e.Meal), e.Fat, e.Carbs, e.Protein,
	)
	if err != nil {
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

// DeleteFood removes a food entry by ID.
func (d *DB) DeleteFood(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM foods WHERE id = ?;", id)
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
			at   int64
			meal sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Calories, &at, &meal, &e.Fat, &e.Carbs, &e.Protein, &e.Seq); err != nil {
			return nil, err
		}
		var raw *int64
		if meal.Valid {
			raw = &meal.Int64
		}
		if e.Meal, err = domain.MigrateMealType(domain.FoodSchemaCurrent, raw); err != nil {
			return nil, fmt.Errorf("food %s: %w", e.ID, err)
		}
		e.Time = fromNanos(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nextSeq is a subquery yielding the next write sequence of table. The
// single connection serialises writers, so the value is unique.
func nextSeq(table string) string {
	return "(SELECT COALESCE(MAX(seq), 0) + 1 FROM " + table + ")"
}
