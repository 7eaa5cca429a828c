package postgres

import (
	"context"
	"fmt"

	"fitmate/internal/domain"
)

// SaveWeight inserts a new weight entry.
func (d *DB) SaveWeight(ctx context.Context, e domain.WeightEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO weights(id, weight, recorded_at, note) VALUES($1, $2, $3, $4);",
		e.ID, e.Weight, e.Date.UTC(), e.Note,
	)
	if err != nil {
		return fmt.Errorf("insert weight: %w", err)
	}
	return nil
}

// UpdateWeight overwrites the entry with the same ID.
func (d *DB) UpdateWeight(ctx context.Context, e domain.WeightEntry) error {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE weights SET weight=$1, recorded_at=$2, note=$3, seq=nextval('entry_write_seq') WHERE id=$4;",
		e.Weight, e.Date.UTC(), e.Note, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update weight: %w", err)
	}
	return requireAffected(res)
}

// DeleteWeight removes a weight entry by ID.
func (d *DB) DeleteWeight(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM weights WHERE id=$1;", id)
	if err != nil {
		return fmt.Errorf("delete weight: %w", err)
	}
	return requireAffected(res)
}

// ListWeights returns every weight entry, newest first. Equal timestamps
// list the most recently written entry first.
func (d *DB) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, weight, recorded_at, note, seq FROM weights ORDER BY recorded_at DESC, seq DESC;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.WeightEntry{}
	for rows.Next() {
		var e domain.WeightEntry
		if err := rows.Scan(&e.ID, &e.Weight, &e.Date, &e.Note, &e.Seq); err != nil {
			return nil, err
		}
		e.Date = e.Date.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
