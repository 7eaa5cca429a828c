package sqlite

import (
	"context"
	"fmt"

	"fitmate/internal/domain"
)

// SaveWeight inserts a new weight entry.
func (d *DB) SaveWeight(ctx context.Context, e domain.WeightEntry) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO weights(id, weight, recorded_at, note, seq) VALUES(?, ?, ?, ?, "+nextSeq("weights")+");",
		e.ID, e.Weight, toNanos(e.Date), e.Note,
	)
	if err != nil {
		return fmt.Errorf("insert weight: %w", err)
	}
	return nil
}

// UpdateWeight overwrites the entry with the same ID and makes it the most
// recent write.
func (d *DB) UpdateWeight(ctx context.Context, e domain.WeightEntry) error {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE weights SET weight = ?, recorded_at = ?, note = ?, seq = "+nextSeq("weights")+" WHERE id = ?;",
		e.Weight, toNanos(e.Date), e.Note, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update weight: %w", err)
	}
	return requireAffected(res)
}

// DeleteWeight removes a weight entry by ID.
func (d *DB) DeleteWeight(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM weights WHERE id = ?;", id)
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
		var (
			e  domain.WeightEntry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.Weight, &at, &e.Note, &e.Seq); err != nil {
			return nil, err
		}
		e.Date = fromNanos(at)
		out = append(out, e)
	}
	return out, rows.Err()
}
