package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitmate/internal/domain"
)

// schemaV1 is the original layout. foods has no meal column until the
// version 2 migration adds it. Timestamps are stored as UTC unix nanoseconds.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS weights (
    id TEXT PRIMARY KEY,
    weight REAL NOT NULL,
    recorded_at INTEGER NOT NULL,
    note TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS foods (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    calories INTEGER NOT NULL,
    eaten_at INTEGER NOT NULL,
    fat REAL NOT NULL DEFAULT 0,
    carbs REAL NOT NULL DEFAULT 0,
    protein REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_weights_recorded_at ON weights(recorded_at);
CREATE INDEX IF NOT EXISTS idx_foods_eaten_at ON foods(eaten_at);
`

func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	version, err := d.SchemaVersion(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		version = domain.FoodSchemaV1
		if _, err := d.sql.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES(?);", version); err != nil {
			return fmt.Errorf("migrate: init schema_version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("migrate: read schema_version: %w", err)
	}

	if version > domain.FoodSchemaCurrent {
		return fmt.Errorf("migrate: database schema version %d is newer than supported %d", version, domain.FoodSchemaCurrent)
	}
	if version < domain.FoodSchemaV2 {
		if err := d.migrateMealType(ctx); err != nil {
			return fmt.Errorf("migrate: v1->v2: %w", err)
		}
	}
	if version < domain.FoodSchemaV3 {
		if err := d.migrateWriteSeq(ctx); err != nil {
			return fmt.Errorf("migrate: v2->v3: %w", err)
		}
	}
	return nil
}

// migrateMealType adds the meal column and fills existing rows with the
// legacy default, in one transaction.
func (d *DB) migrateMealType(ctx context.Context) error {
	legacy, err := domain.MigrateMealType(domain.FoodSchemaV1, nil)
	if err != nil {
		return err
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "ALTER TABLE foods ADD COLUMN meal INTEGER;"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE foods SET meal = ? WHERE meal IS NULL;", int64(legacy)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE schema_version SET version = ?;", domain.FoodSchemaV2); err != nil {
		return err
	}
	return tx.Commit()
}

// migrateWriteSeq adds the seq column to both entry tables. Existing rows
// take their rowid, which follows insertion order.
func (d *DB) migrateWriteSeq(ctx context.Context) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmts := []string{
		"ALTER TABLE weights ADD COLUMN seq INTEGER NOT NULL DEFAULT 0;",
		"ALTER TABLE foods ADD COLUMN seq INTEGER NOT NULL DEFAULT 0;",
		"UPDATE weights SET seq = rowid;",
		"UPDATE foods SET seq = rowid;",
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "UPDATE schema_version SET version = ?;", domain.FoodSchemaV3); err != nil {
		return err
	}
	return tx.Commit()
}
