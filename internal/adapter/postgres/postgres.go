// Package postgres implements the weight and food repositories on
// PostgreSQL for server deployments.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"fitmate/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.WeightRepository = (*DB)(nil)
var _ domain.FoodRepository = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// SchemaVersion returns the stored schema version.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := d.sql.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1;").Scan(&v)
	return v, err
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);",
		"CREATE TABLE IF NOT EXISTS weights (id TEXT PRIMARY KEY, weight DOUBLE PRECISION NOT NULL, recorded_at TIMESTAMPTZ NOT NULL, note TEXT NOT NULL DEFAULT '');",
		"CREATE INDEX IF NOT EXISTS idx_weights_recorded_at ON weights(recorded_at);",
		"CREATE TABLE IF NOT EXISTS foods (id TEXT PRIMARY KEY, name TEXT NOT NULL, calories INTEGER NOT NULL, eaten_at TIMESTAMPTZ NOT NULL, fat DOUBLE PRECISION NOT NULL DEFAULT 0, carbs DOUBLE PRECISION NOT NULL DEFAULT 0, protein DOUBLE PRECISION NOT NULL DEFAULT 0);",
		"CREATE INDEX IF NOT EXISTS idx_foods_eaten_at ON foods(eaten_at);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	version, err := d.SchemaVersion(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		version = domain.FoodSchemaV1
		if _, err := d.sql.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES($1);", version); err != nil {
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

// migrateMealType adds the meal column and assigns the legacy default to
// rows written before it existed.
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

	stmts := []struct {
		q    string
		args []any
	}{
		{"ALTER TABLE foods ADD COLUMN IF NOT EXISTS meal INTEGER;", nil},
		{"UPDATE foods SET meal = $1 WHERE meal IS NULL;", []any{int64(legacy)}},
		{"UPDATE schema_version SET version = $1;", []any{domain.FoodSchemaV2}},
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.q, s.args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// migrateWriteSeq adds the seq column to both entry tables, drawing values
// from one shared sequence. Existing rows are numbered in timestamp order.
func (d *DB) migrateWriteSeq(ctx context.Context) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmts := []struct {
		q    string
		args []any
	}{
		{"CREATE SEQUENCE IF NOT EXISTS entry_write_seq;", nil},
		{"ALTER TABLE weights ADD COLUMN IF NOT EXISTS seq BIGINT;", nil},
		{"ALTER TABLE foods ADD COLUMN IF NOT EXISTS seq BIGINT;", nil},
		{"UPDATE weights w SET seq = o.n FROM (SELECT id, nextval('entry_write_seq') AS n FROM (SELECT id FROM weights ORDER BY recorded_at, id) s) o WHERE w.id = o.id;", nil},
		{"UPDATE foods f SET seq = o.n FROM (SELECT id, nextval('entry_write_seq') AS n FROM (SELECT id FROM foods ORDER BY eaten_at, id) s) o WHERE f.id = o.id;", nil},
		{"ALTER TABLE weights ALTER COLUMN seq SET DEFAULT nextval('entry_write_seq'), ALTER COLUMN seq SET NOT NULL;", nil},
		{"ALTER TABLE foods ALTER COLUMN seq SET DEFAULT nextval('entry_write_seq'), ALTER COLUMN seq SET NOT NULL;", nil},
		{"UPDATE schema_version SET version = $1;", []any{domain.FoodSchemaV3}},
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.q, s.args...); err != nil {
			return err
		}
	}
	return tx.Commit()
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
