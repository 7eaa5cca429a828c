package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fitmate/internal/domain"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "fitmate.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 4, 7, 30, 0, 123, time.UTC)

	t.Run("fresh database is at current schema", func(t *testing.T) {
		v, err := store.SchemaVersion(ctx)
		if err != nil {
			t.Fatalf("SchemaVersion failed: %v", err)
		}
		if v != domain.FoodSchemaCurrent {
			t.Errorf("expected version %d, got %d", domain.FoodSchemaCurrent, v)
		}
	})

	t.Run("weights round trip newest first", func(t *testing.T) {
		if err := store.SaveWeight(ctx, domain.WeightEntry{ID: "w1", Weight: 70.5, Date: base, Note: "morning"}); err != nil {
			t.Fatalf("SaveWeight failed: %v", err)
		}
		if err := store.SaveWeight(ctx, domain.WeightEntry{ID: "w2", Weight: 70.1, Date: base.Add(24 * time.Hour)}); err != nil {
			t.Fatalf("SaveWeight failed: %v", err)
		}

		got, err := store.ListWeights(ctx)
		if err != nil {
			t.Fatalf("ListWeights failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "w2" || got[1].ID != "w1" {
			t.Fatalf("unexpected order: %+v", got)
		}
		if !got[1].Date.Equal(base) || got[1].Note != "morning" {
			t.Errorf("unexpected entry: %+v", got[1])
		}
	})

	t.Run("duplicate weight ID is rejected", func(t *testing.T) {
		if err := store.SaveWeight(ctx, domain.WeightEntry{ID: "w1", Weight: 1, Date: base}); err == nil {
			t.Error("expected error for duplicate ID")
		}
	})

	t.Run("update and delete weight", func(t *testing.T) {
		if err := store.UpdateWeight(ctx, domain.WeightEntry{ID: "w1", Weight: 69.9, Date: base, Note: "fixed"}); err != nil {
			t.Fatalf("UpdateWeight failed: %v", err)
		}
		if err := store.UpdateWeight(ctx, domain.WeightEntry{ID: "missing", Weight: 1, Date: base}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteWeight(ctx, "w2"); err != nil {
			t.Fatalf("DeleteWeight failed: %v", err)
		}
		if err := store.DeleteWeight(ctx, "w2"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		got, _ := store.ListWeights(ctx)
		if len(got) != 1 || got[0].Weight != 69.9 || got[0].Note != "fixed" {
			t.Errorf("unexpected weights: %+v", got)
		}
	})

	t.Run("foods keep meal and macros", func(t *testing.T) {
		in := domain.FoodEntry{ID: "f1", Name: "onigiri", Calories: 180, Time: base, Meal: domain.MealLunch, Fat: 1.2, Carbs: 39, Protein: 3.5}
		if err := store.SaveFood(ctx, in); err != nil {
			t.Fatalf("SaveFood failed: %v", err)
		}

		got, err := store.ListFoods(ctx)
		if err != nil {
			t.Fatalf("ListFoods failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 food, got %d", len(got))
		}
		f := got[0]
		if f.Name != in.Name || f.Calories != in.Calories || f.Meal != in.Meal || !f.Time.Equal(in.Time) {
			t.Errorf("expected %+v, got %+v", in, f)
		}
		if f.Fat != in.Fat || f.Carbs != in.Carbs || f.Protein != in.Protein {
			t.Errorf("macros not preserved: %+v", f)
		}

		if err := store.DeleteFood(ctx, "f1"); err != nil {
			t.Fatalf("DeleteFood failed: %v", err)
		}
		if err := store.DeleteFood(ctx, "f1"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty lists are non-nil", func(t *testing.T) {
		got, err := store.ListFoods(ctx)
		if err != nil {
			t.Fatalf("ListFoods failed: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty slice, got %#v", got)
		}
	})
}

func TestMigrateLegacyFoods(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	ctx := context.Background()

	// Lay down a version 1 database by hand.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := raw.Exec(schemaV1); err != nil {
		t.Fatalf("create v1 schema: %v", err)
	}
	if _, err := raw.Exec("INSERT INTO schema_version(version) VALUES(1);"); err != nil {
		t.Fatalf("insert version: %v", err)
	}
	eaten := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	if _, err := raw.Exec("INSERT INTO foods(id, name, calories, eaten_at) VALUES('old', 'ramen', 500, ?);", eaten.UnixNano()); err != nil {
		t.Fatalf("insert legacy food: %v", err)
	}
	// Two legacy weights share a timestamp; "b" was written last.
	for _, id := range []string{"b0", "b"} {
		if _, err := raw.Exec("INSERT INTO weights(id, weight, recorded_at) VALUES(?, 70, ?);", id, eaten.UnixNano()); err != nil {
			t.Fatalf("insert legacy weight: %v", err)
		}
	}
	_ = raw.Close()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close() //nolint:errcheck

	v, err := store.SchemaVersion(ctx)
	if err != nil || v != domain.FoodSchemaCurrent {
		t.Fatalf("expected version %d, got %d (%v)", domain.FoodSchemaCurrent, v, err)
	}

	foods, err := store.ListFoods(ctx)
	if err != nil {
		t.Fatalf("ListFoods failed: %v", err)
	}
	if len(foods) != 1 {
		t.Fatalf("expected 1 food, got %d", len(foods))
	}
	if foods[0].Meal != domain.LegacyMealDefault {
		t.Errorf("expected legacy default meal, got %v", foods[0].Meal)
	}
	if !foods[0].Time.Equal(eaten) || foods[0].Calories != 500 {
		t.Errorf("unexpected food: %+v", foods[0])
	}

	weights, err := store.ListWeights(ctx)
	if err != nil {
		t.Fatalf("ListWeights failed: %v", err)
	}
	if len(weights) != 2 || weights[0].ID != "b" {
		t.Errorf("expected insertion order to survive migration, got %+v", weights)
	}
}

func TestSameTimestampListsLatestWriteFirst(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// IDs sort opposite to write order so ordering cannot come from the key.
	for _, id := range []string{"z", "a"} {
		if err := store.SaveWeight(ctx, domain.WeightEntry{ID: id, Weight: 70, Date: at}); err != nil {
			t.Fatalf("SaveWeight failed: %v", err)
		}
		if err := store.SaveFood(ctx, domain.FoodEntry{ID: id, Name: "tea", Time: at, Meal: domain.MealSnack}); err != nil {
			t.Fatalf("SaveFood failed: %v", err)
		}
	}

	weights, err := store.ListWeights(ctx)
	if err != nil {
		t.Fatalf("ListWeights failed: %v", err)
	}
	if len(weights) != 2 || weights[0].ID != "a" || weights[0].Seq <= weights[1].Seq {
		t.Errorf("expected latest write first, got %+v", weights)
	}
	foods, err := store.ListFoods(ctx)
	if err != nil {
		t.Fatalf("ListFoods failed: %v", err)
	}
	if len(foods) != 2 || foods[0].ID != "a" {
		t.Errorf("expected latest write first, got %+v", foods)
	}

	if err := store.UpdateWeight(ctx, domain.WeightEntry{ID: "z", Weight: 71, Date: at}); err != nil {
		t.Fatalf("UpdateWeight failed: %v", err)
	}
	weights, _ = store.ListWeights(ctx)
	if weights[0].ID != "z" || weights[0].Weight != 71 {
		t.Errorf("expected edited entry first, got %+v", weights)
	}
}

func TestInvalidStoredMealIsAnError(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()

	if _, err := store.sql.ExecContext(ctx,
		"INSERT INTO foods(id, name, calories, eaten_at, meal) VALUES('bad', 'x', 1, 0, 42);"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.ListFoods(ctx); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestNewerSchemaIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.sql.Exec("UPDATE schema_version SET version = 99;"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); err == nil {
		t.Error("expected error opening a newer schema")
	}
}
