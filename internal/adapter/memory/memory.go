// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"fitmate/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu      sync.Mutex
	seq     int64
	weights []domain.WeightEntry
	foods   []domain.FoodEntry
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.WeightRepository = (*DB)(nil)
var _ domain.FoodRepository = (*DB)(nil)

// --- WeightRepository ---

// SaveWeight appends a weight entry.
func (db *DB) SaveWeight(ctx context.Context, e domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if slices.ContainsFunc(db.weights, func(w domain.WeightEntry) bool { return w.ID == e.ID }) {
		return fmt.Errorf("weight %s already exists", e.ID)
	}
	e.Date = e.Date.UTC()
	e.Seq = db.nextSeq()
	db.weights = append(db.weights, e)
	return nil
}

// UpdateWeight replaces the entry with the same ID.
func (db *DB) UpdateWeight(ctx context.Context, e domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := slices.IndexFunc(db.weights, func(w domain.WeightEntry) bool { return w.ID == e.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	e.Date = e.Date.UTC()
	e.Seq = db.nextSeq()
	db.weights[i] = e
	return nil
}

// DeleteWeight removes a weight entry by ID.
func (db *DB) DeleteWeight(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := slices.IndexFunc(db.weights, func(w domain.WeightEntry) bool { return w.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	db.weights = slices.Delete(db.weights, i, i+1)
	return nil
}

// ListWeights returns a copy of all weight entries, newest first. Entries
// with the same timestamp list the most recently written first.
func (db *DB) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := slices.Clone(db.weights)
	slices.SortFunc(result, func(a, b domain.WeightEntry) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Seq, a.Seq)
	})
	if result == nil {
		result = []domain.WeightEntry{}
	}
	return result, nil
}

// nextSeq must be called with mu held.
func (db *DB) nextSeq() int64 {
	db.seq++
	return db.seq
}

// --- FoodRepository ---

// SaveFood appends a food entry.
func (db *DB) SaveFood(ctx context.Context, e domain.FoodEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if slices.ContainsFunc(db.foods, func(f domain.FoodEntry) bool { return f.ID == e.ID }) {
		return fmt.Errorf("food %s already exists", e.ID)
	}
	e.Time = e.Time.UTC()
	e.Seq = db.nextSeq()
	db.foods = append(db.foods, e)
	return nil
}

// DeleteFood removes a food entry by ID.
func (db *DB) DeleteFood(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := slices.IndexFunc(db.foods, func(f domain.FoodEntry) bool { return f.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	db.foods = slices.Delete(db.foods, i, i+1)
	return nil
}

// ListFoods returns a copy of all food entries, newest first.
func (db *DB) ListFoods(ctx context.Context) ([]domain.FoodEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := slices.Clone(db.foods)
	slices.SortFunc(result, func(a, b domain.FoodEntry) int {
		if c := b.Time.Compare(a.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.Seq, a.Seq)
	})
	if result == nil {
		result = []domain.FoodEntry{}
	}
	return result, nil
}
