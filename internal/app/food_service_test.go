package app_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitmate/internal/adapter/memory"
	"fitmate/internal/app"
	"fitmate/internal/domain"
)

type fakeLookup struct {
	lookupFn func(ctx context.Context, query string) (*domain.FoodEntry, error)
}

func (f *fakeLookup) Lookup(ctx context.Context, query string) (*domain.FoodEntry, error) {
	return f.lookupFn(ctx, query)
}

type fakeRecognizer struct {
	name       string
	confidence float64
	err        error
}

func (f *fakeRecognizer) RecognizeMenu(_ context.Context, _ []byte) (string, float64, error) {
	return f.name, f.confidence, f.err
}

func TestSaveFood_Validation(t *testing.T) {
	svc := app.NewFoodService(memory.New(), nil, nil)

	tests := []struct {
		name  string
		entry domain.FoodEntry
	}{
		{"empty name", domain.FoodEntry{Name: "  ", Calories: 100}},
		{"negative calories", domain.FoodEntry{Name: "rice", Calories: -1}},
		{"bad meal", domain.FoodEntry{Name: "rice", Calories: 1, Meal: domain.MealType(8)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), tc.entry)
			require.ErrorIs(t, err, domain.ErrInvalidEntry)
		})
	}
}

func TestSaveFood_AssignsDefaultsAndNotifies(t *testing.T) {
	svc := app.NewFoodService(memory.New(), nil, nil)
	ch, cancel := svc.Subscribe()
	defer cancel()

	saved, err := svc.Save(context.Background(), domain.FoodEntry{Name: " salad ", Calories: 150, Meal: domain.MealLunch})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.Time.IsZero())
	assert.Equal(t, "salad", saved.Name)

	select {
	case list := <-ch:
		require.Len(t, list, 1)
		assert.Equal(t, saved.ID, list[0].ID)
	default:
		t.Fatal("expected a notification after save")
	}

	require.NoError(t, svc.Delete(context.Background(), saved.ID))
	list := <-ch
	assert.Empty(t, list)
}

type unlistableFoods struct{ *memory.DB }

func (unlistableFoods) ListFoods(context.Context) ([]domain.FoodEntry, error) {
	return nil, errors.New("db down")
}

func TestSaveFood_ReloadFailureStillSucceeds(t *testing.T) {
	db := memory.New()
	var logs bytes.Buffer
	svc := app.NewFoodService(unlistableFoods{db}, nil, nil).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	saved, err := svc.Save(context.Background(), domain.FoodEntry{Name: "rice", Calories: 252})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	stored, err := db.ListFoods(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, saved.ID, stored[0].ID)

	require.NoError(t, svc.Delete(context.Background(), saved.ID))
	assert.Contains(t, logs.String(), "reload foods after write")
}

func TestLookup(t *testing.T) {
	svc := app.NewFoodService(memory.New(), nil, nil)
	_, err := svc.Lookup(context.Background(), "rice")
	require.ErrorIs(t, err, app.ErrLookupUnavailable)

	svc = app.NewFoodService(memory.New(), &fakeLookup{
		lookupFn: func(_ context.Context, q string) (*domain.FoodEntry, error) {
			return &domain.FoodEntry{Name: q, Calories: 252}, nil
		},
	}, nil)
	_, err = svc.Lookup(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidEntry)

	got, err := svc.Lookup(context.Background(), "rice")
	require.NoError(t, err)
	assert.Equal(t, 252, got.Calories)
}

func TestRecognize(t *testing.T) {
	lookup := &fakeLookup{
		lookupFn: func(_ context.Context, q string) (*domain.FoodEntry, error) {
			return &domain.FoodEntry{Name: q, Calories: 640}, nil
		},
	}
	svc := app.NewFoodService(memory.New(), lookup, &fakeRecognizer{name: "ramen", confidence: 0.9})

	_, _, err := svc.Recognize(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidEntry)

	draft, conf, err := svc.Recognize(context.Background(), []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "ramen", draft.Name)
	assert.Equal(t, 640, draft.Calories)
	assert.InDelta(t, 0.9, conf, 1e-9)

	svc = app.NewFoodService(memory.New(), nil, &fakeRecognizer{err: errors.New("vision down")})
	_, _, err = svc.Recognize(context.Background(), []byte{1})
	require.Error(t, err)

	svc = app.NewFoodService(memory.New(), nil, &fakeRecognizer{name: "curry", confidence: 0.5})
	draft, _, err = svc.Recognize(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "curry", draft.Name)
	assert.Zero(t, draft.Calories)
}
