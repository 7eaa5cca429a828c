package app_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fitmate/internal/app"
	"fitmate/internal/domain"
)

type mockWeightRepo struct {
	saveFn   func(ctx context.Context, e domain.WeightEntry) error
	updateFn func(ctx context.Context, e domain.WeightEntry) error
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context) ([]domain.WeightEntry, error)
}

func (m *mockWeightRepo) SaveWeight(ctx context.Context, e domain.WeightEntry) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, e)
	}
	return nil
}

func (m *mockWeightRepo) UpdateWeight(ctx context.Context, e domain.WeightEntry) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, e)
	}
	return nil
}

func (m *mockWeightRepo) DeleteWeight(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockWeightRepo) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func TestSaveWeight_Validation(t *testing.T) {
	svc := app.NewWeightService(&mockWeightRepo{})

	tests := []struct {
		name  string
		value float64
	}{
		{"zero value", 0},
		{"negative value", -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), tc.value, time.Now(), "")
			if !errors.Is(err, domain.ErrInvalidEntry) {
				t.Fatalf("expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestSaveWeight_PublishesFullList(t *testing.T) {
	stored := []domain.WeightEntry{{ID: "old", Weight: 71, Date: time.Now().Add(-24 * time.Hour)}}
	repo := &mockWeightRepo{
		saveFn: func(_ context.Context, e domain.WeightEntry) error {
			stored = append(stored, e)
			return nil
		},
		listFn: func(_ context.Context) ([]domain.WeightEntry, error) {
			return append([]domain.WeightEntry(nil), stored...), nil
		},
	}
	svc := app.NewWeightService(repo)
	ch, cancel := svc.Subscribe()
	defer cancel()

	got, err := svc.Save(context.Background(), 70.2, time.Time{}, "morning")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}
	if got.Date.IsZero() {
		t.Fatal("expected zero date to default to now")
	}

	select {
	case list := <-ch:
		if len(list) != 2 {
			t.Fatalf("expected full list of 2, got %d", len(list))
		}
	default:
		t.Fatal("expected a notification after save")
	}
}

func TestSaveWeight_RepoErrorDoesNotNotify(t *testing.T) {
	repo := &mockWeightRepo{
		saveFn: func(_ context.Context, _ domain.WeightEntry) error {
			return errors.New("db down")
		},
	}
	svc := app.NewWeightService(repo)
	ch, cancel := svc.Subscribe()
	defer cancel()

	if _, err := svc.Save(context.Background(), 80, time.Now(), ""); err == nil {
		t.Fatal("expected error from repo")
	}
	select {
	case <-ch:
		t.Fatal("no notification expected after a failed mutation")
	default:
	}
}

func TestSaveWeight_ReloadFailureStillSucceeds(t *testing.T) {
	var saved []string
	repo := &mockWeightRepo{
		saveFn: func(_ context.Context, e domain.WeightEntry) error {
			saved = append(saved, e.ID)
			return nil
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
		listFn: func(_ context.Context) ([]domain.WeightEntry, error) {
			return nil, errors.New("db down")
		},
	}
	var logs bytes.Buffer
	svc := app.NewWeightService(repo).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	ch, cancel := svc.Subscribe()
	defer cancel()

	got, err := svc.Save(context.Background(), 70, time.Now(), "")
	if err != nil {
		t.Fatalf("committed save reported as failed: %v", err)
	}
	if len(saved) != 1 || got.ID != saved[0] {
		t.Fatalf("expected the saved entry back, got %+v (saved %v)", got, saved)
	}
	if err := svc.Delete(context.Background(), got.ID); err != nil {
		t.Fatalf("committed delete reported as failed: %v", err)
	}

	select {
	case <-ch:
		t.Fatal("no notification expected when the reload fails")
	default:
	}
	if !strings.Contains(logs.String(), "reload weights after write") {
		t.Errorf("expected the reload failure to be logged, got %q", logs.String())
	}
}

func TestUpdateWeight(t *testing.T) {
	var updated domain.WeightEntry
	repo := &mockWeightRepo{
		updateFn: func(_ context.Context, e domain.WeightEntry) error {
			updated = e
			return nil
		},
	}
	svc := app.NewWeightService(repo)
	when := time.Date(2026, 1, 15, 7, 0, 0, 0, time.UTC)

	if _, err := svc.Update(context.Background(), "w1", 75, when, "after run"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != "w1" || updated.Weight != 75 || !updated.Date.Equal(when) || updated.Note != "after run" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if _, err := svc.Update(context.Background(), "w1", 75, time.Time{}, ""); !errors.Is(err, domain.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry for zero date, got %v", err)
	}
}

func TestDeleteWeight_NotFound(t *testing.T) {
	repo := &mockWeightRepo{
		deleteFn: func(_ context.Context, _ string) error { return domain.ErrNotFound },
	}
	svc := app.NewWeightService(repo)
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadAllWeight_Error(t *testing.T) {
	repo := &mockWeightRepo{
		listFn: func(_ context.Context) ([]domain.WeightEntry, error) {
			return nil, errors.New("db down")
		},
	}
	svc := app.NewWeightService(repo)
	if _, err := svc.LoadAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
