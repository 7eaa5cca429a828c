package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitmate/internal/domain"
)

// WeightService is the weight entry store: it validates and persists
// mutations through the repository and notifies subscribers with the full
// entry list after every successful mutation.
type WeightService struct {
	repo domain.WeightRepository
	now  func() time.Time

	log *slog.Logger

	mu  sync.Mutex
	pub *broadcaster[[]domain.WeightEntry]
}

// NewWeightService creates a WeightService backed by the given repository.
func NewWeightService(repo domain.WeightRepository) *WeightService {
	return &WeightService{
		repo: repo,
		now:  time.Now,
		log:  slog.Default(),
		pub:  newBroadcaster[[]domain.WeightEntry](),
	}
}

// WithLogger sets the logger used for reload failures.
func (s *WeightService) WithLogger(l *slog.Logger) *WeightService {
	s.log = l
	return s
}

func validateWeight(weight float64) error {
	if weight <= 0 {
		return fmt.Errorf("%w: weight must be > 0", domain.ErrInvalidEntry)
	}
	return nil
}

// Save records a new weight measurement. A zero date means now.
func (s *WeightService) Save(ctx context.Context, weight float64, date time.Time, note string) (domain.WeightEntry, error) {
	if err := validateWeight(weight); err != nil {
		return domain.WeightEntry{}, err
	}
	if date.IsZero() {
		date = s.now()
	}
	e := domain.WeightEntry{ID: uuid.NewString(), Weight: weight, Date: date, Note: note}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.SaveWeight(ctx, e); err != nil {
		return domain.WeightEntry{}, err
	}
	s.notify(ctx)
	return e, nil
}

// Update replaces the weight, date and note of an existing entry.
func (s *WeightService) Update(ctx context.Context, id string, weight float64, date time.Time, note string) (domain.WeightEntry, error) {
	if err := validateWeight(weight); err != nil {
		return domain.WeightEntry{}, err
	}
	if date.IsZero() {
		return domain.WeightEntry{}, fmt.Errorf("%w: date is required", domain.ErrInvalidEntry)
	}
	e := domain.WeightEntry{ID: id, Weight: weight, Date: date, Note: note}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.UpdateWeight(ctx, e); err != nil {
		return domain.WeightEntry{}, err
	}
	s.notify(ctx)
	return e, nil
}

// Delete removes the entry with the given ID.
func (s *WeightService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteWeight(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// LoadAll returns every stored weight entry, newest first.
func (s *WeightService) LoadAll(ctx context.Context) ([]domain.WeightEntry, error) {
	return s.repo.ListWeights(ctx)
}

// Subscribe returns a channel receiving the full entry list after each
// mutation, and a func to stop receiving.
func (s *WeightService) Subscribe() (<-chan []domain.WeightEntry, func()) {
	return s.pub.subscribe()
}

// notify must be called with s.mu held. The write has already been
// committed, so a failed reload is logged and subscribers catch up on the
// next successful notification or engine refresh.
func (s *WeightService) notify(ctx context.Context) {
	all, err := s.repo.ListWeights(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "reload weights after write", "err", err)
		return
	}
	s.pub.publish(slices.Clip(all))
}
