package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitmate/internal/domain"
)

// NutritionLookup resolves a free-text food query into nutrition facts.
type NutritionLookup interface {
	Lookup(ctx context.Context, query string) (*domain.FoodEntry, error)
}

// MenuRecognizer identifies a dish from a photo.
type MenuRecognizer interface {
	RecognizeMenu(ctx context.Context, image []byte) (name string, confidence float64, err error)
}

// ErrLookupUnavailable is returned when no nutrition client is configured.
var ErrLookupUnavailable = errors.New("nutrition lookup not configured")

// FoodService is the food entry store, with the same notification contract
// as WeightService. It also fronts the external nutrition collaborators.
type FoodService struct {
	repo       domain.FoodRepository
	lookup     NutritionLookup
	recognizer MenuRecognizer
	now        func() time.Time

	log *slog.Logger

	mu  sync.Mutex
	pub *broadcaster[[]domain.FoodEntry]
}

// NewFoodService creates a FoodService backed by the given repository.
// lookup and recognizer may be nil.
func NewFoodService(repo domain.FoodRepository, lookup NutritionLookup, recognizer MenuRecognizer) *FoodService {
	return &FoodService{
		repo:       repo,
		lookup:     lookup,
		recognizer: recognizer,
		now:        time.Now,
		log:        slog.Default(),
		pub:        newBroadcaster[[]domain.FoodEntry](),
	}
}

// WithLogger sets the logger used for reload failures.
func (s *FoodService) WithLogger(l *slog.Logger) *FoodService {
	s.log = l
	return s
}

// Save validates and stores a food entry, assigning an ID and a timestamp
// when missing.
func (s *FoodService) Save(ctx context.Context, e domain.FoodEntry) (domain.FoodEntry, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return domain.FoodEntry{}, fmt.Errorf("%w: name is required", domain.ErrInvalidEntry)
	}
	if e.Calories < 0 {
		return domain.FoodEntry{}, fmt.Errorf("%w: calories must be >= 0", domain.ErrInvalidEntry)
	}
	if !e.Meal.Valid() {
		return domain.FoodEntry{}, fmt.Errorf("%w: meal type %d", domain.ErrInvalidEntry, int(e.Meal))
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.SaveFood(ctx, e); err != nil {
		return domain.FoodEntry{}, err
	}
	s.notify(ctx)
	return e, nil
}

// Delete removes the food entry with the given ID.
func (s *FoodService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteFood(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// LoadAll returns every stored food entry, newest first.
func (s *FoodService) LoadAll(ctx context.Context) ([]domain.FoodEntry, error) {
	return s.repo.ListFoods(ctx)
}

// Subscribe returns a channel receiving the full entry list after each
// mutation, and a func to stop receiving.
func (s *FoodService) Subscribe() (<-chan []domain.FoodEntry, func()) {
	return s.pub.subscribe()
}

// Lookup queries the nutrition API and returns an unsaved draft entry.
func (s *FoodService) Lookup(ctx context.Context, query string) (*domain.FoodEntry, error) {
	if s.lookup == nil {
		return nil, ErrLookupUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidEntry)
	}
	return s.lookup.Lookup(ctx, query)
}

// Recognize identifies the dish in image and, when a nutrition client is
// available, resolves it into a draft entry.
func (s *FoodService) Recognize(ctx context.Context, image []byte) (*domain.FoodEntry, float64, error) {
	if s.recognizer == nil {
		return nil, 0, ErrLookupUnavailable
	}
	if len(image) == 0 {
		return nil, 0, fmt.Errorf("%w: image is empty", domain.ErrInvalidEntry)
	}
	name, confidence, err := s.recognizer.RecognizeMenu(ctx, image)
	if err != nil {
		return nil, 0, err
	}
	if s.lookup == nil {
		return &domain.FoodEntry{Name: name}, confidence, nil
	}
	draft, err := s.lookup.Lookup(ctx, name)
	if err != nil {
		return nil, confidence, err
	}
	return draft, confidence, nil
}

// notify must be called with s.mu held. The write has already been
// committed, so a failed reload is logged and subscribers catch up on the
// next successful notification or engine refresh.
func (s *FoodService) notify(ctx context.Context) {
	all, err := s.repo.ListFoods(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "reload foods after write", "err", err)
		return
	}
	s.pub.publish(slices.Clip(all))
}
