package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fitmate/internal/domain"
)

// WeightSource is the part of the weight store the engine consumes.
type WeightSource interface {
	LoadAll(ctx context.Context) ([]domain.WeightEntry, error)
	Subscribe() (<-chan []domain.WeightEntry, func())
}

// FoodSource is the part of the food store the engine consumes.
type FoodSource interface {
	LoadAll(ctx context.Context) ([]domain.FoodEntry, error)
	Subscribe() (<-chan []domain.FoodEntry, func())
}

// Snapshot is one generation of the daily record aggregate. Snapshots
// received from Subscribe are shared between subscribers and must be treated
// as read-only.
type Snapshot struct {
	Generation uint64               `json:"generation"`
	BuiltAt    time.Time            `json:"builtAt"`
	Records    []domain.DailyRecord `json:"records"`
}

// Engine owns the daily record aggregate. It rebuilds the aggregate from the
// full contents of both stores whenever either store reports a change and
// swaps the result in atomically.
type Engine struct {
	weights WeightSource
	foods   FoodSource
	loc     *time.Location
	log     *slog.Logger
	metrics *EngineMetrics
	now     func() time.Time

	mu          sync.Mutex // serializes rebuilds
	lastWeights []domain.WeightEntry
	lastFoods   []domain.FoodEntry
	gen         uint64

	current atomic.Pointer[Snapshot]
	pub     *broadcaster[Snapshot]
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the engine metrics.
func WithMetrics(m *EngineMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine over the two stores. loc fixes the calendar
// used for day truncation for the lifetime of the engine; nil means
// time.Local.
func NewEngine(weights WeightSource, foods FoodSource, loc *time.Location, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{
		weights: weights,
		foods:   foods,
		loc:     loc,
		log:     slog.Default(),
		now:     time.Now,
		pub:     newBroadcaster[Snapshot](),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.current.Store(&Snapshot{Records: []domain.DailyRecord{}})
	return e
}

// Location returns the calendar location used for day truncation.
func (e *Engine) Location() *time.Location { return e.loc }

// Run subscribes to both stores, seeds the aggregate from their current
// contents and then rebuilds on every change notification until ctx is
// done or both stores close their streams.
func (e *Engine) Run(ctx context.Context) error {
	wch, cancelW := e.weights.Subscribe()
	defer cancelW()
	fch, cancelF := e.foods.Subscribe()
	defer cancelF()

	if err := e.Refresh(ctx); err != nil {
		return fmt.Errorf("seed aggregate: %w", err)
	}

	for wch != nil || fch != nil {
		var (
			ws    []domain.WeightEntry
			fs    []domain.FoodEntry
			gotW  bool
			gotF  bool
			alive bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ws, alive = <-wch:
			if !alive {
				wch = nil
				continue
			}
			gotW = true
		case fs, alive = <-fch:
			if !alive {
				fch = nil
				continue
			}
			gotF = true
		}

		// Coalesce notifications that are already pending.
		if v, ok := drain(wch); ok {
			ws, gotW = v, true
		}
		if v, ok := drain(fch); ok {
			fs, gotF = v, true
		}

		e.mu.Lock()
		if gotW {
			e.lastWeights = ws
		}
		if gotF {
			e.lastFoods = fs
		}
		e.rebuildLocked()
		e.mu.Unlock()
	}
	return nil
}

func drain[T any](ch <-chan T) (T, bool) {
	var zero T
	if ch == nil {
		return zero, false
	}
	select {
	case v, ok := <-ch:
		return v, ok
	default:
		return zero, false
	}
}

// Refresh re-reads both stores and rebuilds. On a load failure the current
// snapshot is left untouched and the error is returned.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ws, werr := e.weights.LoadAll(ctx)
	fs, ferr := e.foods.LoadAll(ctx)
	if err := errors.Join(werr, ferr); err != nil {
		e.metrics.loadFailed()
		e.log.Error("engine: load entries", "error", err)
		return err
	}
	e.lastWeights, e.lastFoods = ws, fs
	e.rebuildLocked()
	return nil
}

// rebuildLocked must be called with e.mu held.
func (e *Engine) rebuildLocked() {
	start := time.Now()
	records := Rebuild(e.lastWeights, e.lastFoods, e.loc)
	e.gen++

	snap := &Snapshot{Generation: e.gen, BuiltAt: e.now(), Records: records}
	e.current.Store(snap)
	e.metrics.observeRebuild(time.Since(start), len(records), e.gen)
	e.log.Debug("engine: rebuilt daily records",
		"generation", e.gen,
		"records", len(records),
		"weights", len(e.lastWeights),
		"foods", len(e.lastFoods),
	)

	e.pub.publish(Snapshot{Generation: snap.Generation, BuiltAt: snap.BuiltAt, Records: cloneRecords(records)})
}

// Snapshot returns a private copy of the current aggregate.
func (e *Engine) Snapshot() Snapshot {
	s := e.current.Load()
	return Snapshot{Generation: s.Generation, BuiltAt: s.BuiltAt, Records: cloneRecords(s.Records)}
}

// Subscribe returns a channel receiving every new snapshot, latest-wins, and
// a func to stop receiving.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	return e.pub.subscribe()
}
