// Package domain contains the core entities and persistence ports.
package domain

import (
	"context"
	"time"
)

// WeightEntry represents a single weight measurement in kilograms.
type WeightEntry struct {
	ID     string    `json:"id"`
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note,omitempty"`
	// Seq is assigned by the store on every write and increases
	// monotonically. It breaks ties between equal timestamps.
	Seq int64 `json:"-"`
}

// OccurredAt returns the measurement timestamp.
func (e WeightEntry) OccurredAt() time.Time { return e.Date }

// WrittenAfter reports whether e supersedes o as the latest measurement:
// later timestamp first, then later write.
func (e WeightEntry) WrittenAfter(o WeightEntry) bool { return writtenAfter(e.Date, e.Seq, o.Date, o.Seq) }

func writtenAfter(at time.Time, seq int64, oAt time.Time, oSeq int64) bool {
	if c := at.Compare(oAt); c != 0 {
		return c > 0
	}
	return seq > oSeq
}

// WeightRepository is the port for weight persistence.
type WeightRepository interface {
	SaveWeight(ctx context.Context, e WeightEntry) error
	UpdateWeight(ctx context.Context, e WeightEntry) error
	DeleteWeight(ctx context.Context, id string) error
	ListWeights(ctx context.Context) ([]WeightEntry, error)
}
