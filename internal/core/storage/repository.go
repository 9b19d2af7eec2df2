package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/thosangs/revroll/internal/api/v1"
	"github.com/thosangs/revroll/internal/core/summary"
)

// ErrDuplicate is returned when an order with the same id already exists.
var ErrDuplicate = errors.New("order already exists")

// OrderStore defines the interface for storing and scanning order facts.
// Facts are immutable and append-only; the scan is restartable and its
// internal ordering is irrelevant to aggregation.
type OrderStore interface {
	SaveOrder(ctx context.Context, order *v1.Order) error

	// ScanOrdersFrom fetches all orders whose event time is at or after from.
	// The zero time means "all history" (first-run full scan).
	ScanOrdersFrom(ctx context.Context, from time.Time) ([]*v1.Order, error)
}

// SummaryStore defines the interface for persisted summary rows, keyed by
// (model, period). The rollup engine is the only writer; concurrent readers
// observe either the pre-run or post-run snapshot because ReplaceFrom is
// transactional.
type SummaryStore interface {
	// MaxPeriod returns the newest period stored for a model, or nil when the
	// model has no rows yet (first-run detection).
	MaxPeriod(ctx context.Context, model string) (*time.Time, error)

	// ScanBefore returns all rows for a model with period strictly before
	// the boundary, ordered by period ascending — the stable prefix.
	ScanBefore(ctx context.Context, model string, before time.Time) ([]summary.Row, error)

	// ScanRange returns rows for a model with start <= period < end, ordered
	// by period ascending. Used by the projection read path.
	ScanRange(ctx context.Context, model string, start, end time.Time) ([]summary.Row, error)

	// ReplaceFrom atomically replaces every stored row for the model at or
	// after the run's reprocess boundary with rows. A first run replaces the
	// unbounded range (bulk initial load). All-or-nothing: a failed replace
	// leaves the previous rows fully intact, never a mix.
	ReplaceFrom(ctx context.Context, model string, mode summary.RunMode, rows []summary.Row) error
}
