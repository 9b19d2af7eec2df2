package rollup

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/thosangs/revroll/internal/api/v1"
	"github.com/thosangs/revroll/internal/core/storage"
	"github.com/thosangs/revroll/internal/core/summary"
)

// InMemoryOrderStore is a test helper that implements storage.OrderStore.
type InMemoryOrderStore struct {
	mu      sync.Mutex
	orders  []*v1.Order
	seq     int64
	ScanErr error // when set, ScanOrdersFrom fails
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{}
}

func (s *InMemoryOrderStore) SaveOrder(_ context.Context, order *v1.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == order.ID {
			return storage.ErrDuplicate
		}
	}
	s.seq++
	order.IngestSeq = s.seq
	s.orders = append(s.orders, order)
	return nil
}

func (s *InMemoryOrderStore) ScanOrdersFrom(_ context.Context, from time.Time) ([]*v1.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ScanErr != nil {
		return nil, s.ScanErr
	}

	var out []*v1.Order
	for _, o := range s.orders {
		if o.OccurredAt.Before(from) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// InMemorySummaryStore is a test helper that implements storage.SummaryStore
// with the same all-or-nothing replace semantics as the postgres adapter:
// a write error mutates nothing.
type InMemorySummaryStore struct {
	mu       sync.Mutex
	rows     map[string]map[time.Time]summary.Row
	ReadErr  error // when set, MaxPeriod and both scans fail
	WriteErr error // when set, ReplaceFrom fails without mutating state
}

func NewInMemorySummaryStore() *InMemorySummaryStore {
	return &InMemorySummaryStore{
		rows: make(map[string]map[time.Time]summary.Row),
	}
}

func (s *InMemorySummaryStore) MaxPeriod(_ context.Context, model string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ReadErr != nil {
		return nil, s.ReadErr
	}

	var max *time.Time
	for period := range s.rows[model] {
		p := period
		if max == nil || p.After(*max) {
			max = &p
		}
	}
	return max, nil
}

func (s *InMemorySummaryStore) ScanBefore(_ context.Context, model string, before time.Time) ([]summary.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ReadErr != nil {
		return nil, s.ReadErr
	}

	var out []summary.Row
	for period, row := range s.rows[model] {
		if period.Before(before) {
			out = append(out, row)
		}
	}
	sortRows(out)
	return out, nil
}

func (s *InMemorySummaryStore) ScanRange(_ context.Context, model string, start, end time.Time) ([]summary.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ReadErr != nil {
		return nil, s.ReadErr
	}

	var out []summary.Row
	for period, row := range s.rows[model] {
		if !period.Before(start) && period.Before(end) {
			out = append(out, row)
		}
	}
	sortRows(out)
	return out, nil
}

func (s *InMemorySummaryStore) ReplaceFrom(
	_ context.Context,
	model string,
	mode summary.RunMode,
	rows []summary.Row,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.WriteErr != nil {
		return s.WriteErr
	}

	existing := s.rows[model]
	if existing == nil {
		existing = make(map[time.Time]summary.Row)
		s.rows[model] = existing
	}

	for period := range existing {
		if !mode.Incremental() || !period.Before(mode.ReprocessFrom()) {
			delete(existing, period)
		}
	}
	for _, row := range rows {
		existing[row.Period] = row
	}
	return nil
}

// Snapshot returns a copy of the stored rows for a model, ordered by period.
func (s *InMemorySummaryStore) Snapshot(model string) []summary.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []summary.Row
	for _, row := range s.rows[model] {
		out = append(out, row)
	}
	sortRows(out)
	return out
}

func sortRows(rows []summary.Row) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period.Before(rows[j].Period) })
}
