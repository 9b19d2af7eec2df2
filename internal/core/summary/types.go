package summary

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one persisted summary row: exactly one per period key per model.
// Additive measures are recomputed from source facts whenever the period
// falls inside the reprocess window; Running additionally depends on every
// earlier period and is re-derived across the whole window on each run.
type Row struct {
	// Period is the period key: OccurredAt truncated to the model's
	// granularity, always UTC.
	Period time.Time `json:"period"`

	// Revenue is the per-period revenue sum.
	Revenue decimal.Decimal `json:"revenue"`

	// Orders is the distinct order count for the period.
	Orders int64 `json:"orders"`

	// Buyers is the distinct buyer count for the period.
	Buyers int64 `json:"buyers"`

	// Extra holds sums of any additional numeric measures found on source
	// facts. Periods whose facts never carried a given key simply omit it.
	Extra map[string]decimal.Decimal `json:"extra,omitempty"`

	// Running is the cumulative revenue across all periods up to and
	// including this one, in period order.
	Running decimal.Decimal `json:"running_revenue"`

	// IsHoliday and HolidayName are calendar enrichment, populated when the
	// model's profile enables a holiday calendar.
	IsHoliday   bool   `json:"is_holiday"`
	HolidayName string `json:"holiday_name,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// RunMode is the tagged run variant: a first run rebuilds the whole summary
// from all history, an incremental run reprocesses only periods at or after
// its reprocess boundary. Dispatch is ordinary control flow; no run ever
// inspects model names or generated query text to decide behavior.
type RunMode struct {
	incremental   bool
	reprocessFrom time.Time
}

// FirstRun returns the full-rebuild mode, used when the summary store holds
// no rows for the model yet.
func FirstRun() RunMode {
	return RunMode{}
}

// IncrementalFrom returns the incremental mode reprocessing all periods at
// or after from.
func IncrementalFrom(from time.Time) RunMode {
	return RunMode{incremental: true, reprocessFrom: from}
}

// Incremental reports whether this run reprocesses a bounded window.
func (m RunMode) Incremental() bool {
	return m.incremental
}

// ReprocessFrom returns the inclusive lower bound of the reprocess window.
// Only meaningful when Incremental() is true; a first run has no bound and
// scans all history.
func (m RunMode) ReprocessFrom() time.Time {
	return m.reprocessFrom
}
