package rollup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thosangs/revroll/internal/core/calendar"
	"github.com/thosangs/revroll/internal/core/storage"
	"github.com/thosangs/revroll/internal/core/summary"
)

// Run executes one complete aggregation run for a profile: plan the
// reprocess window from current store state, scan the source, rebuild the
// window rows, and atomically replace them. Returns the number of periods
// updated.
//
// Write ordering is the crash-safety argument: every read (max period,
// source scan, stable prefix) happens before the single ReplaceFrom, so a
// failure at any earlier stage commits nothing, and a failure inside
// ReplaceFrom leaves the store untouched by its transaction contract.
// Re-running after any failure is therefore always safe.
func Run(
	ctx context.Context,
	source storage.OrderStore,
	store storage.SummaryStore,
	profile summary.Profile,
) (int, error) {
	cal, err := calendar.ByName(profile.HolidayCalendar)
	if err != nil {
		return 0, fmt.Errorf("resolve calendar: %w", err)
	}

	maxPeriod, err := store.MaxPeriod(ctx, profile.Name)
	if err != nil {
		return 0, fmt.Errorf("read max period: %w", err)
	}

	mode := summary.Plan(maxPeriod, profile.WindowSize, profile.Granularity)

	var scanFrom time.Time // zero = all history
	if mode.Incremental() {
		scanFrom = mode.ReprocessFrom()
	}

	slog.Info("[Rollup] Starting run",
		"model", profile.Name,
		"incremental", mode.Incremental(),
		"reprocess_from", scanFrom,
		"window_size", profile.WindowSize,
	)

	orders, err := source.ScanOrdersFrom(ctx, scanFrom)
	if err != nil {
		return 0, fmt.Errorf("scan source: %w", err)
	}

	var stable []summary.Row
	if mode.Incremental() {
		stable, err = store.ScanBefore(ctx, profile.Name, mode.ReprocessFrom())
		if err != nil {
			return 0, fmt.Errorf("read stable prefix: %w", err)
		}
	}

	var holiday summary.HolidayFunc
	if cal != nil {
		holiday = cal.Holiday
	}

	rows := summary.BuildWindow(orders, stable, mode, profile.Granularity, holiday, time.Now().UTC())

	if len(rows) == 0 {
		// Nothing in the window: leave stored rows alone. Deleting the window
		// here would only matter if source facts could disappear, and facts
		// are append-only.
		slog.Debug("[Rollup] No window rows to replace", "model", profile.Name)
		return 0, nil
	}

	if err := store.ReplaceFrom(ctx, profile.Name, mode, rows); err != nil {
		return 0, fmt.Errorf("replace window: %w", err)
	}

	slog.Info("[Rollup] Run complete",
		"model", profile.Name,
		"facts_scanned", len(orders),
		"periods_updated", len(rows),
		"stable_periods", len(stable),
	)

	return len(rows), nil
}
