package summary

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/thosangs/revroll/internal/api/v1"
)

// HolidayFunc reports whether a period key falls on a holiday.
// A nil HolidayFunc disables calendar enrichment.
type HolidayFunc func(time.Time) (name string, ok bool)

// periodAccumulator folds one period's facts in a single grouped pass.
// Distinct counts use in-memory sets; a period's facts always fit one run
// because the window bounds how much history is reprocessed.
type periodAccumulator struct {
	revenue decimal.Decimal
	orders  map[string]struct{}
	buyers  map[string]struct{}
	extra   map[string]decimal.Decimal
}

// BuildWindow recomputes the summary rows for the reprocess window.
//
// orders is the source scan for the run (first run: all history; incremental:
// facts at or after the reprocess boundary — re-filtered here so in-memory
// sources need not pre-filter). stable is the untouched prefix of previously
// stored rows strictly before the boundary, ordered by period ascending; it
// must be empty on a first run.
//
// The returned rows cover only the window, sorted by period ascending, with
// Running re-derived for every window period. The cumulative seed is the last
// stable row's Running value — seeding from zero inside the window would
// break running totals at the window boundary, so the stable tail is carried
// forward explicitly.
func BuildWindow(
	orders []*v1.Order,
	stable []Row,
	mode RunMode,
	granularity time.Duration,
	holiday HolidayFunc,
	now time.Time,
) []Row {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	groups := make(map[time.Time]*periodAccumulator)
	var driftKeys []string

	for _, o := range orders {
		period := PeriodFor(o.OccurredAt, granularity)
		if mode.Incremental() && period.Before(mode.ReprocessFrom()) {
			// Arrival older than the window: excluded from re-aggregation.
			continue
		}

		acc, ok := groups[period]
		if !ok {
			acc = &periodAccumulator{
				revenue: decimal.Zero,
				orders:  make(map[string]struct{}),
				buyers:  make(map[string]struct{}),
			}
			groups[period] = acc
		}

		acc.revenue = acc.revenue.Add(o.Revenue)
		acc.orders[o.OrderID] = struct{}{}
		acc.buyers[o.BuyerID] = struct{}{}

		for key, raw := range o.Measures {
			val, numeric := ExtractDecimal(raw)
			if !numeric {
				continue
			}
			if acc.extra == nil {
				acc.extra = make(map[string]decimal.Decimal)
			}
			if _, seen := acc.extra[key]; !seen && !knownMeasureKey(groups, key, period) {
				driftKeys = append(driftKeys, key)
			}
			acc.extra[key] = acc.extra[key].Add(val)
		}
	}

	for _, key := range driftKeys {
		slog.Warn("[Summary] New measure column in source facts, appending with null defaults for older periods",
			"measure", key)
	}

	periods := make([]time.Time, 0, len(groups))
	for p := range groups {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	// Seed the window's prefix sum from the last stable cumulative value.
	running := decimal.Zero
	if len(stable) > 0 {
		running = stable[len(stable)-1].Running
	}

	rows := make([]Row, 0, len(periods))
	for _, p := range periods {
		acc := groups[p]
		running = running.Add(acc.revenue)

		row := Row{
			Period:    p,
			Revenue:   acc.revenue,
			Orders:    int64(len(acc.orders)),
			Buyers:    int64(len(acc.buyers)),
			Extra:     acc.extra,
			Running:   running,
			UpdatedAt: now,
		}
		if holiday != nil {
			if name, ok := holiday(p); ok {
				row.IsHoliday = true
				row.HolidayName = name
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// knownMeasureKey reports whether any period other than current has already
// accumulated the given extra measure key, so drift is warned once per key
// per run rather than once per period.
func knownMeasureKey(groups map[time.Time]*periodAccumulator, key string, current time.Time) bool {
	for p, acc := range groups {
		if p.Equal(current) {
			continue
		}
		if acc.extra == nil {
			continue
		}
		if _, ok := acc.extra[key]; ok {
			return true
		}
	}
	return false
}
