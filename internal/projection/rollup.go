package projection

import (
	"github.com/shopspring/decimal"

	"github.com/thosangs/revroll/internal/core/summary"
)

// rollupTotal folds per-period rows into one total for the whole range.
// Revenue sums exactly; order and buyer counts sum per-period distincts,
// which over-counts entities spanning multiple periods — the same tradeoff
// every pre-aggregated store makes, and documented on the API.
func rollupTotal(rows []summary.Row) *SummaryTotal {
	total := &SummaryTotal{Revenue: decimal.Zero, Periods: len(rows)}
	for _, r := range rows {
		total.Revenue = total.Revenue.Add(r.Revenue)
		total.Orders += r.Orders
		total.Buyers += r.Buyers
	}
	return total
}
