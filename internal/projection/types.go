package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryQueryRequest represents the query parameters for fetching summary rows.
type SummaryQueryRequest struct {
	Model   string    `uri:"model" binding:"required"`
	Start   time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End     time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Rollup  string    `form:"rollup"` // "" (per-period rows) or "total"
}

// SummaryValue is one summary data point in the response.
type SummaryValue struct {
	Period      time.Time                  `json:"period"`
	Revenue     decimal.Decimal            `json:"revenue"`
	Orders      int64                      `json:"orders"`
	Buyers      int64                      `json:"buyers"`
	Extra       map[string]decimal.Decimal `json:"extra,omitempty"`
	Running     decimal.Decimal            `json:"running_revenue"`
	IsHoliday   bool                       `json:"is_holiday"`
	HolidayName string                     `json:"holiday_name,omitempty"`
}

// SummaryTotal is the range rollup included when rollup=total is requested.
type SummaryTotal struct {
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
	Buyers  int64           `json:"buyers"`
	Periods int             `json:"periods"`
}

// SummaryQueryResponse is the response for a summary query.
type SummaryQueryResponse struct {
	Model  string         `json:"model"`
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	Values []SummaryValue `json:"values"`
	Total  *SummaryTotal  `json:"total,omitempty"`
}
