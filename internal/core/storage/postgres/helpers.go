package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	v1 "github.com/thosangs/revroll/internal/api/v1"
	"github.com/thosangs/revroll/internal/core/summary"
)

// marshalMeasures marshals an order's optional extra measures to JSON.
// Nil or empty measures produce nil (SQL NULL) rather than a JSON "null" string.
func marshalMeasures(measures map[string]interface{}) ([]byte, error) {
	if len(measures) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(measures)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal measures: %w", err)
	}
	return data, nil
}

// marshalExtra marshals a summary row's extra measure sums to JSON.
// Decimal values serialize as JSON numbers via shopspring's MarshalJSON.
func marshalExtra(extra map[string]decimal.Decimal) ([]byte, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extra measures: %w", err)
	}
	return data, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanOrderRow scans a database row into an Order struct.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanOrderRow(row scanner) (*v1.Order, error) {
	var o v1.Order
	var paymentMethod sql.NullString
	var revenueStr string
	var measuresJSON []byte

	err := row.Scan(
		&o.ID,
		&o.OrderID,
		&o.BuyerID,
		&paymentMethod,
		&o.OccurredAt,
		&o.IngestedAt,
		&revenueStr,
		&measuresJSON,
		&o.IngestSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order row: %w", err)
	}

	o.PaymentMethod = paymentMethod.String

	revenue, err := decimal.NewFromString(revenueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse revenue %q: %w", revenueStr, err)
	}
	o.Revenue = revenue

	if len(measuresJSON) > 0 {
		if err := json.Unmarshal(measuresJSON, &o.Measures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal measures: %w", err)
		}
	}

	return &o, nil
}

// scanSummaryRow scans a database row into a summary.Row.
func scanSummaryRow(row scanner) (summary.Row, error) {
	var r summary.Row
	var revenueStr, runningStr string
	var holidayName sql.NullString
	var extraJSON []byte

	err := row.Scan(
		&r.Period,
		&revenueStr,
		&r.Orders,
		&r.Buyers,
		&extraJSON,
		&runningStr,
		&r.IsHoliday,
		&holidayName,
		&r.UpdatedAt,
	)
	if err != nil {
		return summary.Row{}, fmt.Errorf("failed to scan summary row: %w", err)
	}

	r.HolidayName = holidayName.String

	revenue, err := decimal.NewFromString(revenueStr)
	if err != nil {
		return summary.Row{}, fmt.Errorf("failed to parse revenue %q: %w", revenueStr, err)
	}
	r.Revenue = revenue

	running, err := decimal.NewFromString(runningStr)
	if err != nil {
		return summary.Row{}, fmt.Errorf("failed to parse running_revenue %q: %w", runningStr, err)
	}
	r.Running = running

	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &r.Extra); err != nil {
			return summary.Row{}, fmt.Errorf("failed to unmarshal extra measures: %w", err)
		}
	}

	return r, nil
}
