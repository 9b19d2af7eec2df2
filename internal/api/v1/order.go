package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the fact record of the system: one sale line, immutable once ingested.
// Placement in a summary period is decided by OccurredAt alone; ingestion order
// never affects aggregation results.
type Order struct {
	// ID is the unique immutable identifier provided by the client.
	// It enforces idempotent ingestion: re-posting the same order line is a no-op.
	// Server-assigned (UUID) when the client omits it.
	ID string `json:"id"`

	// OrderID groups lines belonging to one checkout. Distinct-counted per period.
	OrderID string `json:"order_id"`

	// BuyerID identifies the purchasing account. Distinct-counted per period.
	BuyerID string `json:"buyer_id"`

	// PaymentMethod is free-form context (e.g. "credit_card", "paypal").
	PaymentMethod string `json:"payment_method,omitempty"`

	// OccurredAt is when the sale happened in the real world (client-side clock).
	// This is the event time that places the order into a summary period,
	// as opposed to IngestedAt (server-side clock).
	OccurredAt time.Time `json:"occurred_at"`

	// IngestedAt is when revroll received the order. Set by the ingestion
	// service, not the client. Audit trail only.
	IngestedAt time.Time `json:"ingested_at"`

	// IngestSeq is a monotonic sequence number assigned by the database
	// (BIGSERIAL). Not exposed in the public API.
	IngestSeq int64 `json:"-"`

	// Revenue is the monetary amount of this line. Exact decimal arithmetic
	// end to end; never a float.
	Revenue decimal.Decimal `json:"revenue"`

	// Measures carries optional additional numeric measures (e.g. tip_amount,
	// tolls_amount). Unknown keys are summed per period and surfaced on
	// summary rows rather than dropped.
	Measures map[string]interface{} `json:"measures,omitempty"`
}

// Validate ensures the order has all required attributes.
// ID is not required here: the ingestion service assigns one when absent.
func (o *Order) Validate() error {
	if o.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}

	if o.BuyerID == "" {
		return fmt.Errorf("buyer_id is required")
	}

	if o.OccurredAt.IsZero() {
		return fmt.Errorf("occurred_at is required")
	}

	if !o.Revenue.IsPositive() {
		return fmt.Errorf("revenue must be positive, got %s", o.Revenue)
	}

	return nil
}
