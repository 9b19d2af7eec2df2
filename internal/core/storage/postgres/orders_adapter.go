package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	v1 "github.com/thosangs/revroll/internal/api/v1"
	"github.com/thosangs/revroll/internal/core/storage"
)

// OrderAdapter implements storage.OrderStore for PostgreSQL.
type OrderAdapter struct {
	db *sql.DB
}

// NewOrderAdapter creates a new OrderAdapter sharing the given connection pool.
func NewOrderAdapter(db *sql.DB) *OrderAdapter {
	return &OrderAdapter{db: db}
}

// SaveOrder persists an order line with id-based idempotency.
// Returns storage.ErrDuplicate when the id was already ingested.
func (a *OrderAdapter) SaveOrder(ctx context.Context, order *v1.Order) error {
	measuresJSON, err := marshalMeasures(order.Measures)
	if err != nil {
		return err
	}

	err = a.db.QueryRowContext(ctx, querySaveOrder,
		order.ID,
		order.OrderID,
		order.BuyerID,
		nullString(order.PaymentMethod),
		order.OccurredAt,
		order.IngestedAt,
		order.Revenue,
		measuresJSON,
	).Scan(&order.IngestSeq)
	if err == sql.ErrNoRows {
		// ON CONFLICT DO NOTHING swallowed the insert: duplicate id.
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// ScanOrdersFrom fetches all orders with event time at or after from.
// The zero time scans all history; timestamptz compares fine against
// 0001-01-01 so one query covers both run modes.
func (a *OrderAdapter) ScanOrdersFrom(ctx context.Context, from time.Time) ([]*v1.Order, error) {
	rows, err := a.db.QueryContext(ctx, queryScanOrdersFrom, from)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	defer rows.Close()

	var orders []*v1.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan orders: iterate rows: %w", err)
	}
	return orders, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
