package postgres

// SQL queries for order facts and summary rows.

const (
	// querySaveOrder inserts an order line with idempotency on its id.
	// RETURNING retrieves the auto-generated ingest_seq; ON CONFLICT DO
	// NOTHING returns no rows (sql.ErrNoRows) for duplicates.
	querySaveOrder = `
		INSERT INTO orders (
			id, order_id, buyer_id, payment_method,
			occurred_at, ingested_at, revenue, measures
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING ingest_seq
	`

	// queryScanOrdersFrom fetches every order at or after an event-time
	// boundary. The rollup engine calls this with the reprocess boundary
	// (or the zero time for a first-run full scan); result order is
	// irrelevant to aggregation, ingest_seq just makes scans deterministic.
	queryScanOrdersFrom = `
		SELECT
			id, order_id, buyer_id, payment_method,
			occurred_at, ingested_at, revenue, measures, ingest_seq
		FROM orders
		WHERE occurred_at >= $1
		ORDER BY ingest_seq ASC
	`

	queryMaxPeriod = `SELECT MAX(period_date) FROM summaries WHERE model_name = $1`

	querySummaryColumns = `
		period_date, revenue, orders, buyers,
		extra_measures, running_revenue, is_holiday, holiday_name, updated_at
	`

	queryScanBefore = `
		SELECT ` + querySummaryColumns + `
		FROM summaries
		WHERE model_name = $1
		  AND period_date < $2
		ORDER BY period_date ASC
	`

	queryScanRange = `
		SELECT ` + querySummaryColumns + `
		FROM summaries
		WHERE model_name = $1
		  AND period_date >= $2
		  AND period_date < $3
		ORDER BY period_date ASC
	`

	queryDeleteModel = `DELETE FROM summaries WHERE model_name = $1`

	queryDeleteModelFrom = `DELETE FROM summaries WHERE model_name = $1 AND period_date >= $2`

	queryInsertSummaryRow = `
		INSERT INTO summaries (
			model_name, period_date, revenue, orders, buyers,
			extra_measures, running_revenue, is_holiday, holiday_name, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
)
