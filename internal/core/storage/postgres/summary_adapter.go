package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/thosangs/revroll/internal/core/summary"
)

// SummaryAdapter implements storage.SummaryStore using PostgreSQL.
// ReplaceFrom runs delete and inserts in a single transaction — the
// atomicity contract the rollup engine relies on: readers observe either
// the pre-run or post-run snapshot of the window, never a mix.
type SummaryAdapter struct {
	db *sql.DB
}

// NewSummaryAdapter creates a new SummaryAdapter sharing the given connection pool.
func NewSummaryAdapter(db *sql.DB) *SummaryAdapter {
	return &SummaryAdapter{db: db}
}

// MaxPeriod returns the newest stored period for a model, or nil when the
// model has no rows yet.
func (a *SummaryAdapter) MaxPeriod(ctx context.Context, model string) (*time.Time, error) {
	var max sql.NullTime
	err := a.db.QueryRowContext(ctx, queryMaxPeriod, model).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("read max period: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	t := max.Time.UTC()
	return &t, nil
}

// ScanBefore returns the stable prefix: rows strictly before the boundary,
// ordered by period ascending.
func (a *SummaryAdapter) ScanBefore(ctx context.Context, model string, before time.Time) ([]summary.Row, error) {
	return a.scan(ctx, queryScanBefore, model, before)
}

// ScanRange returns rows with start <= period < end, ordered by period ascending.
func (a *SummaryAdapter) ScanRange(ctx context.Context, model string, start, end time.Time) ([]summary.Row, error) {
	return a.scan(ctx, queryScanRange, model, start, end)
}

func (a *SummaryAdapter) scan(ctx context.Context, query string, args ...interface{}) ([]summary.Row, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []summary.Row
	for rows.Next() {
		r, err := scanSummaryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query summaries: iterate rows: %w", err)
	}
	return out, nil
}

// ReplaceFrom atomically replaces the model's rows at or after the run's
// reprocess boundary. A first run replaces the unbounded range, which doubles
// as the bulk initial-load path.
func (a *SummaryAdapter) ReplaceFrom(
	ctx context.Context,
	model string,
	mode summary.RunMode,
	rows []summary.Row,
) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("summary replace: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if mode.Incremental() {
		_, err = tx.ExecContext(ctx, queryDeleteModelFrom, model, mode.ReprocessFrom())
	} else {
		_, err = tx.ExecContext(ctx, queryDeleteModel, model)
	}
	if err != nil {
		return fmt.Errorf("summary replace: delete window: %w", err)
	}

	insertStmt, err := tx.PrepareContext(ctx, queryInsertSummaryRow)
	if err != nil {
		return fmt.Errorf("summary replace: prepare insert: %w", err)
	}
	defer insertStmt.Close()

	for _, r := range rows {
		extraJSON, err := marshalExtra(r.Extra)
		if err != nil {
			return err
		}
		if _, err := insertStmt.ExecContext(ctx,
			model,
			r.Period,
			r.Revenue,
			r.Orders,
			r.Buyers,
			extraJSON,
			r.Running,
			r.IsHoliday,
			nullString(r.HolidayName),
			r.UpdatedAt,
		); err != nil {
			return fmt.Errorf("summary replace: insert period %s: %w", r.Period.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("summary replace: commit: %w", err)
	}

	slog.Info("[SummaryAdapter] Replaced window",
		"model", model,
		"rows", len(rows),
		"incremental", mode.Incremental(),
	)
	return nil
}
