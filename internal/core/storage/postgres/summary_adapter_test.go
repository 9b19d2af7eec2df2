package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/thosangs/revroll/internal/core/summary"
)

func TestSummaryAdapter_MaxPeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	period := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryMaxPeriod)).
		WithArgs("daily_revenue").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(period))

	got, err := adapter.MaxPeriod(context.Background(), "daily_revenue")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Equal(period))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_MaxPeriodEmptyModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)

	// MAX() over zero rows yields one NULL row, which means "first run".
	mock.ExpectQuery(regexp.QuoteMeta(queryMaxPeriod)).
		WithArgs("daily_revenue").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	got, err := adapter.MaxPeriod(context.Background(), "daily_revenue")
	require.NoError(t, err)
	require.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_ScanBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	boundary := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"period_date", "revenue", "orders", "buyers",
		"extra_measures", "running_revenue", "is_holiday", "holiday_name", "updated_at",
	}).
		AddRow(boundary.AddDate(0, 0, -2), "30.5", int64(3), int64(2), nil, "30.5", false, nil, now).
		AddRow(boundary.AddDate(0, 0, -1), "40", int64(4), int64(4), []byte(`{"tip_amount":"2.5"}`), "70.5", true, "Independence Day", now)

	mock.ExpectQuery(regexp.QuoteMeta(queryScanBefore)).
		WithArgs("daily_revenue", boundary).
		WillReturnRows(rows)

	stable, err := adapter.ScanBefore(context.Background(), "daily_revenue", boundary)
	require.NoError(t, err)
	require.Len(t, stable, 2)

	require.True(t, stable[0].Revenue.Equal(decimal.RequireFromString("30.5")))
	require.Equal(t, int64(3), stable[0].Orders)
	require.Empty(t, stable[0].Extra)

	require.True(t, stable[1].Running.Equal(decimal.RequireFromString("70.5")))
	require.True(t, stable[1].IsHoliday)
	require.Equal(t, "Independence Day", stable[1].HolidayName)
	require.True(t, stable[1].Extra["tip_amount"].Equal(decimal.RequireFromString("2.5")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_ReplaceFromIncremental(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	from := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	row := summary.Row{
		Period:    from,
		Revenue:   decimal.NewFromInt(15),
		Orders:    2,
		Buyers:    2,
		Running:   decimal.NewFromInt(85),
		UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteModelFrom)).
		WithArgs("daily_revenue", from).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectPrepare(regexp.QuoteMeta(queryInsertSummaryRow)).
		ExpectExec().
		WithArgs(
			"daily_revenue",
			row.Period,
			row.Revenue,
			row.Orders,
			row.Buyers,
			[]byte(nil),
			row.Running,
			row.IsHoliday,
			nullString(""),
			row.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = adapter.ReplaceFrom(context.Background(), "daily_revenue", summary.IncrementalFrom(from), []summary.Row{row})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_ReplaceFromFirstRunDeletesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteModel)).
		WithArgs("daily_revenue").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(queryInsertSummaryRow))
	mock.ExpectCommit()

	err = adapter.ReplaceFrom(context.Background(), "daily_revenue", summary.FirstRun(), nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_ReplaceFromRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db)
	from := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	row := summary.Row{
		Period:    from,
		Revenue:   decimal.NewFromInt(15),
		Running:   decimal.NewFromInt(85),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteModelFrom)).
		WithArgs("daily_revenue", from).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectPrepare(regexp.QuoteMeta(queryInsertSummaryRow)).
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = adapter.ReplaceFrom(context.Background(), "daily_revenue", summary.IncrementalFrom(from), []summary.Row{row})
	require.Error(t, err)
	require.ErrorContains(t, err, "insert period")
	require.NoError(t, mock.ExpectationsWereMet())
}
