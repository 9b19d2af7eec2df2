package projection

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/thosangs/revroll/internal/core/summary"
	"github.com/thosangs/revroll/internal/rollup"
)

var svcBase = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func seededService(t *testing.T) (*Service, *rollup.InMemorySummaryStore) {
	t.Helper()

	store := rollup.NewInMemorySummaryStore()
	rows := make([]summary.Row, 0, 5)
	running := decimal.Zero
	for d := 0; d < 5; d++ {
		rev := decimal.NewFromInt(int64(10 * (d + 1)))
		running = running.Add(rev)
		rows = append(rows, summary.Row{
			Period:    svcBase.AddDate(0, 0, d),
			Revenue:   rev,
			Orders:    int64(d + 1),
			Buyers:    int64(d + 1),
			Running:   running,
			UpdatedAt: time.Now().UTC(),
		})
	}
	require.NoError(t, store.ReplaceFrom(context.Background(), "daily_revenue", summary.FirstRun(), rows))

	profiles := []summary.Profile{{
		Name:        "daily_revenue",
		WindowSize:  summary.DefaultWindowSize,
		Granularity: summary.DefaultGranularity,
		Strategy:    summary.StrategyMerge,
	}}
	return NewService(store, profiles), store
}

func TestQuerySummaries_Range(t *testing.T) {
	svc, _ := seededService(t)

	resp, err := svc.QuerySummaries(context.Background(), SummaryQueryRequest{
		Model: "daily_revenue",
		Start: svcBase.AddDate(0, 0, 1),
		End:   svcBase.AddDate(0, 0, 4), // half-open: days 2,3,4
	})
	require.NoError(t, err)
	require.Len(t, resp.Values, 3)
	require.True(t, resp.Values[0].Period.Equal(svcBase.AddDate(0, 0, 1)))
	require.True(t, resp.Values[2].Running.Equal(decimal.NewFromInt(100)))
	require.Nil(t, resp.Total)
}

func TestQuerySummaries_RollupTotal(t *testing.T) {
	svc, _ := seededService(t)

	resp, err := svc.QuerySummaries(context.Background(), SummaryQueryRequest{
		Model:  "daily_revenue",
		Start:  svcBase,
		End:    svcBase.AddDate(0, 0, 5),
		Rollup: "total",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Total)
	require.True(t, resp.Total.Revenue.Equal(decimal.NewFromInt(150)))
	require.Equal(t, int64(15), resp.Total.Orders)
	require.Equal(t, 5, resp.Total.Periods)
}

func TestQuerySummaries_UnknownModel(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.QuerySummaries(context.Background(), SummaryQueryRequest{
		Model: "weekly_revenue",
		Start: svcBase,
		End:   svcBase.AddDate(0, 0, 1),
	})
	require.ErrorIs(t, err, ErrUnknownModel)
}

func TestQuerySummaries_InvalidRange(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.QuerySummaries(context.Background(), SummaryQueryRequest{
		Model: "daily_revenue",
		Start: svcBase.AddDate(0, 0, 2),
		End:   svcBase,
	})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestQuerySummaries_InvalidRollup(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.QuerySummaries(context.Background(), SummaryQueryRequest{
		Model:  "daily_revenue",
		Start:  svcBase,
		End:    svcBase.AddDate(0, 0, 1),
		Rollup: "average",
	})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestQuerySummaries_EmptyRange(t *testing.T) {
	svc, _ := seededService(t)

	resp, err := svc.QuerySummaries(context.Background(), SummaryQueryRequest{
		Model:  "daily_revenue",
		Start:  svcBase.AddDate(0, 1, 0),
		End:    svcBase.AddDate(0, 2, 0),
		Rollup: "total",
	})
	require.NoError(t, err)
	require.Empty(t, resp.Values)
	require.True(t, resp.Total.Revenue.Equal(decimal.Zero))
	require.Zero(t, resp.Total.Periods)
}
