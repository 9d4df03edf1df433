package ingestion

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-factor-lab/internal/cache"
	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/wrds/stub"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func newFixtureService(t *testing.T) *stub.Service {
	t.Helper()
	return &stub.Service{
		Months: []domain.SecurityMonth{
			{Permno: 10001, Date: day(t, "2020-01-31"), Return: 0.02, ReturnExDiv: 0.02, Price: 8.11, SharesOut: 13225, PrimaryExch: domain.ExchangeNYSE},
			{Permno: 10001, Date: day(t, "2020-02-28"), Return: -0.01, ReturnExDiv: -0.01, Price: 8.03, SharesOut: 13225, PrimaryExch: domain.ExchangeNYSE},
		},
		Days: []domain.SecurityDay{
			{Permno: 10001, Date: day(t, "2020-01-02"), Return: 0.005, ReturnExDiv: 0.005},
		},
		IndexDays: []domain.IndexDay{
			{Date: day(t, "2020-01-02"), Return: 0.0084, ReturnExDiv: 0.0081},
		},
		Fund: []domain.Fundamentals{
			{GVKey: "001690", DataDate: day(t, "2018-09-30"), FiscalYear: 2018, Assets: 365725, Equity: 107147},
			{GVKey: "001690", DataDate: day(t, "2019-09-30"), FiscalYear: 2019, Assets: 338516, Equity: 90488},
		},
		Links: []domain.LinkRow{
			{GVKey: "001690", Permno: 10001, LinkStart: day(t, "1980-12-12")},
		},
	}
}

func TestFetchAllColdThenWarm(t *testing.T) {
	svc := newFixtureService(t)
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	start, end := day(t, "2020-01-01"), day(t, "2020-12-31")

	cold := NewFetcher(Options{Service: svc, Store: store})
	first, err := cold.FetchAll(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, first.Monthly, 2)
	require.Len(t, first.Links, 1)

	for _, dataset := range []string{
		cache.DatasetMonthlyStock, cache.DatasetDailyStock, cache.DatasetDailyIndex,
		cache.DatasetFundamentals, cache.DatasetLinkTable,
	} {
		assert.Equal(t, 1, svc.Calls[dataset], dataset)
	}

	// A second run over the same range must be served entirely from disk.
	warm := NewFetcher(Options{Service: svc, Store: store})
	second, err := warm.FetchAll(context.Background(), start, end)
	require.NoError(t, err)

	for dataset, n := range svc.Calls {
		assert.Equal(t, 1, n, dataset)
	}
	assert.Equal(t, first.Monthly, second.Monthly)
	assert.Equal(t, first.Daily, second.Daily)
	assert.Equal(t, first.Index, second.Index)
	assert.Equal(t, first.Links, second.Links)
}

func TestFetchAllExtendsFundamentalsLookback(t *testing.T) {
	svc := newFixtureService(t)
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	f := NewFetcher(Options{Service: svc, Store: store})
	data, err := f.FetchAll(context.Background(), day(t, "2020-01-01"), day(t, "2020-12-31"))
	require.NoError(t, err)

	// Both fiscal years land in the bundle even though 2018 predates the
	// run's start date.
	require.Len(t, data.Fundamentals, 2)
	assert.Equal(t, 2018, data.Fundamentals[0].FiscalYear)
}

func TestFetchCanonicalizesRemoteRows(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	svc := &stub.Service{
		Months: []domain.SecurityMonth{
			{Permno: 20002, Date: time.Date(2020, 1, 31, 16, 0, 0, 0, loc), Price: 5, SharesOut: 100},
			{Permno: 10001, Date: time.Date(2020, 2, 28, 0, 0, 0, 0, time.UTC), Price: 8.03, SharesOut: 13225},
			{Permno: 10001, Date: time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), Price: 8.11, SharesOut: 13225},
			{Permno: 10001, Date: time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), Price: math.NaN(), SharesOut: math.NaN()},
		},
	}
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	f := NewFetcher(Options{Service: svc, Store: store})
	rows, err := f.MonthlyStock(context.Background(), day(t, "2020-01-01"), day(t, "2020-12-31"))
	require.NoError(t, err)

	// Sorted by (permno, date), duplicate keeps the first-seen row, and the
	// zoned timestamp collapses to its calendar date.
	require.Len(t, rows, 3)
	assert.Equal(t, 10001, rows[0].Permno)
	assert.Equal(t, 8.11, rows[0].Price)
	assert.Equal(t, 10001, rows[1].Permno)
	assert.Equal(t, day(t, "2020-02-28"), rows[1].Date)
	assert.Equal(t, 20002, rows[2].Permno)
	assert.Equal(t, day(t, "2020-01-31"), rows[2].Date)
}

func TestFetchPropagatesRemoteError(t *testing.T) {
	boom := errors.New("FATAL: password authentication failed")
	svc := &stub.Service{Err: boom}
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	f := NewFetcher(Options{Service: svc, Store: store})
	_, err = f.MonthlyStock(context.Background(), day(t, "2020-01-01"), day(t, "2020-12-31"))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch monthly stock")

	// A failed fetch must not leave a cache file behind.
	assert.False(t, store.Has(cache.Key(cache.DatasetMonthlyStock, day(t, "2020-01-01"), day(t, "2020-12-31"))))
}

func TestFetchNewRangeMissesCache(t *testing.T) {
	svc := newFixtureService(t)
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)

	f := NewFetcher(Options{Service: svc, Store: store})

	_, err = f.MonthlyStock(context.Background(), day(t, "2020-01-01"), day(t, "2020-12-31"))
	require.NoError(t, err)
	_, err = f.MonthlyStock(context.Background(), day(t, "2020-01-01"), day(t, "2021-12-31"))
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Calls[cache.DatasetMonthlyStock])
}
