// Package ingestion fills the raw-data cache from the remote research
// database. Each dataset is fetched at most once per (dataset, date range):
// a present cache file is returned as-is, an absent one triggers a remote
// query whose result is canonicalized and written before being returned.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"equity-factor-lab/internal/cache"
	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/wrds"
)

// Fetcher resolves datasets cache-first against a remote service.
type Fetcher struct {
	service wrds.Service
	store   *cache.Store
	verbose bool
}

// Options for creating a Fetcher.
type Options struct {
	Service wrds.Service
	Store   *cache.Store
	Verbose bool
}

// NewFetcher creates a Fetcher over the given service and cache store.
func NewFetcher(opts Options) *Fetcher {
	return &Fetcher{
		service: opts.Service,
		store:   opts.Store,
		verbose: opts.Verbose,
	}
}

// RawData bundles the input datasets of one pipeline run.
type RawData struct {
	Monthly      []domain.SecurityMonth
	Daily        []domain.SecurityDay
	Index        []domain.IndexDay
	Fundamentals []domain.Fundamentals
	Links        []domain.LinkRow
}

// FetchAll resolves all five datasets sequentially. Fundamentals are pulled
// over a range starting three years before start so fiscal-year deltas and
// the reporting lag have history to draw on.
func (f *Fetcher) FetchAll(ctx context.Context, start, end time.Time) (*RawData, error) {
	var (
		data RawData
		err  error
	)

	if data.Monthly, err = f.MonthlyStock(ctx, start, end); err != nil {
		return nil, err
	}
	if data.Daily, err = f.DailyStock(ctx, start, end); err != nil {
		return nil, err
	}
	if data.Index, err = f.DailyIndex(ctx, start, end); err != nil {
		return nil, err
	}
	if data.Fundamentals, err = f.Fundamentals(ctx, start.AddDate(-3, 0, 0), end); err != nil {
		return nil, err
	}
	if data.Links, err = f.LinkTable(ctx); err != nil {
		return nil, err
	}
	return &data, nil
}

// MonthlyStock returns monthly security rows for [start, end].
func (f *Fetcher) MonthlyStock(ctx context.Context, start, end time.Time) ([]domain.SecurityMonth, error) {
	key := cache.Key(cache.DatasetMonthlyStock, start, end)
	if rows, err := f.store.LoadMonthlyStock(key); err == nil {
		f.log("%s: cache hit, %d rows", key, len(rows))
		return rows, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	began := time.Now()
	rows, err := f.service.MonthlyStock(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch monthly stock: %w", err)
	}
	for i := range rows {
		rows[i].Date = midnightUTC(rows[i].Date)
	}
	SortMonthly(rows)
	rows = DedupeMonthly(rows)
	if err := f.store.SaveMonthlyStock(key, rows); err != nil {
		return nil, err
	}
	f.log("%s: fetched %d rows in %s", key, len(rows), time.Since(began).Round(time.Millisecond))
	return rows, nil
}

// DailyStock returns daily security rows for [start, end].
func (f *Fetcher) DailyStock(ctx context.Context, start, end time.Time) ([]domain.SecurityDay, error) {
	key := cache.Key(cache.DatasetDailyStock, start, end)
	if rows, err := f.store.LoadDailyStock(key); err == nil {
		f.log("%s: cache hit, %d rows", key, len(rows))
		return rows, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	began := time.Now()
	rows, err := f.service.DailyStock(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch daily stock: %w", err)
	}
	for i := range rows {
		rows[i].Date = midnightUTC(rows[i].Date)
	}
	SortDaily(rows)
	rows = DedupeDaily(rows)
	if err := f.store.SaveDailyStock(key, rows); err != nil {
		return nil, err
	}
	f.log("%s: fetched %d rows in %s", key, len(rows), time.Since(began).Round(time.Millisecond))
	return rows, nil
}

// DailyIndex returns daily market index rows for [start, end].
func (f *Fetcher) DailyIndex(ctx context.Context, start, end time.Time) ([]domain.IndexDay, error) {
	key := cache.Key(cache.DatasetDailyIndex, start, end)
	if rows, err := f.store.LoadDailyIndex(key); err == nil {
		f.log("%s: cache hit, %d rows", key, len(rows))
		return rows, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	began := time.Now()
	rows, err := f.service.DailyIndex(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch daily index: %w", err)
	}
	for i := range rows {
		rows[i].Date = midnightUTC(rows[i].Date)
	}
	SortIndex(rows)
	rows = DedupeIndex(rows)
	if err := f.store.SaveDailyIndex(key, rows); err != nil {
		return nil, err
	}
	f.log("%s: fetched %d rows in %s", key, len(rows), time.Since(began).Round(time.Millisecond))
	return rows, nil
}

// Fundamentals returns annual fundamental rows with data dates in [start, end].
func (f *Fetcher) Fundamentals(ctx context.Context, start, end time.Time) ([]domain.Fundamentals, error) {
	key := cache.Key(cache.DatasetFundamentals, start, end)
	if rows, err := f.store.LoadFundamentals(key); err == nil {
		f.log("%s: cache hit, %d rows", key, len(rows))
		return rows, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	began := time.Now()
	rows, err := f.service.Fundamentals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	for i := range rows {
		rows[i].DataDate = midnightUTC(rows[i].DataDate)
	}
	SortFundamentals(rows)
	rows = DedupeFundamentals(rows)
	if err := f.store.SaveFundamentals(key, rows); err != nil {
		return nil, err
	}
	f.log("%s: fetched %d rows in %s", key, len(rows), time.Since(began).Round(time.Millisecond))
	return rows, nil
}

// LinkTable returns the full security-company link table. The table is
// small and changes rarely, so its cache key carries no date range.
func (f *Fetcher) LinkTable(ctx context.Context) ([]domain.LinkRow, error) {
	key := cache.KeyStatic(cache.DatasetLinkTable)
	if rows, err := f.store.LoadLinkTable(key); err == nil {
		f.log("%s: cache hit, %d rows", key, len(rows))
		return rows, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	began := time.Now()
	rows, err := f.service.LinkTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch link table: %w", err)
	}
	for i := range rows {
		rows[i].LinkStart = midnightUTC(rows[i].LinkStart)
		rows[i].LinkEnd = midnightUTC(rows[i].LinkEnd)
	}
	SortLinks(rows)
	if err := f.store.SaveLinkTable(key, rows); err != nil {
		return nil, err
	}
	f.log("%s: fetched %d rows in %s", key, len(rows), time.Since(began).Round(time.Millisecond))
	return rows, nil
}

func (f *Fetcher) log(format string, args ...interface{}) {
	if f.verbose {
		log.Printf("[ingest] "+format, args...)
	}
}
