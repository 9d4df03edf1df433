package clickhouse_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/storage"
	chstore "equity-factor-lab/internal/storage/clickhouse"
)

func TestFactorPanelStore(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()
	store := chstore.NewFactorPanelStore(conn)

	// Pre-1970 months exercise the Date32 column.
	jan := time.Date(1965, 1, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(1965, 2, 26, 0, 0, 0, 0, time.UTC)

	r1 := domain.NewFactorRow(20001, jan)
	r1.PrimaryExch = domain.ExchangeNYSE
	r1.MarketEquity = 107254.75
	r1.ReturnExDiv = 0.025
	r1.LogSize = 11.58

	r2 := domain.NewFactorRow(20001, feb)
	r2.PrimaryExch = domain.ExchangeNYSE
	r2.LogSize = 11.61

	r3 := domain.NewFactorRow(20002, jan)
	r3.PrimaryExch = domain.ExchangeNASDAQ
	r3.LogBM = -0.4

	// Inserted out of order; reads come back sorted.
	require.NoError(t, store.InsertRows(ctx, "run-1", "All stocks", []domain.FactorRow{r3, r2, r1}))
	require.NoError(t, store.InsertRows(ctx, "run-1", "Large stocks", []domain.FactorRow{r1}))
	require.NoError(t, store.InsertRows(ctx, "run-2", "All stocks", []domain.FactorRow{r1}))

	got, err := store.RowsByRun(ctx, "run-1", "All stocks")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 20001, got[0].Permno)
	assert.True(t, got[0].Date.Equal(jan), "got %v", got[0].Date)
	assert.Equal(t, domain.ExchangeNYSE, got[0].PrimaryExch)
	assert.InDelta(t, 107254.75, got[0].MarketEquity, 1e-9)
	assert.InDelta(t, 0.025, got[0].ReturnExDiv, 1e-12)
	assert.InDelta(t, 11.58, got[0].LogSize, 1e-12)
	assert.True(t, math.IsNaN(got[0].Beta), "missing survives as NaN")

	assert.Equal(t, 20001, got[1].Permno)
	assert.True(t, got[1].Date.Equal(feb), "got %v", got[1].Date)

	assert.Equal(t, 20002, got[2].Permno)
	assert.InDelta(t, -0.4, got[2].LogBM, 1e-12)
	assert.True(t, math.IsNaN(got[2].ReturnExDiv))

	// Universe separation.
	large, err := store.RowsByRun(ctx, "run-1", "Large stocks")
	require.NoError(t, err)
	assert.Len(t, large, 1)

	_, err = store.RowsByRun(ctx, "run-1", "All-but-tiny stocks")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting a run removes every universe and leaves other runs alone.
	require.NoError(t, store.DeleteRun(ctx, "run-1"))
	_, err = store.RowsByRun(ctx, "run-1", "All stocks")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.RowsByRun(ctx, "run-1", "Large stocks")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	other, err := store.RowsByRun(ctx, "run-2", "All stocks")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestFactorPanelStoreValidation(t *testing.T) {
	// Validation happens before the connection is touched.
	store := chstore.NewFactorPanelStore(nil)
	ctx := context.Background()
	rows := []domain.FactorRow{domain.NewFactorRow(1, time.Now())}

	assert.ErrorIs(t, store.InsertRows(ctx, "", "All stocks", rows), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertRows(ctx, "run-1", "", rows), storage.ErrInvalidInput)
	assert.NoError(t, store.InsertRows(ctx, "run-1", "All stocks", nil))
}
