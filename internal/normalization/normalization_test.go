package normalization

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-factor-lab/internal/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestBuildMonthlyPanelMarketEquity(t *testing.T) {
	nan := math.NaN()
	months := []domain.SecurityMonth{
		{Permno: 10001, Date: day(t, "2020-01-31"), Return: 0.02, ReturnExDiv: 0.019, Price: 8.11, SharesOut: 13225, PrimaryExch: domain.ExchangeNYSE},
		{Permno: 10001, Date: day(t, "2020-02-28"), Price: -7.95, SharesOut: 13225},
		{Permno: 10001, Date: day(t, "2020-03-31"), Price: 8.40, SharesOut: nan},
		{Permno: 10001, Date: day(t, "2020-04-30"), Price: 8.52, SharesOut: 0},
	}

	rows := BuildMonthlyPanel(months)
	require.Len(t, rows, 4)

	assert.Equal(t, 10001, rows[0].Permno)
	assert.Equal(t, domain.ExchangeNYSE, rows[0].PrimaryExch)
	assert.InDelta(t, 8.11*13225, rows[0].MarketEquity, 1e-9)

	// Quote midpoints, missing shares, and placeholder records carry no size.
	assert.True(t, math.IsNaN(rows[1].MarketEquity), "negative price")
	assert.True(t, math.IsNaN(rows[2].MarketEquity), "missing shares")
	assert.True(t, math.IsNaN(rows[3].MarketEquity), "zero shares")

	// Predictors and fundamental fields start missing, not zero.
	assert.True(t, math.IsNaN(rows[0].LogSize))
	assert.True(t, math.IsNaN(rows[0].BookEquity))
	assert.True(t, math.IsNaN(rows[0].Beta))
	assert.Empty(t, rows[0].GVKey)
}

func TestAnnotateReportDate(t *testing.T) {
	rows := []domain.Fundamentals{
		{GVKey: "001690", DataDate: day(t, "2019-12-31"), FiscalYear: 2019},
		{GVKey: "001690", DataDate: day(t, "2020-10-31"), FiscalYear: 2020},
	}
	AnnotateFundamentals(rows, 4)

	assert.Equal(t, day(t, "2020-04-01"), rows[0].ReportDate)
	assert.Equal(t, day(t, "2021-02-01"), rows[1].ReportDate)
}

func TestAnnotateBookEquity(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		row  domain.Fundamentals
		want float64
	}{
		{
			name: "redemption value wins",
			row:  domain.Fundamentals{Equity: 100, DeferredTaxes: 10, PreferredRedem: 5, PreferredLiq: 7, PreferredPar: 3},
			want: 105,
		},
		{
			name: "liquidating value next",
			row:  domain.Fundamentals{Equity: 100, DeferredTaxes: nan, PreferredRedem: nan, PreferredLiq: 7, PreferredPar: 3},
			want: 93,
		},
		{
			name: "par value last",
			row:  domain.Fundamentals{Equity: 100, DeferredTaxes: nan, PreferredRedem: nan, PreferredLiq: nan, PreferredPar: 3},
			want: 97,
		},
		{
			name: "no preferred at all",
			row:  domain.Fundamentals{Equity: 100, DeferredTaxes: nan, PreferredRedem: nan, PreferredLiq: nan, PreferredPar: nan},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []domain.Fundamentals{tt.row}
			rows[0].Income = nan
			rows[0].Assets = nan
			AnnotateFundamentals(rows, 4)
			assert.InDelta(t, tt.want, rows[0].BookEquity, 1e-12)
		})
	}

	t.Run("missing equity stays missing", func(t *testing.T) {
		rows := []domain.Fundamentals{{Equity: nan, DeferredTaxes: 10, PreferredPar: 3}}
		AnnotateFundamentals(rows, 4)
		assert.True(t, math.IsNaN(rows[0].BookEquity))
	})

	t.Run("negative book equity is kept", func(t *testing.T) {
		rows := []domain.Fundamentals{{Equity: -20, DeferredTaxes: nan, PreferredRedem: nan, PreferredLiq: nan, PreferredPar: nan}}
		AnnotateFundamentals(rows, 4)
		assert.Equal(t, -20.0, rows[0].BookEquity)
	})
}

func TestAnnotateROA(t *testing.T) {
	nan := math.NaN()
	rows := []domain.Fundamentals{
		{GVKey: "A", DataDate: day(t, "2019-12-31"), FiscalYear: 2019, Income: 10, Assets: 100},
		{GVKey: "B", DataDate: day(t, "2019-12-31"), FiscalYear: 2019, Income: 10, Assets: 0},
		{GVKey: "C", DataDate: day(t, "2019-12-31"), FiscalYear: 2019, Income: nan, Assets: 100},
		{GVKey: "D", DataDate: day(t, "2019-12-31"), FiscalYear: 2019, Income: 10, Assets: nan},
	}
	AnnotateFundamentals(rows, 4)

	assert.InDelta(t, 0.1, rows[0].ROA, 1e-12)
	assert.True(t, math.IsNaN(rows[1].ROA))
	assert.True(t, math.IsNaN(rows[2].ROA))
	assert.True(t, math.IsNaN(rows[3].ROA))
}

func TestAnnotateAccruals(t *testing.T) {
	nan := math.NaN()
	base := domain.Fundamentals{
		GVKey: "001690", Income: nan,
		CurrentAssets: 50, Cash: 10, CurrentLiab: 30, DebtCurrent: 5, TaxesPayable: 2,
		Assets: 200, Depreciation: 3,
	}

	prev := base
	prev.DataDate = day(t, "2018-12-31")
	prev.FiscalYear = 2018

	cur := base
	cur.DataDate = day(t, "2019-12-31")
	cur.FiscalYear = 2019
	cur.CurrentAssets, cur.Cash = 60, 12
	cur.CurrentLiab, cur.DebtCurrent, cur.TaxesPayable = 33, 6, 3
	cur.Assets, cur.Depreciation = 220, 4

	t.Run("consecutive fiscal years", func(t *testing.T) {
		rows := []domain.Fundamentals{prev, cur}
		AnnotateFundamentals(rows, 4)

		// NCWC moves from 17 to 24; (24-17-4) / ((200+220)/2)
		assert.True(t, math.IsNaN(rows[0].Accruals), "first year has no prior")
		assert.InDelta(t, 3.0/210.0, rows[1].Accruals, 1e-12)
	})

	t.Run("fiscal year gap", func(t *testing.T) {
		gapped := cur
		gapped.FiscalYear = 2020
		rows := []domain.Fundamentals{prev, gapped}
		AnnotateFundamentals(rows, 4)
		assert.True(t, math.IsNaN(rows[1].Accruals))
	})

	t.Run("different firm adjacency", func(t *testing.T) {
		other := cur
		other.GVKey = "002000"
		rows := []domain.Fundamentals{prev, other}
		AnnotateFundamentals(rows, 4)
		assert.True(t, math.IsNaN(rows[1].Accruals))
	})

	t.Run("missing operand", func(t *testing.T) {
		broken := cur
		broken.TaxesPayable = nan
		rows := []domain.Fundamentals{prev, broken}
		AnnotateFundamentals(rows, 4)
		assert.True(t, math.IsNaN(rows[1].Accruals))
	})

	t.Run("non-positive average assets", func(t *testing.T) {
		sick := cur
		sick.Assets = -400
		rows := []domain.Fundamentals{prev, sick}
		AnnotateFundamentals(rows, 4)
		assert.True(t, math.IsNaN(rows[1].Accruals))
	})
}
