// Package subsets slices the monthly panel into the size-based stock
// universes the tables report on, and winsorizes panel columns
// cross-sectionally by month.
package subsets

import (
	"math"
	"sort"

	"equity-factor-lab/internal/domain"
)

// Universe names, in report order.
const (
	AllStocks        = "All stocks"
	AllButTinyStocks = "All-but-tiny stocks"
	LargeStocks      = "Large stocks"
)

// Names lists the universes in report order.
var Names = []string{AllStocks, AllButTinyStocks, LargeStocks}

// SizeCutoffs holds one month's NYSE size breakpoints, in the units of
// market equity.
type SizeCutoffs struct {
	P20 float64
	P50 float64
}

// NYSECutoffs computes per-month size breakpoints from the market equity
// of NYSE-listed rows, keyed by month index. Months without a single
// sized NYSE row get no entry.
func NYSECutoffs(panel []domain.FactorRow) map[int]SizeCutoffs {
	byMonth := make(map[int][]float64)
	for _, r := range panel {
		if r.PrimaryExch != domain.ExchangeNYSE || math.IsNaN(r.MarketEquity) {
			continue
		}
		m := domain.MonthIndex(r.Date)
		byMonth[m] = append(byMonth[m], r.MarketEquity)
	}

	cuts := make(map[int]SizeCutoffs, len(byMonth))
	for m, vals := range byMonth {
		sort.Float64s(vals)
		cuts[m] = SizeCutoffs{
			P20: percentile(vals, 0.20),
			P50: percentile(vals, 0.50),
		}
	}
	return cuts
}

// Build slices the panel into the three report universes. All stocks is
// the whole panel; the restricted universes keep rows whose market equity
// reaches that month's NYSE breakpoint. Rows in months without NYSE
// breakpoints, and rows without size, stay out of the restricted
// universes. Every universe holds its own copies.
func Build(panel []domain.FactorRow) map[string][]domain.FactorRow {
	cuts := NYSECutoffs(panel)

	out := map[string][]domain.FactorRow{
		AllStocks: append([]domain.FactorRow(nil), panel...),
	}
	for _, r := range panel {
		c, ok := cuts[domain.MonthIndex(r.Date)]
		if !ok {
			continue
		}
		if r.MarketEquity >= c.P20 {
			out[AllButTinyStocks] = append(out[AllButTinyStocks], r)
		}
		if r.MarketEquity >= c.P50 {
			out[LargeStocks] = append(out[LargeStocks], r)
		}
	}
	return out
}

// percentile returns the p-quantile of sorted values by linear
// interpolation. sorted must be ascending and non-empty.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
