// Package factors computes the predictor columns of the monthly panel.
//
// All rolling windows run on a dense calendar month axis per security:
// a window that reaches over a delisted gap or past the start of the
// security's history sees missing months, and its output goes missing
// rather than stretching over the gap. Predictors never look inside the
// month they are computed for; every input is lagged at least one month.
package factors

import (
	"math"

	"equity-factor-lab/internal/domain"
)

// Compute fills the predictor columns of the panel in place.
//
// The panel must be sorted by (permno, date) with market equity and
// fundamentals attached. Daily security rows must be sorted by
// (permno, date) and index days by date. Accruals and ROA arrive already
// attached on the panel rows and are left untouched.
func Compute(panel []domain.FactorRow, daily []domain.SecurityDay, index []domain.IndexDay) {
	indexWeeks := weeklyIndexReturns(index)
	dailyByPermno := groupDaily(daily)

	for start := 0; start < len(panel); {
		end := start
		for end < len(panel) && panel[end].Permno == panel[start].Permno {
			end++
		}
		rows := panel[start:end]
		computeSecurity(rows, dailyByPermno[rows[0].Permno], indexWeeks)
		start = end
	}
}

func computeSecurity(rows []domain.FactorRow, daily []domain.SecurityDay, indexWeeks map[int]float64) {
	g := newMonthGrid(rows)
	d := newDailyWindows(daily)

	for i := range rows {
		r := &rows[i]
		p := domain.MonthIndex(r.Date) - g.first

		r.LogSize = safeLog(g.val(g.me, p-1))
		r.LogBM = safeLog(g.val(g.be, p-1)) - safeLog(g.val(g.me, p-1))
		r.Return12To2 = g.compoundReturn(p-12, p-2)
		r.LogIssues12 = safeLog(g.val(g.shrout, p-1)) - safeLog(g.val(g.shrout, p-12))
		r.LogIssues36 = safeLog(g.val(g.shrout, p-1)) - safeLog(g.val(g.shrout, p-36))
		r.LogReturn13To36 = g.sumLogReturns(p-36, p-13)
		r.DividendYield = g.dividendYield(p)
		r.LogAssetsGrowth = safeLog(g.val(g.assets, p)) - safeLog(g.val(g.assets, p-12))
		r.DebtPrice = g.val(g.debt, p) / g.val(g.me, p-1)
		r.SalesPrice = g.val(g.sales, p) / g.val(g.me, p-1)
		r.Beta = d.beta(r.Date, indexWeeks)
		r.StdDev12 = d.stdDev(r.Date)
	}
}

// monthGrid is one security's history on a dense calendar month axis.
// Position p holds the month with index first+p; months the security
// skipped hold NaN everywhere.
type monthGrid struct {
	first  int
	ret    []float64
	retx   []float64
	price  []float64
	shrout []float64
	me     []float64
	be     []float64
	assets []float64
	debt   []float64
	sales  []float64
}

func newMonthGrid(rows []domain.FactorRow) *monthGrid {
	g := &monthGrid{first: domain.MonthIndex(rows[0].Date)}
	size := domain.MonthIndex(rows[len(rows)-1].Date) - g.first + 1

	g.ret = nanSlice(size)
	g.retx = nanSlice(size)
	g.price = nanSlice(size)
	g.shrout = nanSlice(size)
	g.me = nanSlice(size)
	g.be = nanSlice(size)
	g.assets = nanSlice(size)
	g.debt = nanSlice(size)
	g.sales = nanSlice(size)

	for _, r := range rows {
		p := domain.MonthIndex(r.Date) - g.first
		g.ret[p] = r.Return
		g.retx[p] = r.ReturnExDiv
		g.price[p] = r.Price
		g.shrout[p] = r.SharesOut
		g.me[p] = r.MarketEquity
		g.be[p] = r.BookEquity
		g.assets[p] = r.Assets
		g.debt[p] = r.TotalDebt
		g.sales[p] = r.Sales
	}
	return g
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// val returns the array value at position p, missing outside the grid.
func (g *monthGrid) val(a []float64, p int) float64 {
	if p < 0 || p >= len(a) {
		return math.NaN()
	}
	return a[p]
}

// compoundReturn compounds ex-dividend returns over positions [from, to].
// Every month in the window is required; a single missing month makes the
// result missing.
func (g *monthGrid) compoundReturn(from, to int) float64 {
	prod := 1.0
	for p := from; p <= to; p++ {
		prod *= 1 + g.val(g.retx, p)
	}
	return prod - 1
}

// sumLogReturns sums log ex-dividend returns over positions [from, to].
// Every month in the window is required, and a return of -100% or worse
// makes the result missing.
func (g *monthGrid) sumLogReturns(from, to int) float64 {
	sum := 0.0
	for p := from; p <= to; p++ {
		sum += safeLog(1 + g.val(g.retx, p))
	}
	return sum
}

// dividendYield sums the dividends per share paid over the twelve months
// before position p and scales them by the price at p-1. Months with no
// measurable dividend count as zero, but at least one month must be
// measurable.
func (g *monthGrid) dividendYield(p int) float64 {
	price := g.val(g.price, p-1)
	if !(price > 0) {
		return math.NaN()
	}
	sum, measured := 0.0, 0
	for j := 1; j <= 12; j++ {
		if d := g.dividend(p - j); !math.IsNaN(d) {
			sum += d
			measured++
		}
	}
	if measured == 0 {
		return math.NaN()
	}
	return sum / price
}

// dividend recovers the per-share dividend paid in the month at position p
// from the spread between total and ex-dividend returns, valued at the
// prior month's price.
func (g *monthGrid) dividend(p int) float64 {
	prior := g.val(g.price, p-1)
	if !(prior > 0) {
		return math.NaN()
	}
	return (g.val(g.ret, p) - g.val(g.retx, p)) * prior
}

func groupDaily(daily []domain.SecurityDay) map[int][]domain.SecurityDay {
	byPermno := make(map[int][]domain.SecurityDay)
	for start := 0; start < len(daily); {
		end := start
		for end < len(daily) && daily[end].Permno == daily[start].Permno {
			end++
		}
		byPermno[daily[start].Permno] = daily[start:end]
		start = end
	}
	return byPermno
}

// safeLog is the natural log with missing and non-positive inputs mapped
// to missing, never to a panic or an infinity.
func safeLog(v float64) float64 {
	if !(v > 0) {
		return math.NaN()
	}
	return math.Log(v)
}
