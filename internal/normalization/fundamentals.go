package normalization

import (
	"math"
	"time"

	"equity-factor-lab/internal/domain"
)

// AnnotateFundamentals fills the derived fields of fundamental rows in
// place. Input must be pre-sorted by (gvkey, datadate).
//
// Per row:
//   - report date: first calendar day of the month lagMonths after the
//     fiscal period end month. The panel merge works at month granularity,
//     and pinning to day one keeps calendar arithmetic away from
//     end-of-month overflow.
//   - book equity: seq + txditc - preferred, where missing txditc counts
//     as zero and preferred is the first present of redemption,
//     liquidating, or par value, else zero. Missing seq leaves book
//     equity missing.
//   - roa: ib over at, requiring positive at.
//   - accruals: change in non-cash working capital minus depreciation,
//     over average total assets, against the previous consecutive fiscal
//     year of the same firm. Any missing operand leaves accruals missing.
func AnnotateFundamentals(rows []domain.Fundamentals, lagMonths int) {
	for i := range rows {
		r := &rows[i]
		r.ReportDate = reportDate(r.DataDate, lagMonths)
		r.BookEquity = bookEquity(*r)
		r.ROA = returnOnAssets(*r)
		r.Accruals = math.NaN()
		if i > 0 && rows[i-1].GVKey == r.GVKey && rows[i-1].FiscalYear == r.FiscalYear-1 {
			r.Accruals = accruals(*r, rows[i-1])
		}
	}
}

func reportDate(dataDate time.Time, lagMonths int) time.Time {
	y, m, _ := dataDate.Date()
	return time.Date(y, m+time.Month(lagMonths), 1, 0, 0, 0, 0, time.UTC)
}

func bookEquity(f domain.Fundamentals) float64 {
	if math.IsNaN(f.Equity) {
		return math.NaN()
	}
	deferred := f.DeferredTaxes
	if math.IsNaN(deferred) {
		deferred = 0
	}
	return f.Equity + deferred - preferredStock(f)
}

// preferredStock picks the best available preferred stock measure:
// redemption value, then liquidating value, then par value, then zero.
func preferredStock(f domain.Fundamentals) float64 {
	for _, v := range []float64{f.PreferredRedem, f.PreferredLiq, f.PreferredPar} {
		if !math.IsNaN(v) {
			return v
		}
	}
	return 0
}

func returnOnAssets(f domain.Fundamentals) float64 {
	if math.IsNaN(f.Income) || !(f.Assets > 0) {
		return math.NaN()
	}
	return f.Income / f.Assets
}

// nonCashWorkingCapital is (act - che) - (lct - dlc - txp). Missing
// operands propagate.
func nonCashWorkingCapital(f domain.Fundamentals) float64 {
	return (f.CurrentAssets - f.Cash) - (f.CurrentLiab - f.DebtCurrent - f.TaxesPayable)
}

func accruals(cur, prev domain.Fundamentals) float64 {
	avgAssets := (cur.Assets + prev.Assets) / 2
	if !(avgAssets > 0) {
		return math.NaN()
	}
	return (nonCashWorkingCapital(cur) - nonCashWorkingCapital(prev) - cur.Depreciation) / avgAssets
}
