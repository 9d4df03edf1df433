// Package merge attaches firm fundamentals to the monthly security panel
// through the time-validity link table.
//
// A fundamental row becomes usable in the month of its report date and
// stays usable until a newer report supersedes it, for at most StaleMonths
// months. A security month never sees a report dated after it.
package merge

import (
	"time"

	"equity-factor-lab/internal/domain"
)

// StaleMonths bounds how long a fundamental row keeps representing a firm
// after it was reported. Annual reporters refresh within twelve months;
// anything older marks a firm that stopped filing.
const StaleMonths = 12

// AttachFundamentals fills the fundamental fields of panel rows in place.
//
// Inputs must be pre-sorted: panel by (permno, date), fund by
// (gvkey, datadate) with derived fields annotated, links by
// (gvkey, permno, linkdt).
//
// For each security month the attached row is the one with the greatest
// report date at or before the month date among all firms linked on that
// date, observing StaleMonths. Ties on report date go to the latest fiscal
// period end, then to the lowest gvkey. Months with no usable row keep
// their missing fundamental fields.
func AttachFundamentals(panel []domain.FactorRow, fund []domain.Fundamentals, links []domain.LinkRow) {
	byFirm := make(map[string][]domain.Fundamentals)
	for _, f := range fund {
		byFirm[f.GVKey] = append(byFirm[f.GVKey], f)
	}
	byPermno := make(map[int][]domain.LinkRow)
	for _, l := range links {
		byPermno[l.Permno] = append(byPermno[l.Permno], l)
	}

	for i := range panel {
		row := &panel[i]

		var best *domain.Fundamentals
		for _, link := range byPermno[row.Permno] {
			if !link.Covers(row.Date) {
				continue
			}
			cand := latestUsable(byFirm[link.GVKey], row.Date)
			if cand == nil {
				continue
			}
			if best == nil ||
				cand.ReportDate.After(best.ReportDate) ||
				(cand.ReportDate.Equal(best.ReportDate) && cand.DataDate.After(best.DataDate)) {
				best = cand
			}
		}
		if best == nil {
			continue
		}

		row.GVKey = best.GVKey
		row.DataDate = best.DataDate
		row.ReportDate = best.ReportDate
		row.BookEquity = best.BookEquity
		row.Assets = best.Assets
		row.TotalDebt = best.DebtCurrent + best.DebtLongTerm
		row.Sales = best.Sales
		row.Accruals = best.Accruals
		row.ROA = best.ROA
	}
}

// latestUsable returns the fiscal row of one firm that a given month sees,
// or nil. rows are sorted by datadate, and report dates grow with fiscal
// period ends, so the scan walks backwards to the newest report at or
// before the date.
func latestUsable(rows []domain.Fundamentals, date time.Time) *domain.Fundamentals {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].ReportDate.After(date) {
			continue
		}
		if domain.MonthIndex(date)-domain.MonthIndex(rows[i].ReportDate) >= StaleMonths {
			return nil
		}
		return &rows[i]
	}
	return nil
}
