// Package normalization turns raw dataset rows into analysis-ready form:
// the monthly security panel with market equity, and fundamental rows with
// their derived fields (book equity, accruals, ROA, report date) filled in.
package normalization

import (
	"math"

	"equity-factor-lab/internal/domain"
)

// BuildMonthlyPanel transforms sorted monthly security rows into panel rows.
// Input must be pre-sorted by (permno, date).
//
// Market equity is price times shares outstanding, in $ thousands. It is
// missing when either operand is missing or non-positive: a non-positive
// price marks a quote midpoint rather than a trade, and zero shares mark a
// placeholder record.
func BuildMonthlyPanel(months []domain.SecurityMonth) []domain.FactorRow {
	rows := make([]domain.FactorRow, 0, len(months))
	for _, m := range months {
		r := domain.NewFactorRow(m.Permno, m.Date)
		r.Return = m.Return
		r.ReturnExDiv = m.ReturnExDiv
		r.Price = m.Price
		r.SharesOut = m.SharesOut
		r.PrimaryExch = m.PrimaryExch
		r.MarketEquity = marketEquity(m.Price, m.SharesOut)
		rows = append(rows, r)
	}
	return rows
}

func marketEquity(price, shares float64) float64 {
	if !(price > 0) || !(shares > 0) {
		return math.NaN()
	}
	return price * shares
}
