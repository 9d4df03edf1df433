package domain

import (
	"fmt"
	"math"
	"time"
)

// Canonical column keys for the monthly panel. These name the dependent
// variable and the fourteen predictor columns everywhere a column is
// addressed by name (winsorization, regression models, reports, storage).
const (
	ColReturnExDiv     = "retx"
	ColLogSize         = "log_size"
	ColLogBM           = "log_bm"
	ColReturn12To2     = "return_12_2"
	ColLogIssues12     = "log_issues_12"
	ColAccruals        = "accruals"
	ColROA             = "roa"
	ColLogAssetsGrowth = "log_assets_growth"
	ColDividendYield   = "dy"
	ColLogReturn13To36 = "log_return_13_36"
	ColLogIssues36     = "log_issues_36"
	ColBeta            = "beta"
	ColStdDev12        = "std_12"
	ColDebtPrice       = "debt_price"
	ColSalesPrice      = "sales_price"
)

// FactorColumns lists the predictor columns in canonical order.
var FactorColumns = []string{
	ColLogSize,
	ColLogBM,
	ColReturn12To2,
	ColLogIssues12,
	ColAccruals,
	ColROA,
	ColLogAssetsGrowth,
	ColDividendYield,
	ColLogReturn13To36,
	ColLogIssues36,
	ColBeta,
	ColStdDev12,
	ColDebtPrice,
	ColSalesPrice,
}

// TableColumns lists the dependent variable followed by the predictors,
// the column set winsorization and the summary tables work over.
var TableColumns = append([]string{ColReturnExDiv}, FactorColumns...)

// FactorRow is one security-month of the merged panel with the derived
// predictor columns. Corresponds to the factor_panel table in ClickHouse.
type FactorRow struct {
	Permno int
	Date   time.Time

	// monthly security fields
	Return       float64
	ReturnExDiv  float64
	Price        float64
	SharesOut    float64
	PrimaryExch  string
	MarketEquity float64 // price times shares outstanding, $ thousands

	// fundamentals attached by the merge; GVKey is empty and the
	// numeric fields are NaN when no link matched
	GVKey      string
	DataDate   time.Time // fiscal period end of the attached row
	ReportDate time.Time // date the attached row became known
	BookEquity float64
	Assets     float64
	TotalDebt  float64 // dlc plus dltt
	Sales      float64

	// derived predictor columns
	LogSize         float64
	LogBM           float64
	Return12To2     float64
	LogIssues12     float64
	Accruals        float64
	ROA             float64
	LogAssetsGrowth float64
	DividendYield   float64
	LogReturn13To36 float64
	LogIssues36     float64
	Beta            float64
	StdDev12        float64
	DebtPrice       float64
	SalesPrice      float64
}

// NewFactorRow returns a row for (permno, date) with every numeric column
// missing. Builders overwrite the columns they can compute.
func NewFactorRow(permno int, date time.Time) FactorRow {
	nan := math.NaN()
	return FactorRow{
		Permno: permno,
		Date:   date,

		Return:       nan,
		ReturnExDiv:  nan,
		Price:        nan,
		SharesOut:    nan,
		MarketEquity: nan,

		BookEquity: nan,
		Assets:     nan,
		TotalDebt:  nan,
		Sales:      nan,

		LogSize:         nan,
		LogBM:           nan,
		Return12To2:     nan,
		LogIssues12:     nan,
		Accruals:        nan,
		ROA:             nan,
		LogAssetsGrowth: nan,
		DividendYield:   nan,
		LogReturn13To36: nan,
		LogIssues36:     nan,
		Beta:            nan,
		StdDev12:        nan,
		DebtPrice:       nan,
		SalesPrice:      nan,
	}
}

// FactorValue returns the named column of r. It panics on an unknown
// column name, which is a programming error.
func (r *FactorRow) FactorValue(col string) float64 {
	switch col {
	case ColReturnExDiv:
		return r.ReturnExDiv
	case ColLogSize:
		return r.LogSize
	case ColLogBM:
		return r.LogBM
	case ColReturn12To2:
		return r.Return12To2
	case ColLogIssues12:
		return r.LogIssues12
	case ColAccruals:
		return r.Accruals
	case ColROA:
		return r.ROA
	case ColLogAssetsGrowth:
		return r.LogAssetsGrowth
	case ColDividendYield:
		return r.DividendYield
	case ColLogReturn13To36:
		return r.LogReturn13To36
	case ColLogIssues36:
		return r.LogIssues36
	case ColBeta:
		return r.Beta
	case ColStdDev12:
		return r.StdDev12
	case ColDebtPrice:
		return r.DebtPrice
	case ColSalesPrice:
		return r.SalesPrice
	}
	panic(fmt.Sprintf("domain: unknown factor column %q", col))
}

// SetFactorValue overwrites the named column of r. It panics on an unknown
// column name.
func (r *FactorRow) SetFactorValue(col string, v float64) {
	switch col {
	case ColReturnExDiv:
		r.ReturnExDiv = v
	case ColLogSize:
		r.LogSize = v
	case ColLogBM:
		r.LogBM = v
	case ColReturn12To2:
		r.Return12To2 = v
	case ColLogIssues12:
		r.LogIssues12 = v
	case ColAccruals:
		r.Accruals = v
	case ColROA:
		r.ROA = v
	case ColLogAssetsGrowth:
		r.LogAssetsGrowth = v
	case ColDividendYield:
		r.DividendYield = v
	case ColLogReturn13To36:
		r.LogReturn13To36 = v
	case ColLogIssues36:
		r.LogIssues36 = v
	case ColBeta:
		r.Beta = v
	case ColStdDev12:
		r.StdDev12 = v
	case ColDebtPrice:
		r.DebtPrice = v
	case ColSalesPrice:
		r.SalesPrice = v
	default:
		panic(fmt.Sprintf("domain: unknown factor column %q", col))
	}
}
