// Package reporting assembles and renders the research outputs: summary
// statistics (Table 1), Fama-MacBeth regression tables (Table 2), and the
// ten-year rolling slope series behind Figure 1.
package reporting

import (
	"time"

	"equity-factor-lab/internal/domain"
)

// Variable pairs a display label with its panel column.
type Variable struct {
	Label  string
	Column string
}

// Variables lists the reported variables in table order, the dependent
// return first and then the fourteen predictors.
func Variables() []Variable {
	return []Variable{
		{"Return (%)", domain.ColReturnExDiv},
		{"Log Size (-1)", domain.ColLogSize},
		{"Log B/M (-1)", domain.ColLogBM},
		{"Return (-2, -12)", domain.ColReturn12To2},
		{"Log Issues (-1,-12)", domain.ColLogIssues12},
		{"Accruals (-1)", domain.ColAccruals},
		{"ROA (-1)", domain.ColROA},
		{"Log Assets Growth (-1)", domain.ColLogAssetsGrowth},
		{"Dividend Yield (-1,-12)", domain.ColDividendYield},
		{"Log Return (-13,-36)", domain.ColLogReturn13To36},
		{"Log Issues (-1,-36)", domain.ColLogIssues36},
		{"Beta (-1,-36)", domain.ColBeta},
		{"Std Dev (-1,-12)", domain.ColStdDev12},
		{"Debt/Price (-1)", domain.ColDebtPrice},
		{"Sales/Price (-1)", domain.ColSalesPrice},
	}
}

// Label returns the display label for a panel column, or the column name
// itself when it has none.
func Label(column string) string {
	for _, v := range Variables() {
		if v.Column == column {
			return v.Label
		}
	}
	return column
}

// Report is the full set of research outputs for one run.
type Report struct {
	GeneratedAt time.Time
	Table1      Table1
	Table2      Table2
	Figures     []FigureSeries
}

// Table1 is the summary-statistics table: one row per variable, one cell
// per universe.
type Table1 struct {
	Universes []string
	Rows      []Table1Row
}

// Table1Row is one variable's summary across the universes.
type Table1Row struct {
	Label string
	Cells []Table1Cell // aligned with Table1.Universes
}

// Table1Cell is one universe's time-series summary of a variable.
type Table1Cell struct {
	Avg float64 // time-series average of monthly cross-sectional means
	Std float64 // time-series average of monthly cross-sectional stds
	N   int     // distinct securities ever observed for the variable
}

// Table2 is the Fama-MacBeth regression table, one block per model.
type Table2 struct {
	Universes []string
	Blocks    []Table2Block
}

// Table2Block is one model's estimates across the universes.
type Table2Block struct {
	Model      string
	Predictors []string       // display labels, row order
	Columns    []Table2Column // aligned with Table2.Universes
}

// Table2Column is one universe's Fama-MacBeth summary for a model.
type Table2Column struct {
	Coef   []float64 // aligned with Table2Block.Predictors
	TStat  []float64
	MeanR2 float64
	MeanN  float64
}

// FigureSeries is one panel of ten-year rolling average slopes.
type FigureSeries struct {
	Universe string
	Labels   []string // legend labels, column order
	Months   []time.Time
	Values   [][]float64 // per month, aligned with Labels; NaN until the window fills
}
