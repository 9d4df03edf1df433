package reporting

import (
	"math"
	"time"

	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/regress"
	"equity-factor-lab/internal/subsets"
)

const (
	// rollingWindowMonths spans the rolling slope average behind Figure 1;
	// rollingMinMonths is the fewest estimates a window needs before it
	// reports.
	rollingWindowMonths = 120
	rollingMinMonths    = 60
)

// figureVariables are the slopes Figure 1 tracks, with legend labels.
var figureVariables = []Variable{
	{"B/M", domain.ColLogBM},
	{"Ret12", domain.ColReturn12To2},
	{"Issue36", domain.ColLogIssues36},
	{"Accruals", domain.ColAccruals},
	{"Log AG", domain.ColLogAssetsGrowth},
}

// figureUniverses are the two panels Figure 1 shows.
var figureUniverses = []string{subsets.AllStocks, subsets.LargeStocks}

// Generator assembles the report from the universe panels.
type Generator struct {
	universes map[string][]domain.FactorRow
	now       func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a report generator over the subset panels.
func NewGenerator(universes map[string][]domain.FactorRow) *Generator {
	return &Generator{
		universes: universes,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the full report.
func (g *Generator) Generate() *Report {
	return &Report{
		GeneratedAt: g.now(),
		Table1:      g.buildTable1(),
		Table2:      g.buildTable2(),
		Figures:     g.buildFigures(),
	}
}

// buildTable1 summarizes every variable within every universe.
func (g *Generator) buildTable1() Table1 {
	t1 := Table1{Universes: subsets.Names}
	for _, v := range Variables() {
		row := Table1Row{Label: v.Label}
		for _, name := range subsets.Names {
			row.Cells = append(row.Cells, summarizeColumn(g.universes[name], v.Column))
		}
		t1.Rows = append(t1.Rows, row)
	}
	return t1
}

// summarizeColumn computes one Table 1 cell: the time-series average of
// the monthly cross-sectional mean and sample standard deviation of the
// column, and the count of distinct securities the column was ever
// observed for. Single-security months contribute no standard deviation.
func summarizeColumn(panel []domain.FactorRow, column string) Table1Cell {
	byMonth := make(map[int][]float64)
	permnos := make(map[int]struct{})
	for i := range panel {
		v := panel[i].FactorValue(column)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		m := domain.MonthIndex(panel[i].Date)
		byMonth[m] = append(byMonth[m], v)
		permnos[panel[i].Permno] = struct{}{}
	}

	cell := Table1Cell{Avg: math.NaN(), Std: math.NaN(), N: len(permnos)}
	if len(byMonth) == 0 {
		return cell
	}

	var meanSum, stdSum float64
	stdMonths := 0
	for _, vals := range byMonth {
		meanSum += meanOf(vals)
		if sd, ok := sampleStd(vals); ok {
			stdSum += sd
			stdMonths++
		}
	}
	cell.Avg = meanSum / float64(len(byMonth))
	if stdMonths > 0 {
		cell.Std = stdSum / float64(stdMonths)
	}
	return cell
}

// buildTable2 estimates every model on every universe.
func (g *Generator) buildTable2() Table2 {
	t2 := Table2{Universes: subsets.Names}
	for _, model := range regress.Models() {
		block := Table2Block{Model: model.Name}
		for _, col := range model.Predictors {
			block.Predictors = append(block.Predictors, Label(col))
		}
		for _, name := range subsets.Names {
			res := regress.MonthlyCrossSection(g.universes[name], model.Predictors)
			s := regress.FamaMacBeth(res, model.Predictors)
			block.Columns = append(block.Columns, Table2Column{
				Coef:   s.Coef,
				TStat:  s.TStat,
				MeanR2: s.MeanR2,
				MeanN:  s.MeanN,
			})
		}
		t2.Blocks = append(t2.Blocks, block)
	}
	return t2
}

// buildFigures runs the five-predictor monthly regressions for the figure
// panels and smooths the slopes with the rolling window. Universes with
// no estimable months contribute no panel.
func (g *Generator) buildFigures() []FigureSeries {
	columns := make([]string, len(figureVariables))
	labels := make([]string, len(figureVariables))
	for i, v := range figureVariables {
		columns[i] = v.Column
		labels[i] = v.Label
	}

	var out []FigureSeries
	for _, name := range figureUniverses {
		res := regress.MonthlyCrossSection(g.universes[name], columns)
		if len(res) == 0 {
			continue
		}

		history := make([][]float64, len(columns))
		for j := range history {
			history[j] = make([]float64, len(res))
			for i, r := range res {
				history[j][i] = r.Slopes[j]
			}
		}

		s := FigureSeries{Universe: name, Labels: labels}
		for i, r := range res {
			vals := make([]float64, len(columns))
			for j := range columns {
				vals[j] = rollingMean(history[j], i)
			}
			s.Months = append(s.Months, r.Month)
			s.Values = append(s.Values, vals)
		}
		out = append(out, s)
	}
	return out
}

// rollingMean averages the trailing window ending at position i, or NaN
// while the window holds too few estimates.
func rollingMean(series []float64, i int) float64 {
	lo := i - rollingWindowMonths + 1
	if lo < 0 {
		lo = 0
	}
	window := series[lo : i+1]
	if len(window) < rollingMinMonths {
		return math.NaN()
	}
	return meanOf(window)
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd is the n-1 standard deviation; ok is false with fewer than
// two values.
func sampleStd(vals []float64) (float64, bool) {
	if len(vals) < 2 {
		return 0, false
	}
	mean := meanOf(vals)
	var sumSq float64
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1)), true
}
