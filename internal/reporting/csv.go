package reporting

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"
)

const csvDateLayout = "2006-01-02"

// Table1CSV renders Table 1 in long form, one record per universe and
// variable.
func Table1CSV(t1 Table1) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write([]string{"universe", "variable", "avg", "std", "n"})
	for ui, name := range t1.Universes {
		for _, row := range t1.Rows {
			c := row.Cells[ui]
			w.Write([]string{name, row.Label, csvFloat(c.Avg), csvFloat(c.Std), strconv.Itoa(c.N)})
		}
	}
	w.Flush()
	return sb.String()
}

// Table2CSV renders Table 2 in long form, one record per model, universe,
// and predictor. The mean R squared and cross-section size repeat on
// every record of a block.
func Table2CSV(t2 Table2) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write([]string{"model", "universe", "predictor", "slope", "tstat", "mean_r2", "mean_n"})
	for _, b := range t2.Blocks {
		for ui, name := range t2.Universes {
			col := b.Columns[ui]
			for pi, label := range b.Predictors {
				w.Write([]string{
					b.Model, name, label,
					csvFloat(col.Coef[pi]), csvFloat(col.TStat[pi]),
					csvFloat(col.MeanR2), csvFloat(col.MeanN),
				})
			}
		}
	}
	w.Flush()
	return sb.String()
}

// FigureCSV renders one figure panel as a month-indexed series, the
// legend labels as column headers.
func FigureCSV(s FigureSeries) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(append([]string{"month"}, s.Labels...))
	for i, month := range s.Months {
		rec := make([]string, 0, 1+len(s.Labels))
		rec = append(rec, month.Format(csvDateLayout))
		for _, v := range s.Values[i] {
			rec = append(rec, csvFloat(v))
		}
		w.Write(rec)
	}
	w.Flush()
	return sb.String()
}

// csvFloat formats a value for CSV, encoding missing as the empty field.
func csvFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
