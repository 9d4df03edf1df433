package subsets

import (
	"math"
	"sort"

	"equity-factor-lab/internal/domain"
)

const (
	winsorLow  = 0.01
	winsorHigh = 0.99

	// winsorMinObs is the fewest present values a month needs before its
	// percentiles mean anything.
	winsorMinObs = 5
)

// Winsorize clamps the named columns to their cross-sectional 1st and
// 99th percentiles month by month, in place. A column is left alone in
// months where fewer than winsorMinObs values are present. Missing values
// stay missing.
func Winsorize(panel []domain.FactorRow, columns []string) {
	byMonth := make(map[int][]int)
	for i, r := range panel {
		m := domain.MonthIndex(r.Date)
		byMonth[m] = append(byMonth[m], i)
	}

	for _, idxs := range byMonth {
		for _, col := range columns {
			vals := make([]float64, 0, len(idxs))
			for _, i := range idxs {
				if v := panel[i].FactorValue(col); !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}
			if len(vals) < winsorMinObs {
				continue
			}
			sort.Float64s(vals)
			low := percentile(vals, winsorLow)
			high := percentile(vals, winsorHigh)

			for _, i := range idxs {
				v := panel[i].FactorValue(col)
				switch {
				case math.IsNaN(v):
				case v < low:
					panel[i].SetFactorValue(col, low)
				case v > high:
					panel[i].SetFactorValue(col, high)
				}
			}
		}
	}
}
