// Package regress runs the monthly cross-sectional return regressions and
// summarizes them Fama-MacBeth style with Newey-West standard errors.
package regress

import (
	"math"
	"sort"
	"time"

	"equity-factor-lab/internal/domain"
)

const (
	// nwLags is how many lags of serial correlation the Newey-West
	// standard error allows for.
	nwLags = 4

	// minMonths is the fewest monthly slope estimates a predictor needs
	// before its Fama-MacBeth average means anything.
	minMonths = 10
)

// MonthResult is one month's cross-sectional regression estimate.
type MonthResult struct {
	Month  time.Time
	Slopes []float64 // one per predictor, in the model's order
	R2     float64
	N      int
}

// Summary is the Fama-MacBeth time-series summary of a model's monthly
// cross-sectional regressions.
type Summary struct {
	Coef   []float64 // mean monthly slope per predictor
	TStat  []float64 // mean over its Newey-West standard error
	MeanR2 float64
	MeanN  float64
	Months int
}

// MonthlyCrossSection regresses the ex-dividend return on an intercept and
// the named predictors within every month, using only rows where the
// return and every predictor are present. Months with fewer complete rows
// than regression coefficients, and months whose cross section is
// singular, yield no estimate. Results come back in chronological order.
func MonthlyCrossSection(panel []domain.FactorRow, predictors []string) []MonthResult {
	type crossSection struct {
		date time.Time
		y    []float64
		x    [][]float64
	}
	byMonth := make(map[int]*crossSection)

	for _, r := range panel {
		if math.IsNaN(r.ReturnExDiv) {
			continue
		}
		row := make([]float64, 1+len(predictors))
		row[0] = 1
		complete := true
		for j, col := range predictors {
			v := r.FactorValue(col)
			if math.IsNaN(v) {
				complete = false
				break
			}
			row[j+1] = v
		}
		if !complete {
			continue
		}

		m := domain.MonthIndex(r.Date)
		cs := byMonth[m]
		if cs == nil {
			cs = &crossSection{date: r.Date}
			byMonth[m] = cs
		}
		cs.y = append(cs.y, r.ReturnExDiv)
		cs.x = append(cs.x, row)
	}

	months := make([]int, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Ints(months)

	out := make([]MonthResult, 0, len(months))
	for _, m := range months {
		cs := byMonth[m]
		if len(cs.y) < len(predictors)+1 {
			continue
		}
		coef, ok := olsFit(cs.y, cs.x)
		if !ok {
			continue
		}
		out = append(out, MonthResult{
			Month:  cs.date,
			Slopes: coef[1:],
			R2:     rSquared(cs.y, cs.x, coef),
			N:      len(cs.y),
		})
	}
	return out
}

// FamaMacBeth averages the monthly slopes and attaches Newey-West
// t-statistics. With fewer than minMonths estimated months the
// coefficients and t-statistics stay missing; mean R squared and mean
// cross-section size average over every estimated month regardless.
func FamaMacBeth(results []MonthResult, predictors []string) Summary {
	k := len(predictors)
	s := Summary{
		Coef:   nanSlice(k),
		TStat:  nanSlice(k),
		MeanR2: math.NaN(),
		MeanN:  math.NaN(),
		Months: len(results),
	}
	if len(results) == 0 {
		return s
	}

	if len(results) >= minMonths {
		series := make([]float64, len(results))
		for j := 0; j < k; j++ {
			for i, r := range results {
				series[i] = r.Slopes[j]
			}
			mean := meanOf(series)
			s.Coef[j] = mean
			s.TStat[j] = mean / neweyWestSE(series, nwLags)
		}
	}

	r2s := make([]float64, 0, len(results))
	ns := make([]float64, 0, len(results))
	for _, r := range results {
		if !math.IsNaN(r.R2) {
			r2s = append(r2s, r.R2)
		}
		ns = append(ns, float64(r.N))
	}
	if len(r2s) > 0 {
		s.MeanR2 = meanOf(r2s)
	}
	s.MeanN = meanOf(ns)
	return s
}

// neweyWestSE is the Newey-West standard error of the mean of the series,
// allowing for serial correlation up to lags. The lag-k autocovariance is
// weighted 1 - k/T.
func neweyWestSE(series []float64, lags int) float64 {
	t := len(series)
	if t < 2 {
		return math.NaN()
	}
	mean := meanOf(series)
	u := make([]float64, t)
	for i, v := range series {
		u[i] = v - mean
	}

	var gamma0 float64
	for _, v := range u {
		gamma0 += v * v
	}

	var sum float64
	for k := 1; k <= lags; k++ {
		weight := 1 - float64(k)/float64(t)
		if weight < 0 {
			break
		}
		var gamma float64
		for i := k; i < t; i++ {
			gamma += u[i] * u[i-k]
		}
		sum += weight * gamma
	}
	return math.Sqrt((gamma0 + 2*sum) / float64(t*t))
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
