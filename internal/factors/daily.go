package factors

import (
	"math"
	"sort"
	"time"

	"equity-factor-lab/internal/domain"
)

const (
	// betaWindowWeeks is the trailing span of weekly returns behind beta.
	betaWindowWeeks = 156
	// betaMinWeeks is the fewest paired weeks beta accepts.
	betaMinWeeks = 52

	// stdWindowDays is the trailing span of daily returns behind the
	// volatility column, also its annualization base.
	stdWindowDays = 252
	// stdMinObs is the fewest daily observations volatility accepts.
	stdMinObs = 100
)

// dailyWindows answers trailing-window questions over one security's daily
// history. Rows must be pre-sorted by date.
type dailyWindows struct {
	dates []time.Time
	retx  []float64
	weeks map[int]float64 // week -> sum of daily log returns
}

func newDailyWindows(days []domain.SecurityDay) *dailyWindows {
	d := &dailyWindows{
		dates: make([]time.Time, 0, len(days)),
		retx:  make([]float64, 0, len(days)),
		weeks: make(map[int]float64),
	}
	for _, row := range days {
		d.dates = append(d.dates, row.Date)
		d.retx = append(d.retx, row.ReturnExDiv)
		d.weeks[domain.WeekIndex(row.Date)] += safeLog(1 + row.ReturnExDiv)
	}
	return d
}

// weeklyIndexReturns folds daily index returns into per-week sums of log
// returns on the same week axis the security returns use.
func weeklyIndexReturns(days []domain.IndexDay) map[int]float64 {
	weeks := make(map[int]float64)
	for _, d := range days {
		weeks[domain.WeekIndex(d.Date)] += safeLog(1 + d.ReturnExDiv)
	}
	return weeks
}

// beta regresses the security's weekly log returns on the index's over the
// trailing betaWindowWeeks complete weeks before the given month. A week
// enters only when both sides traded it cleanly; fewer than betaMinWeeks
// usable weeks, or an index with no variance, leaves beta missing.
func (d *dailyWindows) beta(month time.Time, indexWeeks map[int]float64) float64 {
	endWeek := lastCompleteWeek(month)

	var xs, ys [betaWindowWeeks]float64
	n := 0
	sx, sy := 0.0, 0.0
	for w := endWeek - betaWindowWeeks + 1; w <= endWeek; w++ {
		x, okx := indexWeeks[w]
		y, oky := d.weeks[w]
		if !okx || !oky || math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs[n], ys[n] = x, y
		sx += x
		sy += y
		n++
	}
	if n < betaMinWeeks {
		return math.NaN()
	}

	meanX, meanY := sx/float64(n), sy/float64(n)
	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return math.NaN()
	}
	return sxy / sxx
}

// stdDev returns the annualized standard deviation of daily returns over
// the trailing stdWindowDays trading days before the given month. Missing
// daily returns inside the window are skipped; fewer than stdMinObs usable
// observations leave the result missing.
func (d *dailyWindows) stdDev(month time.Time) float64 {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	hi := sort.Search(len(d.dates), func(i int) bool { return !d.dates[i].Before(first) })
	lo := hi - stdWindowDays
	if lo < 0 {
		lo = 0
	}

	sum, n := 0.0, 0
	for i := lo; i < hi; i++ {
		if v := d.retx[i]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n < stdMinObs {
		return math.NaN()
	}
	mean := sum / float64(n)

	sumSq := 0.0
	for i := lo; i < hi; i++ {
		if v := d.retx[i]; !math.IsNaN(v) {
			diff := v - mean
			sumSq += diff * diff
		}
	}
	return math.Sqrt(sumSq / float64(n-1) * stdWindowDays)
}

// lastCompleteWeek returns the newest week that closed before the month
// began.
func lastCompleteWeek(month time.Time) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return domain.WeekIndex(first.AddDate(0, 0, -7))
}
