package regress

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-factor-lab/internal/domain"
)

var twoPredictors = []string{domain.ColLogSize, domain.ColLogBM}

// csRow builds a panel row carrying the return and the two test
// predictors.
func csRow(permno int, date time.Time, retx, size, bm float64) domain.FactorRow {
	r := domain.NewFactorRow(permno, date)
	r.ReturnExDiv = retx
	r.LogSize = size
	r.LogBM = bm
	return r
}

func TestMonthlyCrossSectionRecoversSlopes(t *testing.T) {
	date := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	sizes := []float64{1, 2, 3, 4, 5}
	bms := []float64{1, 4, 2, 8, 5}
	var panel []domain.FactorRow
	for i := range sizes {
		retx := 0.01 + 0.02*sizes[i] - 0.005*bms[i]
		panel = append(panel, csRow(i+1, date, retx, sizes[i], bms[i]))
	}

	res := MonthlyCrossSection(panel, twoPredictors)
	require.Len(t, res, 1)
	assert.Equal(t, date, res[0].Month)
	assert.Equal(t, 5, res[0].N)
	assert.InDelta(t, 0.02, res[0].Slopes[0], 1e-9)
	assert.InDelta(t, -0.005, res[0].Slopes[1], 1e-9)
	assert.InDelta(t, 1.0, res[0].R2, 1e-9)
}

func TestMonthlyCrossSectionSkipsThinMonths(t *testing.T) {
	jan := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)
	panel := []domain.FactorRow{
		csRow(1, jan, 0.01, 1, 2),
		csRow(2, jan, 0.02, 2, 1),
		csRow(1, feb, 0.01, 1, 2),
		csRow(2, feb, 0.02, 2, 1),
		csRow(3, feb, 0.03, 3, 3),
	}

	// Two predictors need three complete rows; January has two.
	res := MonthlyCrossSection(panel, twoPredictors)
	require.Len(t, res, 1)
	assert.Equal(t, domain.MonthIndex(feb), domain.MonthIndex(res[0].Month))
}

func TestMonthlyCrossSectionDropsIncompleteRows(t *testing.T) {
	date := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	sizes := []float64{1, 2, 3, 4}
	bms := []float64{1, 4, 2, 8}
	var panel []domain.FactorRow
	for i := range sizes {
		panel = append(panel, csRow(i+1, date, 0.01*float64(i+1), sizes[i], bms[i]))
	}
	panel = append(panel,
		csRow(5, date, 0.05, 5, math.NaN()),
		csRow(6, date, math.NaN(), 6, 6),
	)

	res := MonthlyCrossSection(panel, twoPredictors)
	require.Len(t, res, 1)
	assert.Equal(t, 4, res[0].N)
}

func TestMonthlyCrossSectionSkipsSingularMonths(t *testing.T) {
	date := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	var panel []domain.FactorRow
	for i := 1; i <= 4; i++ {
		panel = append(panel, csRow(i, date, 0.01*float64(i), float64(i), 2*float64(i)))
	}

	assert.Empty(t, MonthlyCrossSection(panel, twoPredictors))
}

func TestMonthlyCrossSectionChronological(t *testing.T) {
	jan := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)
	var panel []domain.FactorRow
	for i := 1; i <= 3; i++ {
		panel = append(panel, csRow(i, feb, 0.01*float64(i), float64(i), float64(i*i)))
	}
	for i := 1; i <= 3; i++ {
		panel = append(panel, csRow(i, jan, 0.02*float64(i), float64(i), float64(i*i)))
	}

	res := MonthlyCrossSection(panel, twoPredictors)
	require.Len(t, res, 2)
	assert.Equal(t, jan, res[0].Month)
	assert.Equal(t, feb, res[1].Month)
}

func TestNeweyWestAlternatingSeries(t *testing.T) {
	series := make([]float64, 12)
	for i := range series {
		series[i] = float64(1 + i%2) // 1, 2, 1, 2, ...
	}

	// gamma0 = 3 and the four weighted lag sums work out by hand to a
	// variance of 17/1728.
	want := math.Sqrt(17.0 / 1728.0)
	assert.InDelta(t, want, neweyWestSE(series, 4), 1e-12)
}

func TestNeweyWestShortSeries(t *testing.T) {
	assert.True(t, math.IsNaN(neweyWestSE([]float64{1}, 4)))
	assert.True(t, math.IsNaN(neweyWestSE(nil, 4)))
}

func TestFamaMacBethAveragesSlopes(t *testing.T) {
	months := make([]MonthResult, 12)
	for i := range months {
		months[i] = MonthResult{
			Month:  time.Date(2020, time.Month(i+1), 28, 0, 0, 0, 0, time.UTC),
			Slopes: []float64{float64(1 + i%2), 0.5},
			R2:     0.10 + 0.01*float64(i%2),
			N:      100 + i%2,
		}
	}

	s := FamaMacBeth(months, twoPredictors)
	require.Equal(t, 12, s.Months)
	assert.InDelta(t, 1.5, s.Coef[0], 1e-12)
	assert.InDelta(t, 1.5/math.Sqrt(17.0/1728.0), s.TStat[0], 1e-9)

	// A constant slope series has zero Newey-West variance.
	assert.InDelta(t, 0.5, s.Coef[1], 1e-12)
	assert.True(t, math.IsInf(s.TStat[1], 1))

	assert.InDelta(t, 0.105, s.MeanR2, 1e-12)
	assert.InDelta(t, 100.5, s.MeanN, 1e-12)
}

func TestFamaMacBethNeedsTenMonths(t *testing.T) {
	months := make([]MonthResult, 9)
	for i := range months {
		months[i] = MonthResult{Slopes: []float64{2}, R2: 0.3, N: 40}
	}

	s := FamaMacBeth(months, []string{domain.ColLogSize})
	assert.Equal(t, 9, s.Months)
	assert.True(t, math.IsNaN(s.Coef[0]))
	assert.True(t, math.IsNaN(s.TStat[0]))

	// The averages still cover whatever months were estimated.
	assert.InDelta(t, 0.3, s.MeanR2, 1e-12)
	assert.InDelta(t, 40.0, s.MeanN, 1e-12)
}

func TestFamaMacBethSkipsMissingRSquared(t *testing.T) {
	months := make([]MonthResult, 12)
	for i := range months {
		months[i] = MonthResult{Slopes: []float64{1}, R2: 0.2, N: 50}
	}
	months[3].R2 = math.NaN()

	s := FamaMacBeth(months, []string{domain.ColLogSize})
	assert.InDelta(t, 0.2, s.MeanR2, 1e-12)
}

func TestFamaMacBethEmpty(t *testing.T) {
	s := FamaMacBeth(nil, twoPredictors)
	assert.Equal(t, 0, s.Months)
	assert.True(t, math.IsNaN(s.Coef[0]))
	assert.True(t, math.IsNaN(s.TStat[1]))
	assert.True(t, math.IsNaN(s.MeanR2))
	assert.True(t, math.IsNaN(s.MeanN))
}

func TestModels(t *testing.T) {
	models := Models()
	require.Len(t, models, 3)

	assert.Equal(t, "Model 1: Three Predictors", models[0].Name)
	assert.Len(t, models[0].Predictors, 3)

	assert.Equal(t, "Model 2: Seven Predictors", models[1].Name)
	assert.Len(t, models[1].Predictors, 7)
	assert.Contains(t, models[1].Predictors, domain.ColLogIssues36)
	assert.NotContains(t, models[1].Predictors, domain.ColLogIssues12)

	assert.Equal(t, "Model 3: Fourteen Predictors", models[2].Name)
	assert.Equal(t, domain.FactorColumns, models[2].Predictors)
}
