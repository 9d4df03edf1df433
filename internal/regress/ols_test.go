package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOLSFitRecoversExactPlane(t *testing.T) {
	// y = 0.5 + 2a - 3b on five non-collinear points.
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 4, 2, 8, 5}
	var y []float64
	var x [][]float64
	for i := range a {
		y = append(y, 0.5+2*a[i]-3*b[i])
		x = append(x, []float64{1, a[i], b[i]})
	}

	coef, ok := olsFit(y, x)
	require.True(t, ok)
	assert.InDelta(t, 0.5, coef[0], 1e-9)
	assert.InDelta(t, 2.0, coef[1], 1e-9)
	assert.InDelta(t, -3.0, coef[2], 1e-9)
	assert.InDelta(t, 1.0, rSquared(y, x, coef), 1e-9)
}

func TestOLSFitHandWorkedLine(t *testing.T) {
	// Worked by hand: slope 0.6, intercept 0.1, R squared 0.9.
	y := []float64{0, 1, 1, 2}
	x := [][]float64{{1, 0}, {1, 1}, {1, 2}, {1, 3}}

	coef, ok := olsFit(y, x)
	require.True(t, ok)
	assert.InDelta(t, 0.1, coef[0], 1e-12)
	assert.InDelta(t, 0.6, coef[1], 1e-12)
	assert.InDelta(t, 0.9, rSquared(y, x, coef), 1e-12)
}

func TestOLSFitSingular(t *testing.T) {
	// Second column duplicates the intercept.
	y := []float64{1, 2, 3}
	x := [][]float64{{1, 1}, {1, 1}, {1, 1}}

	_, ok := olsFit(y, x)
	assert.False(t, ok)
}
