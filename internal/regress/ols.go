package regress

import "math"

// olsFit regresses y on the columns of x by ordinary least squares through
// the normal equations. x holds one row per observation, intercept column
// included; the returned coefficients follow x's column order. ok is false
// when the normal equations are singular.
func olsFit(y []float64, x [][]float64) (coef []float64, ok bool) {
	p := len(x[0])

	// Build the augmented system [X'X | X'y], upper triangle first.
	aug := make([][]float64, p)
	for i := range aug {
		aug[i] = make([]float64, p+1)
	}
	for r, row := range x {
		for i := 0; i < p; i++ {
			for j := i; j < p; j++ {
				aug[i][j] += row[i] * row[j]
			}
			aug[i][p] += row[i] * y[r]
		}
	}
	for i := 1; i < p; i++ {
		for j := 0; j < i; j++ {
			aug[i][j] = aug[j][i]
		}
	}
	return solveLinear(aug)
}

// solveLinear solves the augmented system [A | b] in place by Gaussian
// elimination with partial pivoting. ok is false when A is singular.
func solveLinear(aug [][]float64) ([]float64, bool) {
	n := len(aug)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if aug[pivot][col] == 0 {
			return nil, false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for r := col + 1; r < n; r++ {
			factor := aug[r][col] / aug[col][col]
			if factor == 0 {
				continue
			}
			for c := col; c <= n; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	coef := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := aug[i][n]
		for j := i + 1; j < n; j++ {
			sum -= aug[i][j] * coef[j]
		}
		coef[i] = sum / aug[i][i]
	}
	return coef, true
}

// rSquared is the centered coefficient of determination of the fitted
// coefficients over the observations they were fitted on.
func rSquared(y []float64, x [][]float64, coef []float64) float64 {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var sse, sst float64
	for r, row := range x {
		var fitted float64
		for j, c := range coef {
			fitted += c * row[j]
		}
		resid := y[r] - fitted
		sse += resid * resid
		dev := y[r] - mean
		sst += dev * dev
	}
	return 1 - sse/sst
}
