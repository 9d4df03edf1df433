package regress

import "equity-factor-lab/internal/domain"

// Model names an ordered predictor set for the cross-sectional
// regressions.
type Model struct {
	Name       string
	Predictors []string
}

// Models returns the three regression specifications the report runs, in
// report order. Model 2 widens Model 1 with the accounting predictors and
// the 36-month issuance measure; Model 3 carries all fourteen predictors.
func Models() []Model {
	return []Model{
		{
			Name: "Model 1: Three Predictors",
			Predictors: []string{
				domain.ColLogSize,
				domain.ColLogBM,
				domain.ColReturn12To2,
			},
		},
		{
			Name: "Model 2: Seven Predictors",
			Predictors: []string{
				domain.ColLogSize,
				domain.ColLogBM,
				domain.ColReturn12To2,
				domain.ColLogIssues36,
				domain.ColAccruals,
				domain.ColROA,
				domain.ColLogAssetsGrowth,
			},
		},
		{
			Name:       "Model 3: Fourteen Predictors",
			Predictors: domain.FactorColumns,
		},
	}
}
