package domain

import "time"

// Fundamentals is one firm-fiscal-year observation from the Compustat
// annual file. Amounts are in $ millions. Immutable once cached.
type Fundamentals struct {
	GVKey          string    // Compustat firm identifier
	DataDate       time.Time // fiscal period end date (datadate)
	FiscalYear     int       // fiscal year (fyear)
	Assets         float64   // total assets (at)
	Equity         float64   // stockholders equity (seq)
	DeferredTaxes  float64   // deferred taxes and investment tax credit (txditc)
	PreferredRedem float64   // preferred stock redemption value (pstkrv)
	PreferredLiq   float64   // preferred stock liquidating value (pstkl)
	PreferredPar   float64   // preferred stock par value (pstk)
	Income         float64   // income before extraordinary items (ib)
	Depreciation   float64   // depreciation and amortization (dp)
	CurrentAssets  float64   // total current assets (act)
	Cash           float64   // cash and short-term investments (che)
	CurrentLiab    float64   // total current liabilities (lct)
	DebtCurrent    float64   // debt in current liabilities (dlc)
	TaxesPayable   float64   // income taxes payable (txp)
	DebtLongTerm   float64   // long-term debt (dltt)
	Sales          float64   // net sales (sale)
	Dividends      float64   // common dividends (dvc)

	BookEquity float64   // derived book equity, NaN until computed
	Accruals   float64   // derived accruals over average assets, NaN until computed
	ROA        float64   // derived income over assets, NaN until computed
	ReportDate time.Time // datadate plus the reporting lag, zero until computed
}

// LinkRow maps a Compustat firm to a CRSP security over a validity range.
// A zero LinkEnd means the link is still open. Never mutated after fetch.
type LinkRow struct {
	GVKey     string    // Compustat firm identifier
	Permno    int       // CRSP permanent security identifier
	LinkStart time.Time // first date the link is valid (linkdt)
	LinkEnd   time.Time // last date the link is valid (linkenddt), zero if open
}

// Covers reports whether the link is valid on date d.
func (l LinkRow) Covers(d time.Time) bool {
	if d.Before(l.LinkStart) {
		return false
	}
	return l.LinkEnd.IsZero() || !d.After(l.LinkEnd)
}
