// Package domain holds the plain data structures shared across the pipeline.
//
// Missing numeric values are NaN in memory. Codecs translate them to empty
// CSV fields and SQL NULLs at the storage boundaries.
package domain

import "time"

// Primary exchange codes as reported by CRSP.
const (
	ExchangeNYSE   = "N"
	ExchangeAMEX   = "A"
	ExchangeNASDAQ = "Q"
)

// SecurityMonth is one security-month observation from the CRSP monthly file.
// Immutable once cached.
type SecurityMonth struct {
	Permno      int       // CRSP permanent security identifier
	Date        time.Time // month-end calendar date (mthcaldt)
	Return      float64   // total monthly return (mthret), NaN if missing
	ReturnExDiv float64   // monthly return without dividends (mthretx), NaN if missing
	Price       float64   // month-end price (mthprc), NaN if missing
	SharesOut   float64   // shares outstanding in thousands (shrout), NaN if missing
	PrimaryExch string    // primary exchange code (N, A, Q)
}

// SecurityDay is one security-day observation from the CRSP daily file.
type SecurityDay struct {
	Permno      int       // CRSP permanent security identifier
	Date        time.Time // calendar date (dlycaldt)
	Return      float64   // daily total return (dlyret), NaN if missing
	ReturnExDiv float64   // daily return without dividends (dlyretx), NaN if missing
}

// IndexDay is one day of the CRSP value-weighted market index.
type IndexDay struct {
	Date        time.Time // calendar date (caldt)
	Return      float64   // value-weighted return with dividends (vwretd)
	ReturnExDiv float64   // value-weighted return without dividends (vwretx)
}
