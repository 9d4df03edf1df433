package wrds

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"equity-factor-lab/internal/domain"
)

// Dataset queries against the WRDS schemas. The CRSP filters restrict the
// files to ordinary US common shares on NYSE, AMEX and NASDAQ with a
// regular trading status; the Compustat filters select the standard
// consolidated industrial annual view.
const (
	monthlyStockSQL = `
		SELECT permno, mthcaldt, mthret, mthretx, mthprc, shrout, primaryexch
		FROM crsp.msf_v2
		WHERE mthcaldt BETWEEN $1 AND $2
		  AND sharetype = 'NS'
		  AND securitytype = 'EQTY'
		  AND securitysubtype = 'COM'
		  AND usincflg = 'Y'
		  AND issuertype IN ('ACOR', 'CORP')
		  AND primaryexch IN ('N', 'A', 'Q')
		  AND conditionaltype = 'RW'
		  AND tradingstatusflg = 'A'
		ORDER BY permno, mthcaldt`

	dailyStockSQL = `
		SELECT permno, dlycaldt, dlyret, dlyretx
		FROM crsp.dsf_v2
		WHERE dlycaldt BETWEEN $1 AND $2
		  AND sharetype = 'NS'
		  AND securitytype = 'EQTY'
		  AND securitysubtype = 'COM'
		  AND usincflg = 'Y'
		  AND issuertype IN ('ACOR', 'CORP')
		  AND primaryexch IN ('N', 'A', 'Q')
		  AND conditionaltype = 'RW'
		  AND tradingstatusflg = 'A'
		ORDER BY permno, dlycaldt`

	dailyIndexSQL = `
		SELECT caldt, vwretd, vwretx
		FROM crsp.dsix
		WHERE caldt BETWEEN $1 AND $2
		ORDER BY caldt`

	fundamentalsSQL = `
		SELECT gvkey, datadate, fyear, at, seq, txditc, pstkrv, pstkl, pstk,
		       ib, dp, act, che, lct, dlc, txp, dltt, sale, dvc
		FROM comp.funda
		WHERE datadate BETWEEN $1 AND $2
		  AND indfmt = 'INDL'
		  AND datafmt = 'STD'
		  AND popsrc = 'D'
		  AND consol = 'C'
		ORDER BY gvkey, datadate`

	linkTableSQL = `
		SELECT gvkey, lpermno AS permno, linkdt, linkenddt
		FROM crsp.ccmxpf_linktable
		WHERE linktype IN ('LU', 'LC')
		  AND linkprim IN ('P', 'C')
		  AND lpermno IS NOT NULL
		ORDER BY gvkey, linkdt`
)

// Client implements Service over a pgx connection pool.
type Client struct {
	pool *pgxpool.Pool
}

var _ Service = (*Client)(nil)

// NewClient parses the DSN and builds the connection pool. The pool dials
// lazily on first query, so a run served entirely from the cache performs
// no network I/O and never presents the credentials.
func NewClient(ctx context.Context, dsn string) (*Client, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse wrds dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create wrds pool: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Close closes the connection pool.
func (c *Client) Close() {
	c.pool.Close()
}

// MonthlyStock retrieves the CRSP monthly common-stock file.
func (c *Client) MonthlyStock(ctx context.Context, start, end time.Time) ([]domain.SecurityMonth, error) {
	rows, err := c.pool.Query(ctx, monthlyStockSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("query crsp monthly stock: %w", err)
	}
	defer rows.Close()

	var out []domain.SecurityMonth
	for rows.Next() {
		var (
			permno                int
			date                  time.Time
			ret, retx, prc, shout *float64
		)
		var exch string
		if err := rows.Scan(&permno, &date, &ret, &retx, &prc, &shout, &exch); err != nil {
			return nil, fmt.Errorf("scan crsp monthly row: %w", err)
		}
		out = append(out, domain.SecurityMonth{
			Permno:      permno,
			Date:        date,
			Return:      floatValue(ret),
			ReturnExDiv: floatValue(retx),
			Price:       floatValue(prc),
			SharesOut:   floatValue(shout),
			PrimaryExch: exch,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crsp monthly stock: %w", err)
	}
	return out, nil
}

// DailyStock retrieves the CRSP daily common-stock file.
func (c *Client) DailyStock(ctx context.Context, start, end time.Time) ([]domain.SecurityDay, error) {
	rows, err := c.pool.Query(ctx, dailyStockSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("query crsp daily stock: %w", err)
	}
	defer rows.Close()

	var out []domain.SecurityDay
	for rows.Next() {
		var (
			permno    int
			date      time.Time
			ret, retx *float64
		)
		if err := rows.Scan(&permno, &date, &ret, &retx); err != nil {
			return nil, fmt.Errorf("scan crsp daily row: %w", err)
		}
		out = append(out, domain.SecurityDay{
			Permno:      permno,
			Date:        date,
			Return:      floatValue(ret),
			ReturnExDiv: floatValue(retx),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crsp daily stock: %w", err)
	}
	return out, nil
}

// DailyIndex retrieves the CRSP value-weighted daily market index.
func (c *Client) DailyIndex(ctx context.Context, start, end time.Time) ([]domain.IndexDay, error) {
	rows, err := c.pool.Query(ctx, dailyIndexSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("query crsp daily index: %w", err)
	}
	defer rows.Close()

	var out []domain.IndexDay
	for rows.Next() {
		var (
			date           time.Time
			vwretd, vwretx *float64
		)
		if err := rows.Scan(&date, &vwretd, &vwretx); err != nil {
			return nil, fmt.Errorf("scan crsp index row: %w", err)
		}
		out = append(out, domain.IndexDay{
			Date:        date,
			Return:      floatValue(vwretd),
			ReturnExDiv: floatValue(vwretx),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crsp daily index: %w", err)
	}
	return out, nil
}

// Fundamentals retrieves the Compustat annual fundamentals file.
func (c *Client) Fundamentals(ctx context.Context, start, end time.Time) ([]domain.Fundamentals, error) {
	rows, err := c.pool.Query(ctx, fundamentalsSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("query compustat fundamentals: %w", err)
	}
	defer rows.Close()

	var out []domain.Fundamentals
	for rows.Next() {
		var (
			gvkey    string
			datadate time.Time
			fyear    *int
		)
		cols := make([]*float64, 16)
		dest := []any{&gvkey, &datadate, &fyear}
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan compustat row: %w", err)
		}
		f := domain.Fundamentals{
			GVKey:          gvkey,
			DataDate:       datadate,
			Assets:         floatValue(cols[0]),
			Equity:         floatValue(cols[1]),
			DeferredTaxes:  floatValue(cols[2]),
			PreferredRedem: floatValue(cols[3]),
			PreferredLiq:   floatValue(cols[4]),
			PreferredPar:   floatValue(cols[5]),
			Income:         floatValue(cols[6]),
			Depreciation:   floatValue(cols[7]),
			CurrentAssets:  floatValue(cols[8]),
			Cash:           floatValue(cols[9]),
			CurrentLiab:    floatValue(cols[10]),
			DebtCurrent:    floatValue(cols[11]),
			TaxesPayable:   floatValue(cols[12]),
			DebtLongTerm:   floatValue(cols[13]),
			Sales:          floatValue(cols[14]),
			Dividends:      floatValue(cols[15]),
			BookEquity:     math.NaN(),
		}
		if fyear != nil {
			f.FiscalYear = *fyear
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compustat fundamentals: %w", err)
	}
	return out, nil
}

// LinkTable retrieves the CRSP/Compustat link table.
func (c *Client) LinkTable(ctx context.Context) ([]domain.LinkRow, error) {
	rows, err := c.pool.Query(ctx, linkTableSQL)
	if err != nil {
		return nil, fmt.Errorf("query link table: %w", err)
	}
	defer rows.Close()

	var out []domain.LinkRow
	for rows.Next() {
		var (
			gvkey   string
			permno  int
			linkdt  time.Time
			linkend *time.Time
		)
		if err := rows.Scan(&gvkey, &permno, &linkdt, &linkend); err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		l := domain.LinkRow{
			GVKey:     gvkey,
			Permno:    permno,
			LinkStart: linkdt,
		}
		if linkend != nil {
			l.LinkEnd = *linkend
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link table: %w", err)
	}
	return out, nil
}

// floatValue maps a nullable column to the NaN missing-value convention.
func floatValue(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
