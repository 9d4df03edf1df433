package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/storage"
)

// FactorPanelStore implements storage.FactorPanelStore using ClickHouse.
type FactorPanelStore struct {
	conn *Conn
}

// NewFactorPanelStore creates a new FactorPanelStore.
func NewFactorPanelStore(conn *Conn) *FactorPanelStore {
	return &FactorPanelStore{conn: conn}
}

var _ storage.FactorPanelStore = (*FactorPanelStore)(nil)

// InsertRows appends rows under (runID, universe) in a single batch.
func (s *FactorPanelStore) InsertRows(ctx context.Context, runID, universe string, rows []domain.FactorRow) error {
	if runID == "" || universe == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO factor_panel (
			run_id, universe, permno, month, primary_exch, market_equity, retx,
			log_size, log_bm, return_12_2, log_issues_12, accruals, roa,
			log_assets_growth, dy, log_return_13_36, log_issues_36,
			beta, std_12, debt_price, sales_price
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			runID, universe, uint32(r.Permno), r.Date, r.PrimaryExch,
			chFloat(r.MarketEquity), chFloat(r.ReturnExDiv),
			chFloat(r.LogSize), chFloat(r.LogBM), chFloat(r.Return12To2),
			chFloat(r.LogIssues12), chFloat(r.Accruals), chFloat(r.ROA),
			chFloat(r.LogAssetsGrowth), chFloat(r.DividendYield),
			chFloat(r.LogReturn13To36), chFloat(r.LogIssues36),
			chFloat(r.Beta), chFloat(r.StdDev12),
			chFloat(r.DebtPrice), chFloat(r.SalesPrice),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// RowsByRun retrieves the rows of (runID, universe) ordered by permno then month.
func (s *FactorPanelStore) RowsByRun(ctx context.Context, runID, universe string) ([]domain.FactorRow, error) {
	query := `
		SELECT permno, month, primary_exch, market_equity, retx,
		       log_size, log_bm, return_12_2, log_issues_12, accruals, roa,
		       log_assets_growth, dy, log_return_13_36, log_issues_36,
		       beta, std_12, debt_price, sales_price
		FROM factor_panel
		WHERE run_id = ? AND universe = ?
		ORDER BY permno, month
	`

	rows, err := s.conn.Query(ctx, query, runID, universe)
	if err != nil {
		return nil, fmt.Errorf("query rows by run: %w", err)
	}
	defer rows.Close()

	var out []domain.FactorRow
	for rows.Next() {
		var (
			permno uint32
			month  time.Time
			exch   string
			cols   [16]*float64
		)
		err := rows.Scan(
			&permno, &month, &exch,
			&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5],
			&cols[6], &cols[7], &cols[8], &cols[9], &cols[10], &cols[11],
			&cols[12], &cols[13], &cols[14], &cols[15],
		)
		if err != nil {
			return nil, fmt.Errorf("scan factor panel row: %w", err)
		}

		r := domain.NewFactorRow(int(permno), month.UTC())
		r.PrimaryExch = exch
		r.MarketEquity = fromNullable(cols[0])
		r.ReturnExDiv = fromNullable(cols[1])
		r.LogSize = fromNullable(cols[2])
		r.LogBM = fromNullable(cols[3])
		r.Return12To2 = fromNullable(cols[4])
		r.LogIssues12 = fromNullable(cols[5])
		r.Accruals = fromNullable(cols[6])
		r.ROA = fromNullable(cols[7])
		r.LogAssetsGrowth = fromNullable(cols[8])
		r.DividendYield = fromNullable(cols[9])
		r.LogReturn13To36 = fromNullable(cols[10])
		r.LogIssues36 = fromNullable(cols[11])
		r.Beta = fromNullable(cols[12])
		r.StdDev12 = fromNullable(cols[13])
		r.DebtPrice = fromNullable(cols[14])
		r.SalesPrice = fromNullable(cols[15])
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate factor panel rows: %w", err)
	}

	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}

// DeleteRun removes every row of a run across universes.
func (s *FactorPanelStore) DeleteRun(ctx context.Context, runID string) error {
	if err := s.conn.Exec(ctx, "DELETE FROM factor_panel WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
