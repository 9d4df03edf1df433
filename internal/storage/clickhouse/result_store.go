package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-factor-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using ClickHouse.
type ResultStore struct {
	conn *Conn
}

// NewResultStore creates a new ResultStore.
func NewResultStore(conn *Conn) *ResultStore {
	return &ResultStore{conn: conn}
}

var _ storage.ResultStore = (*ResultStore)(nil)

// InsertResults appends result rows in a single batch. The batch is
// validated before anything is sent.
func (s *ResultStore) InsertResults(ctx context.Context, results []storage.ResultRow) error {
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		if r.RunID == "" || r.Model == "" || r.Universe == "" || r.Predictor == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO regression_results (
			run_id, model, universe, month, predictor, slope, r2, n
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range results {
		err = batch.Append(
			r.RunID, r.Model, r.Universe, r.Month, r.Predictor,
			chFloat(r.Slope), chFloat(r.R2), uint32(r.N),
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

// ResultsByRun retrieves every result row of a run ordered by model,
// universe, month, then predictor.
func (s *ResultStore) ResultsByRun(ctx context.Context, runID string) ([]storage.ResultRow, error) {
	query := `
		SELECT run_id, model, universe, month, predictor, slope, r2, n
		FROM regression_results
		WHERE run_id = ?
		ORDER BY model, universe, month, predictor
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query results by run: %w", err)
	}
	defer rows.Close()

	var out []storage.ResultRow
	for rows.Next() {
		var (
			r         storage.ResultRow
			month     time.Time
			slope, r2 *float64
			n         uint32
		)
		if err := rows.Scan(&r.RunID, &r.Model, &r.Universe, &month, &r.Predictor, &slope, &r2, &n); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		r.Month = month.UTC()
		r.Slope = fromNullable(slope)
		r.R2 = fromNullable(r2)
		r.N = int(n)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}

	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return out, nil
}
