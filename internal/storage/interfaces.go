// Package storage defines the analytical store contracts for derived
// factor panels and regression results. Implementations live in the
// memory and clickhouse subpackages.
package storage

import (
	"context"
	"time"

	"equity-factor-lab/internal/domain"
)

// ResultRow is one persisted monthly regression estimate in long form,
// one row per run, model, universe, month, and predictor.
type ResultRow struct {
	RunID     string
	Model     string
	Universe  string
	Month     time.Time
	Predictor string
	Slope     float64
	R2        float64
	N         int
}

// FactorPanelStore persists winsorized factor panel rows tagged by run.
type FactorPanelStore interface {
	// InsertRows appends rows under (runID, universe). Returns
	// ErrInvalidInput when runID or universe is empty.
	InsertRows(ctx context.Context, runID, universe string, rows []domain.FactorRow) error

	// RowsByRun retrieves the rows of (runID, universe) ordered by
	// permno then month. Returns ErrNotFound when the run holds no
	// rows for that universe.
	RowsByRun(ctx context.Context, runID, universe string) ([]domain.FactorRow, error)

	// DeleteRun removes every row of a run across universes. Deleting
	// an unknown run is a no-op.
	DeleteRun(ctx context.Context, runID string) error
}

// ResultStore persists monthly cross-sectional regression estimates.
type ResultStore interface {
	// InsertResults appends result rows. Returns ErrInvalidInput when a
	// row is missing its run ID, model, universe, or predictor.
	InsertResults(ctx context.Context, results []ResultRow) error

	// ResultsByRun retrieves every result row of a run ordered by
	// model, universe, month, then predictor. Returns ErrNotFound when
	// the run is unknown.
	ResultsByRun(ctx context.Context, runID string) ([]ResultRow, error)
}
