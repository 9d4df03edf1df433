// Package wrds queries the WRDS research data service over its PostgreSQL
// wire endpoint.
package wrds

import (
	"context"
	"time"

	"equity-factor-lab/internal/domain"
)

// Service defines the remote dataset queries the pipeline needs. Each call
// is scoped to the analysis date range; errors from the service propagate
// to the caller and abort the run.
type Service interface {
	// MonthlyStock retrieves the CRSP monthly common-stock file.
	MonthlyStock(ctx context.Context, start, end time.Time) ([]domain.SecurityMonth, error)

	// DailyStock retrieves the CRSP daily common-stock file.
	DailyStock(ctx context.Context, start, end time.Time) ([]domain.SecurityDay, error)

	// DailyIndex retrieves the CRSP value-weighted daily market index.
	DailyIndex(ctx context.Context, start, end time.Time) ([]domain.IndexDay, error)

	// Fundamentals retrieves the Compustat annual fundamentals file.
	Fundamentals(ctx context.Context, start, end time.Time) ([]domain.Fundamentals, error)

	// LinkTable retrieves the CRSP/Compustat link table. The table is
	// small and not date-scoped.
	LinkTable(ctx context.Context) ([]domain.LinkRow, error)
}
