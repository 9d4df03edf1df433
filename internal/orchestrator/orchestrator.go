// Package orchestrator coordinates the end-to-end research pipeline.
// Flow: fetch → normalize → merge → factors → winsorize → subsets →
// report → optional persistence.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"equity-factor-lab/internal/cache"
	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/factors"
	"equity-factor-lab/internal/ingestion"
	"equity-factor-lab/internal/merge"
	"equity-factor-lab/internal/normalization"
	"equity-factor-lab/internal/regress"
	"equity-factor-lab/internal/reporting"
	"equity-factor-lab/internal/storage"
	"equity-factor-lab/internal/subsets"
	"equity-factor-lab/internal/wrds"
)

// Orchestrator coordinates one pipeline run.
type Orchestrator struct {
	service wrds.Service
	cache   *cache.Store

	panelStore  storage.FactorPanelStore
	resultStore storage.ResultStore

	start           time.Time
	end             time.Time
	reportLagMonths int
	outputDir       string

	verbose bool
}

// Options for creating an Orchestrator.
type Options struct {
	// Data access.
	Service wrds.Service
	Cache   *cache.Store

	// Optional analytical store. Nil stores mean the run stays in
	// memory.
	PanelStore  storage.FactorPanelStore
	ResultStore storage.ResultStore

	// Analysis date range, inclusive.
	Start time.Time
	End   time.Time

	// Months after a fiscal period end before its fundamentals are
	// treated as known.
	ReportLagMonths int

	// Directory for report artifacts. Empty skips writing.
	OutputDir string

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		service:         opts.Service,
		cache:           opts.Cache,
		panelStore:      opts.PanelStore,
		resultStore:     opts.ResultStore,
		start:           opts.Start,
		end:             opts.End,
		reportLagMonths: opts.ReportLagMonths,
		outputDir:       opts.OutputDir,
		verbose:         opts.Verbose,
	}
}

// RunResult contains results from one pipeline run.
type RunResult struct {
	RunID         string
	PanelRows     int
	UniverseRows  map[string]int
	Report        *reporting.Report
	ArtifactPaths []string

	// Rows written to the analytical store; zero when no store is
	// configured.
	PersistedPanelRows  int
	PersistedResultRows int
}

// Run executes the full pipeline.
// Phases:
//  1. Fetch the raw datasets (cache-first)
//  2. Normalize monthly rows and fundamentals
//  3. Merge fundamentals onto the monthly panel
//  4. Compute the predictor columns
//  5. Winsorize and split into universes
//  6. Generate the report and write artifacts
//  7. Persist the panel and regression results (optional)
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{RunID: uuid.NewString()}

	o.log("Phase 1: Fetching raw datasets...")
	fetcher := ingestion.NewFetcher(ingestion.Options{
		Service: o.service,
		Store:   o.cache,
		Verbose: o.verbose,
	})
	raw, err := fetcher.FetchAll(ctx, o.start, o.end)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (fetch) failed: %w", err)
	}
	o.log("  %d monthly, %d daily, %d index, %d fundamentals, %d links",
		len(raw.Monthly), len(raw.Daily), len(raw.Index), len(raw.Fundamentals), len(raw.Links))

	o.log("Phase 2: Normalizing...")
	panel := normalization.BuildMonthlyPanel(raw.Monthly)
	normalization.AnnotateFundamentals(raw.Fundamentals, o.reportLagMonths)
	result.PanelRows = len(panel)
	o.log("  %d panel rows", len(panel))

	o.log("Phase 3: Merging fundamentals...")
	merge.AttachFundamentals(panel, raw.Fundamentals, raw.Links)

	o.log("Phase 4: Computing factors...")
	factors.Compute(panel, raw.Daily, raw.Index)

	o.log("Phase 5: Winsorizing and building universes...")
	subsets.Winsorize(panel, domain.TableColumns)
	universes := subsets.Build(panel)
	result.UniverseRows = make(map[string]int, len(universes))
	for name, rows := range universes {
		result.UniverseRows[name] = len(rows)
	}
	o.log("  All stocks %d, all-but-tiny %d, large %d",
		result.UniverseRows[subsets.AllStocks],
		result.UniverseRows[subsets.AllButTinyStocks],
		result.UniverseRows[subsets.LargeStocks])

	o.log("Phase 6: Generating report...")
	result.Report = reporting.NewGenerator(universes).Generate()
	if o.outputDir != "" {
		paths, err := reporting.Write(result.Report, o.outputDir)
		if err != nil {
			return nil, fmt.Errorf("phase 6 (report) failed: %w", err)
		}
		result.ArtifactPaths = paths
		o.log("  Wrote %d artifacts to %s", len(paths), o.outputDir)
	}

	if o.panelStore != nil || o.resultStore != nil {
		o.log("Phase 7: Persisting run %s...", result.RunID)
		if err := o.persist(ctx, result, universes); err != nil {
			return nil, fmt.Errorf("phase 7 (persist) failed: %w", err)
		}
		o.log("  %d panel rows, %d result rows", result.PersistedPanelRows, result.PersistedResultRows)
	}

	o.log("Pipeline completed: run %s, %d panel rows", result.RunID, result.PanelRows)
	return result, nil
}

// persist writes the winsorized panel and the monthly regression
// estimates to the analytical store.
func (o *Orchestrator) persist(ctx context.Context, result *RunResult, universes map[string][]domain.FactorRow) error {
	if o.panelStore != nil {
		rows := universes[subsets.AllStocks]
		if err := o.panelStore.InsertRows(ctx, result.RunID, subsets.AllStocks, rows); err != nil {
			return fmt.Errorf("insert panel rows: %w", err)
		}
		result.PersistedPanelRows = len(rows)
	}

	if o.resultStore != nil {
		rows := resultRows(result.RunID, universes)
		if len(rows) > 0 {
			if err := o.resultStore.InsertResults(ctx, rows); err != nil {
				return fmt.Errorf("insert result rows: %w", err)
			}
		}
		result.PersistedResultRows = len(rows)
	}
	return nil
}

// resultRows flattens the monthly cross-sectional estimates of every
// model and universe into long-form storage rows.
func resultRows(runID string, universes map[string][]domain.FactorRow) []storage.ResultRow {
	var out []storage.ResultRow
	for _, model := range regress.Models() {
		for _, name := range subsets.Names {
			months := regress.MonthlyCrossSection(universes[name], model.Predictors)
			for _, m := range months {
				for i, predictor := range model.Predictors {
					out = append(out, storage.ResultRow{
						RunID:     runID,
						Model:     model.Name,
						Universe:  name,
						Month:     m.Month,
						Predictor: predictor,
						Slope:     m.Slopes[i],
						R2:        m.R2,
						N:         m.N,
					})
				}
			}
		}
	}
	return out
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
