// Command report regenerates the report artifacts from a run that was
// persisted to ClickHouse, without touching WRDS or the raw cache. The
// stored panel is already winsorized, so the tables come out identical
// to the ones the original run wrote.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"equity-factor-lab/internal/config"
	"equity-factor-lab/internal/reporting"
	"equity-factor-lab/internal/storage"
	chstore "equity-factor-lab/internal/storage/clickhouse"
	"equity-factor-lab/internal/subsets"
)

func main() {
	runID := flag.String("run-id", "", "Run to report on (required)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides FACTORLAB_CLICKHOUSE_DSN)")
	outputDir := flag.String("output-dir", "", "Directory for report artifacts (overrides FACTORLAB_OUTPUT_DIR)")
	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags|log.Lshortfile)

	if *runID == "" {
		logger.Fatal("--run-id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}
	if *clickhouseDSN != "" {
		cfg.ClickhouseDSN = *clickhouseDSN
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if cfg.ClickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn or FACTORLAB_CLICKHOUSE_DSN is required")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	if err := run(context.Background(), logger, cfg, *runID); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, runID string) error {
	conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
	if err != nil {
		return fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer conn.Close()

	rows, err := chstore.NewFactorPanelStore(conn).RowsByRun(ctx, runID, subsets.AllStocks)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("run %s has no stored panel", runID)
	}
	if err != nil {
		return fmt.Errorf("load panel: %w", err)
	}
	logger.Printf("Loaded %d panel rows for run %s", len(rows), runID)

	report := reporting.NewGenerator(subsets.Build(rows)).Generate()
	paths, err := reporting.Write(report, cfg.OutputDir)
	if err != nil {
		return err
	}

	logger.Println("Report generated:")
	for _, p := range paths {
		logger.Printf("  - %s", p)
	}
	return nil
}
