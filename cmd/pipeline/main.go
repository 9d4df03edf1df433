// Command pipeline runs the research pipeline end to end:
// fetch (cache-first) → normalize → merge → factors → universes →
// report, with an optional ClickHouse sink for the derived panel and
// the monthly regression estimates.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"equity-factor-lab/internal/cache"
	"equity-factor-lab/internal/config"
	"equity-factor-lab/internal/orchestrator"
	chstore "equity-factor-lab/internal/storage/clickhouse"
	"equity-factor-lab/internal/storage/migrations"
	"equity-factor-lab/internal/subsets"
	"equity-factor-lab/internal/wrds"
)

func main() {
	startFlag := flag.String("start", "", "First month of the sample (YYYY-MM-DD, overrides FACTORLAB_START_DATE)")
	endFlag := flag.String("end", "", "Last month of the sample (YYYY-MM-DD, overrides FACTORLAB_END_DATE)")
	rawDir := flag.String("raw-dir", "", "Cache directory for raw datasets (overrides FACTORLAB_RAW_DIR)")
	outputDir := flag.String("output-dir", "", "Directory for report artifacts (overrides FACTORLAB_OUTPUT_DIR)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse sink (overrides FACTORLAB_CLICKHOUSE_DSN, empty keeps the run in memory)")
	verbose := flag.Bool("verbose", false, "Log per-phase progress")
	flag.Parse()

	logger := log.New(os.Stdout, "[pipeline] ", log.LstdFlags|log.Lshortfile)

	cfg, err := loadConfig(*startFlag, *endFlag, *rawDir, *outputDir, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling pipeline...", sig)
		cancel()

		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	if err := run(ctx, logger, cfg, *verbose); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(start, end, rawDir, outputDir, clickhouseDSN string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if start != "" {
		if err := cfg.StartDate.Decode(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if err := cfg.EndDate.Decode(end); err != nil {
			return nil, err
		}
	}
	if rawDir != "" {
		cfg.RawDir = rawDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if clickhouseDSN != "" {
		cfg.ClickhouseDSN = clickhouseDSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, verbose bool) error {
	client, err := wrds.NewClient(ctx, cfg.WRDSDSN())
	if err != nil {
		return fmt.Errorf("connect to wrds: %w", err)
	}
	defer client.Close()

	store, err := cache.NewStore(cfg.RawDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	opts := orchestrator.Options{
		Service:         client,
		Cache:           store,
		Start:           cfg.StartDate.Time,
		End:             cfg.EndDate.Time,
		ReportLagMonths: cfg.ReportLagMonths,
		OutputDir:       cfg.OutputDir,
		Verbose:         verbose,
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("prepare clickhouse: %w", err)
		}
		defer conn.Close()
		opts.PanelStore = chstore.NewFactorPanelStore(conn)
		opts.ResultStore = chstore.NewResultStore(conn)
		logger.Println("Persisting this run to ClickHouse")
	}

	result, err := orchestrator.New(opts).Run(ctx)
	if err != nil {
		return err
	}

	logger.Printf("Run %s completed:", result.RunID)
	logger.Printf("  Panel rows: %d", result.PanelRows)
	for _, name := range subsets.Names {
		logger.Printf("  %s: %d rows", name, result.UniverseRows[name])
	}
	if result.PersistedPanelRows > 0 || result.PersistedResultRows > 0 {
		logger.Printf("  Persisted: %d panel rows, %d result rows",
			result.PersistedPanelRows, result.PersistedResultRows)
	}
	for _, p := range result.ArtifactPaths {
		logger.Printf("  - %s", p)
	}
	return nil
}
