// Command fetch warms the raw-data cache without running the analysis.
// Each dataset is pulled from WRDS at most once per date range; a later
// pipeline run over the same range then works offline.
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
	"time"

	"equity-factor-lab/internal/cache"
	"equity-factor-lab/internal/config"
	"equity-factor-lab/internal/ingestion"
	"equity-factor-lab/internal/wrds"
)

func main() {
	startFlag := flag.String("start", "", "First month of the sample (YYYY-MM-DD, overrides FACTORLAB_START_DATE)")
	endFlag := flag.String("end", "", "Last month of the sample (YYYY-MM-DD, overrides FACTORLAB_END_DATE)")
	rawDir := flag.String("raw-dir", "", "Cache directory for raw datasets (overrides FACTORLAB_RAW_DIR)")
	verbose := flag.Bool("verbose", false, "Log per-dataset cache decisions")
	flag.Parse()

	logger := log.New(os.Stdout, "[fetch] ", log.LstdFlags|log.Lshortfile)

	cfg, err := loadConfig(*startFlag, *endFlag, *rawDir)
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling fetch...", sig)
		cancel()

		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	if err := run(ctx, logger, cfg, *verbose); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Fetch complete")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(start, end, rawDir string) (*config.Config, error) {
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

	logger.Printf("Fetching %s through %s into %s",
		cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02"), cfg.RawDir)

	began := time.Now()
	fetcher := ingestion.NewFetcher(ingestion.Options{
		Service: client,
		Store:   store,
		Verbose: verbose,
	})
	data, err := fetcher.FetchAll(ctx, cfg.StartDate.Time, cfg.EndDate.Time)
	if err != nil {
		return err
	}

	logger.Printf("Fetched in %v:", time.Since(began).Round(time.Millisecond))
	logger.Printf("  %d monthly security rows", len(data.Monthly))
	logger.Printf("  %d daily security rows", len(data.Daily))
	logger.Printf("  %d index days", len(data.Index))
	logger.Printf("  %d fundamental rows", len(data.Fundamentals))
	logger.Printf("  %d link rows", len(data.Links))
	return nil
}
