// Package config defines the runtime configuration for the pipeline
// binaries and provides validation helpers.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Date is a calendar day in YYYY-MM-DD form, decodable from the
// environment.
type Date struct{ time.Time }

// Decode implements envconfig.Decoder.
func (d *Date) Decode(value string) error {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", value, err)
	}
	d.Time = t.UTC()
	return nil
}

// Config is the root configuration. Fields are populated from an optional
// .env file and FACTORLAB_* environment variables (bare names are accepted
// as a fallback); command-line flags may override individual fields.
type Config struct {
	// WRDS connection. The pool dials lazily, so a run that is fully
	// served from the cache never uses the credentials.
	WRDSUser     string `envconfig:"WRDS_USER"`
	WRDSPassword string `envconfig:"WRDS_PASSWORD"`
	WRDSHost     string `envconfig:"WRDS_HOST" default:"wrds-pgdata.wharton.upenn.edu"`
	WRDSPort     int    `envconfig:"WRDS_PORT" default:"9737"`
	WRDSDatabase string `envconfig:"WRDS_DB" default:"wrds"`

	// Local directories.
	RawDir    string `envconfig:"RAW_DIR" default:"data/raw"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`

	// Analysis date range, inclusive.
	StartDate Date `envconfig:"START_DATE" default:"1963-01-01"`
	EndDate   Date `envconfig:"END_DATE" default:"2024-12-31"`

	// Months after a fiscal period end before its fundamentals are
	// treated as known.
	ReportLagMonths int `envconfig:"REPORT_LAG_MONTHS" default:"4"`

	// Optional ClickHouse sink for the derived panel and results.
	// Empty means the run stays in memory.
	ClickhouseDSN string `envconfig:"CLICKHOUSE_DSN"`
}

// Load reads the optional .env file and the environment into a Config.
// The returned Config has NOT been validated; callers should apply any
// flag overrides and then invoke Validate.
func Load() (*Config, error) {
	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("factorlab", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and reports every problem found.
// WRDS credentials are deliberately not required here: a warm-cache run
// never authenticates, and a cold run surfaces the auth error from the
// service itself.
func (c *Config) Validate() error {
	var errs []string

	if c.WRDSHost == "" {
		errs = append(errs, "wrds: host must not be empty")
	}
	if c.WRDSPort <= 0 || c.WRDSPort > 65535 {
		errs = append(errs, fmt.Sprintf("wrds: port %d out of range", c.WRDSPort))
	}
	if c.WRDSDatabase == "" {
		errs = append(errs, "wrds: database must not be empty")
	}
	if c.RawDir == "" {
		errs = append(errs, "raw_dir must not be empty")
	}
	if c.OutputDir == "" {
		errs = append(errs, "output_dir must not be empty")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		errs = append(errs, "start_date and end_date must be set")
	} else if c.EndDate.Before(c.StartDate.Time) {
		errs = append(errs, fmt.Sprintf("end_date %s precedes start_date %s",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02")))
	}
	if c.ReportLagMonths < 0 {
		errs = append(errs, fmt.Sprintf("report_lag_months must not be negative, got %d", c.ReportLagMonths))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// WRDSDSN builds the PostgreSQL connection string for the WRDS endpoint.
func (c *Config) WRDSDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.WRDSUser, c.WRDSPassword),
		Host:     fmt.Sprintf("%s:%d", c.WRDSHost, c.WRDSPort),
		Path:     c.WRDSDatabase,
		RawQuery: "sslmode=require",
	}
	return u.String()
}
