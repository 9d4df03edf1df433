// Package cache persists fetched datasets as CSV files under the raw-data
// directory. Presence of a file is the sole cache-hit signal; present
// files are trusted as written and never re-validated against the source.
package cache

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ErrMiss indicates the dataset has no cache file yet.
var ErrMiss = errors.New("cache miss")

// Dataset names used in cache keys.
const (
	DatasetMonthlyStock = "crsp_stock_m"
	DatasetDailyStock   = "crsp_stock_d"
	DatasetDailyIndex   = "crsp_index_d"
	DatasetFundamentals = "compustat_fund"
	DatasetLinkTable    = "crsp_comp_link_table"
)

const dateLayout = "2006-01-02"

// Key returns the cache file name for a dataset fetched over [start, end].
func Key(dataset string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", dataset, start.Format(dateLayout), end.Format(dateLayout))
}

// KeyStatic returns the cache file name for a dataset with no date scope.
func KeyStatic(dataset string) string {
	return dataset + ".csv"
}

// Store reads and writes dataset files under a single directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store rooted at it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the absolute location of key inside the store.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// save writes a header plus rows as CSV. A failed write leaves whatever
// made it to disk; per the fetch contract cache files are not validated,
// so the next run simply refetches over it if the file is absent.
func (s *Store) save(key string, header []string, rows [][]string) error {
	f, err := os.Create(s.Path(key))
	if err != nil {
		return fmt.Errorf("create cache file %s: %w", key, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write cache header %s: %w", key, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write cache rows %s: %w", key, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush cache file %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cache file %s: %w", key, err)
	}
	return nil
}

// load reads all data rows of key, skipping the header. A missing file is
// reported as ErrMiss.
func (s *Store) load(key string) ([][]string, error) {
	f, err := os.Open(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrMiss)
		}
		return nil, fmt.Errorf("open cache file %s: %w", key, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read cache file %s: %w", key, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// Field codecs shared by the dataset files. Floats use the shortest
// round-trip representation so a load-save cycle is byte-identical;
// missing values are empty fields.

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
