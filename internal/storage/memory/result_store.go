package memory

import (
	"context"
	"sort"
	"sync"

	"equity-factor-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string][]storage.ResultRow // keyed by run ID
}

// NewResultStore creates a new in-memory regression result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string][]storage.ResultRow),
	}
}

var _ storage.ResultStore = (*ResultStore)(nil)

// InsertResults appends result rows. The batch is validated before any
// row is stored.
func (s *ResultStore) InsertResults(_ context.Context, results []storage.ResultRow) error {
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		if r.RunID == "" || r.Model == "" || r.Universe == "" || r.Predictor == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		s.data[r.RunID] = append(s.data[r.RunID], r)
	}
	return nil
}

// ResultsByRun retrieves every result row of a run ordered by model,
// universe, month, then predictor.
func (s *ResultStore) ResultsByRun(_ context.Context, runID string) ([]storage.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[runID]
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}

	out := append([]storage.ResultRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Universe != b.Universe {
			return a.Universe < b.Universe
		}
		if !a.Month.Equal(b.Month) {
			return a.Month.Before(b.Month)
		}
		return a.Predictor < b.Predictor
	})
	return out, nil
}
