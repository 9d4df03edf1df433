package memory

import (
	"context"
	"sort"
	"sync"

	"equity-factor-lab/internal/domain"
	"equity-factor-lab/internal/storage"
)

// FactorPanelStore is an in-memory implementation of storage.FactorPanelStore.
type FactorPanelStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]domain.FactorRow // run ID -> universe -> rows
}

// NewFactorPanelStore creates a new in-memory factor panel store.
func NewFactorPanelStore() *FactorPanelStore {
	return &FactorPanelStore{
		data: make(map[string]map[string][]domain.FactorRow),
	}
}

var _ storage.FactorPanelStore = (*FactorPanelStore)(nil)

// InsertRows appends rows under (runID, universe).
func (s *FactorPanelStore) InsertRows(_ context.Context, runID, universe string, rows []domain.FactorRow) error {
	if runID == "" || universe == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byUniverse, ok := s.data[runID]
	if !ok {
		byUniverse = make(map[string][]domain.FactorRow)
		s.data[runID] = byUniverse
	}
	byUniverse[universe] = append(byUniverse[universe], rows...)
	return nil
}

// RowsByRun retrieves the rows of (runID, universe) ordered by permno then month.
func (s *FactorPanelStore) RowsByRun(_ context.Context, runID, universe string) ([]domain.FactorRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[runID][universe]
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}

	out := append([]domain.FactorRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Permno != out[j].Permno {
			return out[i].Permno < out[j].Permno
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// DeleteRun removes every row of a run across universes.
func (s *FactorPanelStore) DeleteRun(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, runID)
	return nil
}
