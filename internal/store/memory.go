package store

import (
	"errors"
	"slices"
	"sync"

	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

var (
	// ErrNotFound is returned when no dataset has been stored yet.
	ErrNotFound = errors.New("no rental dataset stored")
)

// MemoryStore is a concurrency-safe in-memory holder of the current dataset
// and the metadata of previously loaded versions.
type MemoryStore struct {
	mu sync.RWMutex

	current *rental.Dataset
	history []rental.DatasetInfo

	// retention configuration
	maxHistory int // max number of dataset versions remembered
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, history is unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
	}
}

// SaveDataset makes ds the current dataset and records it in the history.
func (s *MemoryStore) SaveDataset(ds *rental.Dataset) {
	if ds == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ds
	s.history = append(s.history, ds.Info())

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		over := len(s.history) - s.maxHistory
		s.history = s.history[over:]
	}
}

// Current returns the most recently saved dataset.
func (s *MemoryStore) Current() (*rental.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNotFound
	}
	return s.current, nil
}

// History returns metadata of stored versions, oldest first.
func (s *MemoryStore) History() []rental.DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.history)
}
