package rental

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrNoDataset is returned when no dataset has been loaded yet.
var ErrNoDataset = errors.New("no rental dataset loaded")

// DefaultTopHours is how many hours the dashboard highlights.
const DefaultTopHours = 5

type viewKey struct {
	datasetID string
	yr        YearRange
}

// Service loads datasets into the store and derives dashboard views from the
// current one.
type Service struct {
	store    Store
	loader   Loader
	recorder Recorder
	topHours int

	// loadMu serialises loads so concurrent reload triggers do not race.
	loadMu sync.Mutex

	mu    sync.Mutex
	views map[viewKey]DashboardView
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTopHours sets how many leading hours DashboardView.TopHours holds.
func WithTopHours(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topHours = n
		}
	}
}

// NewService creates a new Service.
func NewService(store Store, loader Loader, opts ...Option) *Service {
	s := &Service{
		store:    store,
		loader:   loader,
		recorder: noopRecorder{},
		topHours: DefaultTopHours,
		views:    make(map[viewKey]DashboardView),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the dataset through the loader and stores it. It reports
// whether the stored dataset changed; an identical checksum keeps the current one.
// On failure the last good dataset stays in place.
func (s *Service) Load(ctx context.Context) (bool, error) {
	if s.loader == nil {
		return false, fmt.Errorf("no dataset loader configured")
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ds, err := s.loader.Load(ctx)
	if err != nil {
		s.recorder.DatasetLoaded(0, err)
		return false, fmt.Errorf("load %s: %w", s.loader.Name(), err)
	}
	s.recorder.DatasetLoaded(ds.Len(), nil)

	if cur, err := s.store.Current(); err == nil && cur.Info().Checksum == ds.Info().Checksum {
		log.Printf("DEBUG: dataset from %s unchanged (checksum %s)", s.loader.Name(), ds.Info().Checksum)
		return false, nil
	}

	s.store.SaveDataset(ds)
	s.resetViews()
	log.Printf("INFO: loaded dataset %s from %s with %d records", ds.Info().ID, ds.Info().Source, ds.Len())
	return true, nil
}

// Dashboard returns every derived table for the inclusive year range of the
// current dataset. Views are memoised per dataset version and range.
func (s *Service) Dashboard(yr YearRange) (DashboardView, error) {
	ds, err := s.current()
	if err != nil {
		return DashboardView{}, err
	}

	key := viewKey{datasetID: ds.Info().ID, yr: yr}
	started := time.Now()

	s.mu.Lock()
	if v, ok := s.views[key]; ok {
		s.mu.Unlock()
		s.recorder.Recomputed(time.Since(started), true)
		return v, nil
	}
	s.mu.Unlock()

	v := BuildDashboard(ds, yr, s.topHours)

	s.mu.Lock()
	s.views[key] = v
	s.mu.Unlock()

	s.recorder.Recomputed(time.Since(started), false)
	return v, nil
}

// Current returns metadata of the dataset in use.
func (s *Service) Current() (DatasetInfo, error) {
	ds, err := s.current()
	if err != nil {
		return DatasetInfo{}, err
	}
	return ds.Info(), nil
}

// History delegates to the underlying store.
func (s *Service) History() []DatasetInfo {
	return s.store.History()
}

// TopHours returns the configured number of highlighted hours.
func (s *Service) TopHours() int {
	return s.topHours
}

func (s *Service) current() (*Dataset, error) {
	ds, err := s.store.Current()
	if err != nil || ds == nil {
		return nil, ErrNoDataset
	}
	return ds, nil
}

func (s *Service) resetViews() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.views)
}
