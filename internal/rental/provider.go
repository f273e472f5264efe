package rental

import (
	"context"
	"time"
)

// Loader produces a fresh Dataset from wherever the rental data lives.
type Loader interface {
	Name() string
	Load(ctx context.Context) (*Dataset, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveDataset(ds *Dataset)
	Current() (*Dataset, error)
	History() []DatasetInfo
}

// Recorder receives service-level measurements. Implementations must be safe
// for concurrent use.
type Recorder interface {
	DatasetLoaded(records int, err error)
	Recomputed(d time.Duration, cached bool)
}

type noopRecorder struct{}

func (noopRecorder) DatasetLoaded(int, error) {}
func (noopRecorder) Recomputed(time.Duration, bool) {}
