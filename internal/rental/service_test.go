package rental

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	current *Dataset
	saved   []DatasetInfo
}

func (f *fakeStore) SaveDataset(ds *Dataset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = ds
	f.saved = append(f.saved, ds.Info())
}

func (f *fakeStore) Current() (*Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil, errors.New("empty")
	}
	return f.current, nil
}

func (f *fakeStore) History() []DatasetInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DatasetInfo(nil), f.saved...)
}

type fakeLoader struct {
	datasets []*Dataset
	err      error
	calls    int
}

func (f *fakeLoader) Name() string { return "fake" }

func (f *fakeLoader) Load(context.Context) (*Dataset, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	ds := f.datasets[0]
	if len(f.datasets) > 1 {
		f.datasets = f.datasets[1:]
	}
	return ds, nil
}

type countingRecorder struct {
	loads, loadErrs, cached, computed int
}

func (c *countingRecorder) DatasetLoaded(_ int, err error) {
	if err != nil {
		c.loadErrs++
		return
	}
	c.loads++
}

func (c *countingRecorder) Recomputed(_ time.Duration, cached bool) {
	if cached {
		c.cached++
		return
	}
	c.computed++
}

func TestServiceDashboardWithoutDataset(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeLoader{err: errors.New("boom")})

	_, err := svc.Dashboard(FullRange())
	assert.ErrorIs(t, err, ErrNoDataset)

	changed, err := svc.Load(context.Background())
	assert.Error(t, err)
	assert.False(t, changed)
}

func TestServiceLoadAndMemoise(t *testing.T) {
	recorder := &countingRecorder{}
	ds := NewDataset("v1", "memory", "sum-1", time.Now(), sampleRecords())
	svc := NewService(&fakeStore{}, &fakeLoader{datasets: []*Dataset{ds}},
		WithRecorder(recorder), WithTopHours(2))

	changed, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	v1, err := svc.Dashboard(FullRange())
	require.NoError(t, err)
	assert.Equal(t, 4, v1.Records)
	assert.Len(t, v1.TopHours, 2)

	v2, err := svc.Dashboard(FullRange())
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, recorder.computed)
	assert.Equal(t, 1, recorder.cached)

	inverted, err := svc.Dashboard(YearRange{Start: 2012, End: 2011})
	require.NoError(t, err)
	assert.Zero(t, inverted.Records)
	assert.Empty(t, inverted.Daily)
	assert.Empty(t, inverted.Seasons)
	assert.Empty(t, inverted.TemperatureBands)
	assert.Empty(t, inverted.Hourly)
}

func TestServiceReloadKeepsUnchangedAndLastGood(t *testing.T) {
	first := NewDataset("v1", "memory", "sum-1", time.Now(), sampleRecords())
	same := NewDataset("v2", "memory", "sum-1", time.Now(), sampleRecords())
	next := NewDataset("v3", "memory", "sum-2", time.Now(), sampleRecords()[:1])

	store := &fakeStore{}
	loader := &fakeLoader{datasets: []*Dataset{first, same, next}}
	svc := NewService(store, loader)

	changed, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	info, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "v1", info.ID)

	changed, err = svc.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	v, err := svc.Dashboard(FullRange())
	require.NoError(t, err)
	assert.Equal(t, "v3", v.Dataset.ID)
	assert.Equal(t, 1, v.Records)

	loader.err = errors.New("source unavailable")
	_, err = svc.Load(context.Background())
	require.Error(t, err)

	info, err = svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "v3", info.ID)
	assert.Len(t, svc.History(), 2)
}
