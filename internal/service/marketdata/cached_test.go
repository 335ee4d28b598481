package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"BTCForecast/internal/domain/models"
	"BTCForecast/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls  int
	series models.PriceSeries
	err    error
}

func (s *countingSource) Fetch(_ context.Context, _ string) (models.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

type cacheCounter struct {
	hits, misses int
}

func (c *cacheCounter) RecordFetchAttempt(string, string) {}
func (c *cacheCounter) RecordFetchFailure()               {}
func (c *cacheCounter) RecordPrediction(string, float64)  {}
func (c *cacheCounter) RecordLastPrice(float64)           {}
func (c *cacheCounter) RecordPredictedPrice(float64)      {}
func (c *cacheCounter) RecordCache(hit bool) {
	if hit {
		c.hits++
		return
	}
	c.misses++
}

func TestCachedFetcherHitAvoidsSource(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	src := &countingSource{series: series(10)}
	m := &cacheCounter{}

	f := NewCached(src, mem, time.Minute, m, nil)

	first, err := f.Fetch(context.Background(), "7d")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), "7d")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first.Closes(), second.Closes())
	assert.True(t, first[0].Timestamp.Equal(second[0].Timestamp))
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)

	_, err = f.Fetch(context.Background(), "1mo")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedFetcherDoesNotCacheErrors(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	src := &countingSource{err: errors.New("boom")}

	f := NewCached(src, mem, time.Minute, nil, nil)
	_, err := f.Fetch(context.Background(), "7d")
	require.Error(t, err)
	_, err = f.Fetch(context.Background(), "7d")
	require.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedFetcherIgnoresCorruptEntry(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	require.NoError(t, mem.Set(context.Background(), seriesKey("7d"), []byte("{not json"), time.Minute))
	src := &countingSource{series: series(3)}

	f := NewCached(src, mem, time.Minute, nil, nil)
	got, err := f.Fetch(context.Background(), "7d")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, src.calls)
}
