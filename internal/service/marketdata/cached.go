package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"BTCForecast/internal/domain/models"
	drepo "BTCForecast/internal/domain/repository"
	"BTCForecast/pkg/cache"
	applogger "BTCForecast/pkg/logger"
	"BTCForecast/pkg/metrics"
)

// CachedFetcher serves recent series from a cache and falls through to the
// wrapped source on a miss. Cache errors never fail a fetch.
type CachedFetcher struct {
	next    drepo.MarketData
	cache   cache.Service
	ttl     time.Duration
	metrics drepo.Metrics
	l       *applogger.Logger
}

// NewCached wraps next with a read-through cache.
func NewCached(next drepo.MarketData, c cache.Service, ttl time.Duration, m drepo.Metrics, l *applogger.Logger) *CachedFetcher {
	if m == nil {
		m = metrics.Nop{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedFetcher{next: next, cache: c, ttl: ttl, metrics: m, l: l}
}

type cachedPoint struct {
	T int64   `json:"t"`
	C float64 `json:"c"`
}

func seriesKey(period string) string {
	return "series:" + period
}

func (f *CachedFetcher) Fetch(ctx context.Context, period string) (models.PriceSeries, error) {
	key := seriesKey(period)

	b, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		if s, derr := decodeSeries(b); derr == nil {
			f.metrics.RecordCache(true)
			return s, nil
		}
		f.l.Warn("discarding undecodable cache entry", applogger.String("key", key))
	case !errors.Is(err, cache.ErrCacheMiss):
		f.l.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	f.metrics.RecordCache(false)

	s, err := f.next.Fetch(ctx, period)
	if err != nil {
		return nil, err
	}

	if enc, err := encodeSeries(s); err == nil {
		if err := f.cache.Set(ctx, key, enc, f.ttl); err != nil {
			f.l.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return s, nil
}

func encodeSeries(s models.PriceSeries) ([]byte, error) {
	pts := make([]cachedPoint, len(s))
	for i, p := range s {
		pts[i] = cachedPoint{T: p.Timestamp.UnixMilli(), C: p.Close}
	}
	return json.Marshal(pts)
}

func decodeSeries(b []byte) (models.PriceSeries, error) {
	var pts []cachedPoint
	if err := json.Unmarshal(b, &pts); err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, errors.New("empty cached series")
	}
	out := make([]models.PricePoint, len(pts))
	for i, p := range pts {
		out[i] = models.PricePoint{Timestamp: time.UnixMilli(p.T).UTC(), Close: p.C}
	}
	return models.NewPriceSeries(out), nil
}

var _ drepo.MarketData = (*CachedFetcher)(nil)
