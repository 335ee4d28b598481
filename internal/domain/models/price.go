package models

import (
	"math"
	"sort"
	"time"
)

// PricePoint is one closing price observation.
type PricePoint struct {
	Timestamp time.Time
	Close     float64
}

// PriceSeries is a chronological list of price points with strictly
// increasing timestamps.
type PriceSeries []PricePoint

// NewPriceSeries sorts the points chronologically, drops unusable closes and
// collapses duplicate timestamps keeping the last observation.
func NewPriceSeries(points []PricePoint) PriceSeries {
	out := make(PriceSeries, 0, len(points))
	for _, p := range points {
		if p.Timestamp.IsZero() || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		out = append(out, PricePoint{Timestamp: p.Timestamp.UTC(), Close: p.Close})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	dedup := out[:0]
	for _, p := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Timestamp.Equal(p.Timestamp) {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// Closes returns the closing prices in order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Last returns the most recent point.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// IsChronological reports whether timestamps are strictly increasing.
func (s PriceSeries) IsChronological() bool {
	for i := 1; i < len(s); i++ {
		if !s[i-1].Timestamp.Before(s[i].Timestamp) {
			return false
		}
	}
	return true
}

// Lookback is the number of trailing days of history a provider is asked for,
// together with the caller's original period string.
type Lookback struct {
	Period string
	Days   int
}
