package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchAttempts  *prometheus.CounterVec
	fetchFailures  prometheus.Counter
	predictions    *prometheus.CounterVec
	predictLatency prometheus.Histogram
	lastPrice      prometheus.Gauge
	predictedPrice prometheus.Gauge
	cacheLookups   *prometheus.CounterVec
}

// New creates a recorder registered with the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btcforecast_fetch_attempts_total",
				Help: "Provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		fetchFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "btcforecast_fetch_exhausted_total",
				Help: "Fetches that failed after exhausting every attempt",
			},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btcforecast_predictions_total",
				Help: "Prediction requests by outcome",
			},
			[]string{"outcome"},
		),
		predictLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "btcforecast_prediction_duration_seconds",
				Help:    "Duration of the prediction pipeline in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastPrice: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "btcforecast_last_price",
				Help: "Most recent closing price seen by the prediction pipeline",
			},
		),
		predictedPrice: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "btcforecast_predicted_price",
				Help: "Most recent predicted price",
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btcforecast_cache_lookups_total",
				Help: "Series cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordFetchAttempt records one provider call.
func (r *Recorder) RecordFetchAttempt(provider, outcome string) {
	r.fetchAttempts.WithLabelValues(provider, outcome).Inc()
}

// RecordFetchFailure records a fetch that exhausted its retries.
func (r *Recorder) RecordFetchFailure() {
	r.fetchFailures.Inc()
}

// RecordPrediction records a pipeline run and its latency in seconds.
func (r *Recorder) RecordPrediction(outcome string, seconds float64) {
	r.predictions.WithLabelValues(outcome).Inc()
	r.predictLatency.Observe(seconds)
}

// RecordLastPrice records the last observed close.
func (r *Recorder) RecordLastPrice(price float64) {
	r.lastPrice.Set(price)
}

// RecordPredictedPrice records the last prediction.
func (r *Recorder) RecordPredictedPrice(price float64) {
	r.predictedPrice.Set(price)
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordFetchAttempt(string, string) {}
func (Nop) RecordFetchFailure()               {}
func (Nop) RecordPrediction(string, float64)  {}
func (Nop) RecordLastPrice(float64)           {}
func (Nop) RecordPredictedPrice(float64)      {}
func (Nop) RecordCache(bool)                  {}
