package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BTCForecast/internal/domain/models"
	drepo "BTCForecast/internal/domain/repository"
	applogger "BTCForecast/pkg/logger"
	"BTCForecast/pkg/metrics"
)

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 2 * time.Second
)

// ErrDataUnavailable is matched by every exhausted fetch.
var ErrDataUnavailable = errors.New("market data unavailable")

var errNoProviders = errors.New("no price providers configured")

// DataUnavailableError reports that every attempt across every provider failed.
type DataUnavailableError struct {
	Attempts int
	Waited   time.Duration
	Err      error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("Failed to fetch Bitcoin data after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DataUnavailableError) Unwrap() []error { return []error{ErrDataUnavailable, e.Err} }

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Option configures Fetcher.
type Option func(*Fetcher)

// Fetcher tries an ordered list of providers per attempt and retries the
// whole list a bounded number of times.
type Fetcher struct {
	providers  []drepo.PriceProvider
	maxRetries int
	backoff    time.Duration
	wait       WaitFunc
	metrics    drepo.Metrics
	l          *applogger.Logger
}

// New creates a fetcher over providers, tried in the given order.
func New(providers []drepo.PriceProvider, opts ...Option) *Fetcher {
	f := &Fetcher{
		providers:  providers,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		wait:       sleepCtx,
		metrics:    metrics.Nop{},
		l:          applogger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxRetries < 1 {
		f.maxRetries = 1
	}
	return f
}

// WithMaxRetries sets the number of attempts.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) { f.maxRetries = n }
}

// WithBackoff sets the pause between attempts.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) { f.backoff = d }
}

// WithWaitFunc replaces the pause implementation.
func WithWaitFunc(w WaitFunc) Option {
	return func(f *Fetcher) { f.wait = w }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(f *Fetcher) { f.l = l }
}

// providerOutcome is the result of one provider call within an attempt.
type providerOutcome struct {
	provider string
	series   models.PriceSeries
	err      error
}

func (o providerOutcome) ok() bool { return o.err == nil && len(o.series) > 0 }

// Fetch returns the price history for period.
func (f *Fetcher) Fetch(ctx context.Context, period string) (models.PriceSeries, error) {
	if len(f.providers) == 0 {
		return nil, &DataUnavailableError{Err: errNoProviders}
	}

	lb := drepo.LookbackFor(period)
	var (
		last   providerOutcome
		waited time.Duration
	)
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		f.l.Debug("fetch attempt",
			applogger.Int("attempt", attempt),
			applogger.String("period", period),
			applogger.Int("days", lb.Days),
		)

		out := f.runAttempt(ctx, lb)
		if out.ok() {
			f.l.Info("fetch ok",
				applogger.String("provider", out.provider),
				applogger.Int("attempt", attempt),
				applogger.Int("points", len(out.series)),
			)
			return out.series, nil
		}
		last = out

		if attempt == f.maxRetries {
			break
		}
		f.l.Warn("fetch attempt failed, waiting before retry",
			applogger.Int("attempt", attempt),
			applogger.Duration("backoff_ms", f.backoff),
			applogger.Error(out.err),
		)
		if err := f.wait(ctx, f.backoff); err != nil {
			return nil, fmt.Errorf("fetch aborted: %w", err)
		}
		waited += f.backoff
	}

	f.metrics.RecordFetchFailure()
	return nil, &DataUnavailableError{Attempts: f.maxRetries, Waited: waited, Err: last.err}
}

// runAttempt walks the providers in order and stops at the first non-empty series.
func (f *Fetcher) runAttempt(ctx context.Context, lb models.Lookback) providerOutcome {
	var out providerOutcome
	for _, p := range f.providers {
		series, err := p.Fetch(ctx, lb)
		out = providerOutcome{provider: p.Name(), series: series, err: err}
		if out.err == nil && len(series) == 0 {
			out.err = fmt.Errorf("%s: empty series", p.Name())
		}
		if out.ok() {
			f.metrics.RecordFetchAttempt(p.Name(), "ok")
			return out
		}
		f.metrics.RecordFetchAttempt(p.Name(), "error")
		f.l.Warn("provider failed",
			applogger.String("provider", p.Name()),
			applogger.Error(out.err),
		)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ drepo.MarketData = (*Fetcher)(nil)
