package repository

import (
	"context"

	"BTCForecast/internal/domain/models"
)

// PriceProvider is one upstream source of price history.
type PriceProvider interface {
	Name() string
	Fetch(ctx context.Context, lb models.Lookback) (models.PriceSeries, error)
}

// MarketData returns price history for a human-facing period.
type MarketData interface {
	Fetch(ctx context.Context, period string) (models.PriceSeries, error)
}

type Metrics interface {
	RecordFetchAttempt(provider, outcome string)
	RecordFetchFailure()
	RecordPrediction(outcome string, seconds float64)
	RecordLastPrice(price float64)
	RecordPredictedPrice(price float64)
	RecordCache(hit bool)
}
