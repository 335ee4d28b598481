package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BTCForecast/internal/domain/models"
	drepo "BTCForecast/internal/domain/repository"
	"BTCForecast/internal/domain/service"
	"BTCForecast/internal/services/features"
	applogger "BTCForecast/pkg/logger"
	"BTCForecast/pkg/metrics"
	"BTCForecast/pkg/util"
)

// DefaultWindow is the number of closes fed to the model per prediction.
const DefaultWindow = 60

// ErrInsufficientData is matched when a series is too short to predict from.
var ErrInsufficientData = errors.New("insufficient data for prediction")

// InsufficientDataError carries the observed and required series lengths.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for prediction: have %d points, need %d", e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// PredictorSource hands out a predictor for one request.
type PredictorSource interface {
	Predictor(ctx context.Context, reload bool) (service.Predictor, error)
}

// PredictionUseCase turns a price history into a next-step price.
type PredictionUseCase struct {
	data    drepo.MarketData
	models  PredictorSource
	window  int
	reload  bool
	metrics drepo.Metrics
	l       *applogger.Logger
	now     func() time.Time
}

type PredictionOption func(*PredictionUseCase)

// WithWindow sets the window length.
func WithWindow(n int) PredictionOption {
	return func(uc *PredictionUseCase) { uc.window = n }
}

// WithReload controls whether the model is read again for every prediction.
func WithReload(reload bool) PredictionOption {
	return func(uc *PredictionUseCase) { uc.reload = reload }
}

func WithPredictionMetrics(m drepo.Metrics) PredictionOption {
	return func(uc *PredictionUseCase) { uc.metrics = m }
}

func WithPredictionLogger(l *applogger.Logger) PredictionOption {
	return func(uc *PredictionUseCase) { uc.l = l }
}

func NewPredictionUseCase(data drepo.MarketData, src PredictorSource, opts ...PredictionOption) *PredictionUseCase {
	uc := &PredictionUseCase{
		data:    data,
		models:  src,
		window:  DefaultWindow,
		reload:  true,
		metrics: metrics.Nop{},
		l:       applogger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Predict fetches the history for period, passed through unchanged, and runs
// the pipeline over it.
func (uc *PredictionUseCase) Predict(ctx context.Context, period string) (*models.PredictionResult, error) {
	series, err := uc.data.Fetch(ctx, period)
	if err != nil {
		return nil, err
	}
	return uc.PredictSeries(ctx, series)
}

// PredictSeries scales the closes with a scaler fitted on series itself,
// feeds the most recent complete window to the model and maps the output
// back to a price.
func (uc *PredictionUseCase) PredictSeries(ctx context.Context, series models.PriceSeries) (res *models.PredictionResult, err error) {
	start := uc.now()
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrInsufficientData):
			outcome = "insufficient_data"
		case err != nil:
			outcome = "error"
		}
		uc.metrics.RecordPrediction(outcome, uc.now().Sub(start).Seconds())
	}()

	if len(series) < uc.window {
		return nil, &InsufficientDataError{Have: len(series), Need: uc.window}
	}
	last, _ := series.Last()
	uc.metrics.RecordLastPrice(last.Close)

	scaler := features.NewMinMaxScaler()
	scaled, err := scaler.FitTransform(series.Closes())
	if err != nil {
		return nil, fmt.Errorf("scale series: %w", err)
	}
	window, err := features.LastWindow(scaled, uc.window)
	if err != nil {
		return nil, err
	}

	predictor, err := uc.models.Predictor(ctx, uc.reload)
	if err != nil {
		return nil, err
	}
	out, err := predictor.Predict(ctx, [][]float64{window})
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("model returned %d outputs for one window", len(out))
	}

	prices, err := scaler.InverseTransform(out)
	if err != nil {
		return nil, fmt.Errorf("inverse scale: %w", err)
	}
	uc.metrics.RecordPredictedPrice(prices[0])

	uc.l.Debug("prediction",
		applogger.Int("points", len(series)),
		applogger.Float("current_price", last.Close),
		applogger.Float("prediction", prices[0]),
	)

	return &models.PredictionResult{
		Prediction:   prices[0],
		CurrentPrice: last.Close,
		Timestamp:    util.FormatDateTime(last.Timestamp),
	}, nil
}
