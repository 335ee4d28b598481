//go:build wireinject
// +build wireinject

package di

import (
	"BTCForecast/internal/domain/repository"
	"BTCForecast/pkg/config"
	"BTCForecast/pkg/server"

	"github.com/google/wire"
)

var marketDataSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvidePriceProviders,
	ProvideCache,
	ProvideMarketData,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		marketDataSet,

		// Model
		ProvideArtifactState,

		// Use cases
		ProvideHistoricalUseCase,
		ProvidePredictionUseCase,

		// HTTP
		ProvideBitcoinHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeMarketData wires the fetch path alone, for one-shot commands.
func InitializeMarketData(cfg *config.Config) (repository.MarketData, error) {
	wire.Build(marketDataSet)
	return nil, nil
}
