package di

import (
	"context"
	"fmt"
	"io"

	"BTCForecast/internal/domain/repository"
	"BTCForecast/internal/handler/api"
	"BTCForecast/internal/service/coingecko"
	"BTCForecast/internal/service/marketdata"
	"BTCForecast/internal/service/ratelimit"
	"BTCForecast/internal/service/yahoo"
	"BTCForecast/internal/services/model"
	"BTCForecast/internal/usecase"
	"BTCForecast/pkg/cache"
	"BTCForecast/pkg/config"
	xhttp "BTCForecast/pkg/http"
	applogger "BTCForecast/pkg/logger"
	"BTCForecast/pkg/metrics"
	"BTCForecast/pkg/server"

	"github.com/labstack/echo/v4"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceProviders returns the market data providers in fallback order.
func ProvidePriceProviders(cfg *config.Config) []repository.PriceProvider {
	md := cfg.MarketData
	return []repository.PriceProvider{
		coingecko.New(md.CoinGecko.BaseURL, md.Coin, md.Currency, md.CoinGecko.APIKey, md.CoinGecko.Timeout),
		yahoo.New(md.Yahoo.BaseURL, md.Yahoo.Ticker, md.Yahoo.Interval, md.Yahoo.Timeout),
	}
}

// ProvideCache creates the series cache. It returns nil when caching is off.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	cc := cfg.Cache
	if !cc.Enabled {
		return nil, nil
	}

	newRedis := func() (*cache.RedisCache, error) {
		rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Host:     cc.Redis.Host,
			Port:     cc.Redis.Port,
			Password: cc.Redis.Password,
			DB:       cc.Redis.DB,
			Prefix:   cc.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	}

	switch cc.Backend {
	case "redis":
		rc, err := newRedis()
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "layered":
		rc, err := newRedis()
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(cache.NewMemoryCache(cache.WithMaxEntries(cc.MaxSize)), rc, cc.TTL), nil
	default:
		return cache.NewMemoryCache(cache.WithMaxEntries(cc.MaxSize)), nil
	}
}

// ProvideMarketData builds the retrying fetcher, wrapped in the series cache
// when one is configured.
func ProvideMarketData(
	cfg *config.Config,
	providers []repository.PriceProvider,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) repository.MarketData {
	var data repository.MarketData = marketdata.New(providers,
		marketdata.WithMaxRetries(cfg.MarketData.MaxRetries),
		marketdata.WithBackoff(cfg.MarketData.Backoff),
		marketdata.WithMetrics(m),
		marketdata.WithLogger(l.With(applogger.String("component", "marketdata"))),
	)
	if c != nil {
		data = marketdata.NewCached(data, c, cfg.Cache.TTL, m, l)
	}
	return data
}

// ProvideArtifactState loads the model artifact once at startup.
func ProvideArtifactState(cfg *config.Config, l *applogger.Logger) *model.ArtifactState {
	return model.LoadArtifact(context.Background(), cfg.Model, l.With(applogger.String("component", "model")))
}

// ProvideHistoricalUseCase creates the historical prices use case.
func ProvideHistoricalUseCase(data repository.MarketData) *usecase.HistoricalUseCase {
	return usecase.NewHistoricalUseCase(data)
}

// ProvidePredictionUseCase creates the prediction use case.
func ProvidePredictionUseCase(
	cfg *config.Config,
	data repository.MarketData,
	state *model.ArtifactState,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictionUseCase {
	return usecase.NewPredictionUseCase(data, state,
		usecase.WithWindow(cfg.Model.WindowSize),
		usecase.WithReload(cfg.Model.ReloadPerRequest),
		usecase.WithPredictionMetrics(m),
		usecase.WithPredictionLogger(l),
	)
}

// ProvideBitcoinHandler creates the HTTP handler, rate limiting predictions
// when configured.
func ProvideBitcoinHandler(
	cfg *config.Config,
	l *applogger.Logger,
	hist *usecase.HistoricalUseCase,
	pred *usecase.PredictionUseCase,
	state *model.ArtifactState,
) *api.BitcoinHandler {
	var mw []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		lim := ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
		mw = append(mw, ratelimit.Middleware(lim, l))
	}
	return api.NewBitcoinHandler(l, hist, pred, state, mw...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, h *api.BitcoinHandler, c cache.Service) *server.App {
	var closers []io.Closer
	if c != nil {
		closers = append(closers, c)
	}
	return server.New(cfg, l, []xhttp.Handler{h}, closers...)
}
