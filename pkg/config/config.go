package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	MarketData  MarketDataConfig `yaml:"market_data"`
	Model       ModelConfig      `yaml:"model"`
	Cache       CacheConfig      `yaml:"cache"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"5000" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type MarketDataConfig struct {
	Coin       string          `yaml:"coin" default:"bitcoin" validate:"required"`
	Currency   string          `yaml:"currency" default:"usd" validate:"required"`
	MaxRetries int             `yaml:"max_retries" default:"3" validate:"gte=1,lte=10"`
	Backoff    time.Duration   `yaml:"backoff" default:"2s" validate:"gte=0"`
	CoinGecko  CoinGeckoConfig `yaml:"coingecko"`
	Yahoo      YahooConfig     `yaml:"yahoo"`
}

type CoinGeckoConfig struct {
	BaseURL string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"required,url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
}

type YahooConfig struct {
	BaseURL  string `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
	Ticker   string `yaml:"ticker" default:"BTC-USD" validate:"required"`
	Interval string `yaml:"interval" default:"1d" validate:"required"`
	// Zero leaves the request bounded only by the caller's context.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type ModelConfig struct {
	Backend          string        `yaml:"backend" default:"native" validate:"oneof=native remote"`
	Dir              string        `yaml:"dir" default:"models" validate:"required"`
	File             string        `yaml:"file" default:"best_model_lstm.json" validate:"required"`
	ScalerX          string        `yaml:"scaler_x" default:"lstm_scaler_X.json" validate:"required"`
	ScalerY          string        `yaml:"scaler_y" default:"lstm_scaler_y.json" validate:"required"`
	WindowSize       int           `yaml:"window_size" default:"60" validate:"gte=2"`
	ReloadPerRequest bool          `yaml:"reload_per_request" default:"true"`
	ServiceURL       string        `yaml:"service_url" validate:"omitempty,url"`
	Timeout          time.Duration `yaml:"timeout" default:"5s" validate:"gt=0"`
	Retries          int           `yaml:"retries" default:"2" validate:"gte=1"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
	TTL     time.Duration `yaml:"ttl" default:"60s" validate:"gt=0"`
	MaxSize int           `yaml:"max_size" default:"64" validate:"gte=1"`
	Redis   RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"btcforecast"`
}

type RateLimitConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Capacity     float64 `yaml:"capacity" default:"10" validate:"gt=0"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"1" validate:"gt=0"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// tags are static, a failure here is a programming error
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BTCF_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("BTCF_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BTCF_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("COINGECKO_URL"); v != "" {
		c.MarketData.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.MarketData.CoinGecko.APIKey = v
	}
	if v := os.Getenv("YAHOO_URL"); v != "" {
		c.MarketData.Yahoo.BaseURL = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Model.Dir = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on '%s'", fe.Namespace(), fe.Tag())
		}
		return err
	}
	if c.Model.Backend == "remote" && c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required for the remote backend")
	}
	if c.Model.File == c.Model.ScalerX || c.Model.File == c.Model.ScalerY {
		return fmt.Errorf("model.file must differ from the scaler files")
	}
	return nil
}
