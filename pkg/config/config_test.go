package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.True(t, cfg.Server.CORS)
	assert.Equal(t, 3, cfg.MarketData.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.MarketData.Backoff)
	assert.Equal(t, 10*time.Second, cfg.MarketData.CoinGecko.Timeout)
	assert.Zero(t, cfg.MarketData.Yahoo.Timeout)
	assert.Equal(t, "BTC-USD", cfg.MarketData.Yahoo.Ticker)
	assert.Equal(t, 60, cfg.Model.WindowSize)
	assert.True(t, cfg.Model.ReloadPerRequest)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
environment: production
server:
  port: 8081
  cors: false
market_data:
  max_retries: 5
  backoff: 500ms
model:
  reload_per_request: false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.False(t, cfg.Server.CORS)
	assert.Equal(t, 5, cfg.MarketData.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.MarketData.Backoff)
	assert.False(t, cfg.Model.ReloadPerRequest)
	// untouched keys keep their defaults
	assert.Equal(t, "usd", cfg.MarketData.Currency)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("BTCF_PORT", "9090")
	t.Setenv("COINGECKO_URL", "http://127.0.0.1:1234")
	t.Setenv("MODEL_DIR", "/srv/models")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.MarketData.CoinGecko.BaseURL)
	assert.Equal(t, "/srv/models", cfg.Model.Dir)
}

func TestLoadWithEnvBadPort(t *testing.T) {
	t.Setenv("BTCF_PORT", "not-a-port")
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero retries", mutate: func(c *Config) { c.MarketData.MaxRetries = 0 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Model.Backend = "onnx" }, wantErr: true},
		{name: "remote without url", mutate: func(c *Config) { c.Model.Backend = "remote" }, wantErr: true},
		{
			name: "remote with url",
			mutate: func(c *Config) {
				c.Model.Backend = "remote"
				c.Model.ServiceURL = "http://inference:8000"
			},
		},
		{name: "model file collides with scaler", mutate: func(c *Config) { c.Model.File = c.Model.ScalerX }, wantErr: true},
		{name: "bad cache backend", mutate: func(c *Config) { c.Cache.Backend = "disk" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
