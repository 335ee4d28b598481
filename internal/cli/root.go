package cli

import (
	"fmt"

	"BTCForecast/pkg/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "btcforecast",
	Short: "Bitcoin price history and next-price prediction service",
	Long: `btcforecast serves Bitcoin price history fetched from CoinGecko (with a
Yahoo Finance fallback) and predicts the next closing price with a pretrained
LSTM model.`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file path")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
