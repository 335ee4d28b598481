package cli

import (
	"encoding/json"
	"fmt"

	"BTCForecast/internal/di"
	"BTCForecast/internal/usecase"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch price history once and print it as JSON",
	Long: `Fetch Bitcoin price history for a timeframe using the same providers,
fallback and retry policy as the API, and print the result as JSON.

Example:
  btcforecast fetch --timeframe 30d`,
	RunE: runFetch,
}

var fetchTimeframe string

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchTimeframe, "timeframe", "t", "7d", "timeframe: 7d, 30d or anything else for 90 days")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// keep stdout for the JSON
	cfg.Log.Output = "stderr"

	data, err := di.InitializeMarketData(cfg)
	if err != nil {
		return fmt.Errorf("market data initialization failed: %w", err)
	}

	points, err := usecase.NewHistoricalUseCase(data).GetHistorical(cmd.Context(), fetchTimeframe)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(points)
}
