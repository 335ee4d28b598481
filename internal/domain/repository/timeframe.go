package repository

import "BTCForecast/internal/domain/models"

// Fetch periods understood by the providers.
const (
	Period7d  = "7d"
	Period1mo = "1mo"
	Period3mo = "3mo"
)

// PeriodForTimeframe maps the historical endpoint's timeframe to a fetch period.
func PeriodForTimeframe(tf string) string {
	switch tf {
	case "7d":
		return Period7d
	case "30d":
		return Period1mo
	default:
		return Period3mo
	}
}

// LookbackDays maps a fetch period to the number of trailing days requested
// from a day-count keyed provider.
func LookbackDays(period string) int {
	switch period {
	case Period7d:
		return 7
	case Period1mo:
		return 30
	default:
		return 90
	}
}

// LookbackFor builds the provider request for a period.
func LookbackFor(period string) models.Lookback {
	return models.Lookback{Period: period, Days: LookbackDays(period)}
}
