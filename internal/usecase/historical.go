package usecase

import (
	"context"

	"BTCForecast/internal/domain/models"
	drepo "BTCForecast/internal/domain/repository"
	"BTCForecast/pkg/util"
)

// HistoricalUseCase serves the price history of a timeframe.
type HistoricalUseCase struct {
	data drepo.MarketData
}

func NewHistoricalUseCase(data drepo.MarketData) *HistoricalUseCase {
	return &HistoricalUseCase{data: data}
}

// GetHistorical maps timeframe to a fetch period and returns one point per
// fetched close, oldest first.
func (uc *HistoricalUseCase) GetHistorical(ctx context.Context, timeframe string) ([]models.HistoricalPoint, error) {
	period := drepo.PeriodForTimeframe(timeframe)

	series, err := uc.data.Fetch(ctx, period)
	if err != nil {
		return nil, err
	}

	out := make([]models.HistoricalPoint, len(series))
	for i, p := range series {
		out[i] = models.HistoricalPoint{
			Date:  util.FormatDate(p.Timestamp),
			Price: p.Close,
		}
	}
	return out, nil
}
