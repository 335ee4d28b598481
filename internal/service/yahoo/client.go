package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"BTCForecast/internal/domain/models"
	drepo "BTCForecast/internal/domain/repository"
	xhttp "BTCForecast/pkg/http"
)

// ErrNoData is returned when the chart response has no closes.
var ErrNoData = errors.New("yahoo: no data returned")

// Client implements a PriceProvider using the Yahoo Finance chart API,
// keyed by a period string such as "7d", "1mo" or "3mo".
type Client struct {
	baseURL  string
	ticker   string
	interval string
	client   *xhttp.Client
}

// New creates a Yahoo provider. A zero timeout leaves requests bounded only
// by the caller's context.
func New(baseURL, ticker, interval string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		ticker:   ticker,
		interval: interval,
		client: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithHeader("User-Agent", "Mozilla/5.0"),
		),
	}
}

func (c *Client) Name() string { return "yahoo" }

// chartResponse is the response structure from Yahoo Finance chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the ticker history for lb.Period.
func (c *Client) Fetch(ctx context.Context, lb models.Lookback) (models.PriceSeries, error) {
	var chart chartResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(c.ticker)),
		QueryParams: map[string][]string{
			"range":    {lb.Period},
			"interval": {c.interval},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// null bars are skipped
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, models.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *closes[i],
		})
	}

	series := models.NewPriceSeries(points)
	if len(series) == 0 {
		return nil, ErrNoData
	}
	return series, nil
}

var _ drepo.PriceProvider = (*Client)(nil)
