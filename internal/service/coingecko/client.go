package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"BTCForecast/internal/domain/models"
	drepo "BTCForecast/internal/domain/repository"
	xhttp "BTCForecast/pkg/http"
	"BTCForecast/pkg/util"
)

// ErrNoPrices is returned when a 200 response carries no usable prices.
var ErrNoPrices = errors.New("coingecko: no prices returned")

// Client implements a PriceProvider backed by the CoinGecko market-chart API.
type Client struct {
	baseURL  string
	coin     string
	currency string
	client   *xhttp.Client
}

// New creates a CoinGecko provider. timeout bounds every request.
func New(baseURL, coin, currency, apiKey string, timeout time.Duration) *Client {
	opts := []xhttp.ClientOption{
		xhttp.WithTimeout(timeout),
		xhttp.WithHeader("Accept", "application/json"),
	}
	if apiKey != "" {
		opts = append(opts, xhttp.WithHeader("x-cg-demo-api-key", apiKey))
	}
	return &Client{
		baseURL:  baseURL,
		coin:     coin,
		currency: currency,
		client:   xhttp.NewClient(opts...),
	}
}

func (c *Client) Name() string { return "coingecko" }

type marketChart struct {
	// Each entry is [epoch millis, price].
	Prices [][]float64 `json:"prices"`
}

// Fetch returns lb.Days of price history.
func (c *Client) Fetch(ctx context.Context, lb models.Lookback) (models.PriceSeries, error) {
	var mc marketChart
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, url.PathEscape(c.coin)),
		QueryParams: map[string][]string{
			"vs_currency": {c.currency},
			"days":        {strconv.Itoa(lb.Days)},
		},
	}, &mc)
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart: %w", err)
	}

	points := make([]models.PricePoint, 0, len(mc.Prices))
	for _, p := range mc.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, models.PricePoint{
			Timestamp: util.FromUnixMillis(int64(p[0])),
			Close:     p[1],
		})
	}

	series := models.NewPriceSeries(points)
	if len(series) == 0 {
		return nil, ErrNoPrices
	}
	return series, nil
}

var _ drepo.PriceProvider = (*Client)(nil)
