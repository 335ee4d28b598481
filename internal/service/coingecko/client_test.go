package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"BTCForecast/internal/domain/models"
	xhttp "BTCForecast/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))

		w.Header().Set("Content-Type", "application/json")
		// deliberately out of order with a duplicate timestamp
		_, _ = w.Write([]byte(`{"prices":[[1717286400000,67100.5],[1717200000000,67000.0],[1717286400000,67150.0]]}`))
	}))
	defer server.Close()

	c := New(server.URL, "bitcoin", "usd", "demo-key", 5*time.Second)
	series, err := c.Fetch(context.Background(), models.Lookback{Period: "1mo", Days: 30})
	require.NoError(t, err)

	require.Len(t, series, 2)
	assert.True(t, series.IsChronological())
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), series[0].Timestamp)
	assert.Equal(t, 67150.0, series[1].Close)
	assert.Equal(t, "coingecko", c.Name())
}

func TestFetchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":{"error_code":429}}`))
	}))
	defer server.Close()

	c := New(server.URL, "bitcoin", "usd", "", 5*time.Second)
	_, err := c.Fetch(context.Background(), models.Lookback{Period: "7d", Days: 7})
	require.Error(t, err)

	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestFetchEmptyPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prices":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, "bitcoin", "usd", "", 5*time.Second)
	_, err := c.Fetch(context.Background(), models.Lookback{Period: "7d", Days: 7})
	assert.ErrorIs(t, err, ErrNoPrices)
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"prices":[[1717200000000,1]]}`))
	}))
	defer server.Close()

	c := New(server.URL, "bitcoin", "usd", "", 20*time.Millisecond)
	_, err := c.Fetch(context.Background(), models.Lookback{Period: "7d", Days: 7})
	assert.Error(t, err)
}
