package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"BTCForecast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BTC-USD", r.URL.Path)
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[1717286400,1717200000,1717372800],
			"indicators":{"quote":[{"close":[67100.5,67000.0,null]}]}}],"error":null}}`))
	}))
	defer server.Close()

	c := New(server.URL, "BTC-USD", "1d", 0)
	series, err := c.Fetch(context.Background(), models.Lookback{Period: "1mo", Days: 30})
	require.NoError(t, err)

	require.Len(t, series, 2)
	assert.True(t, series.IsChronological())
	assert.Equal(t, []float64{67000.0, 67100.5}, series.Closes())
}

func TestFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer server.Close()

	c := New(server.URL, "BTC-USD", "1d", 0)
	_, err := c.Fetch(context.Background(), models.Lookback{Period: "7d", Days: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestFetchEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`))
	}))
	defer server.Close()

	c := New(server.URL, "BTC-USD", "1d", 0)
	_, err := c.Fetch(context.Background(), models.Lookback{Period: "7d", Days: 7})
	assert.ErrorIs(t, err, ErrNoData)
}
