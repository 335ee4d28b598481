package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"value":42}`))
	}))
	defer server.Close()

	c := NewClient(WithTimeout(time.Second), WithHeader("User-Agent", "agent"))
	var out struct {
		Value int `json:"value"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         server.URL,
		QueryParams: map[string][]string{"days": {"7"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
}

func TestSendAndParseStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: server.URL}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "unexpected status 502: upstream down", se.Error())
}

func TestSendAndParseWithRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(WithRetryBackoff(time.Millisecond))
	err := c.SendAndParseWithRetry(context.Background(), &RequestOptions{Method: MethodPost, URL: server.URL, Body: map[string]int{"a": 1}}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendAndParseWithRetrySkipsClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	c := NewClient(WithRetryBackoff(time.Millisecond))
	err := c.SendAndParseWithRetry(context.Background(), &RequestOptions{Method: MethodPost, URL: server.URL}, nil, 3)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
