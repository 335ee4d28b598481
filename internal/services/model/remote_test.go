package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteLoaderPredict(t *testing.T) {
	var predictCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/predict":
			assert.Equal(t, http.MethodPost, r.Method)
			// first call fails transiently
			if predictCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			var req predictRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			preds := make([]float64, len(req.Windows))
			for i, w := range req.Windows {
				preds[i] = w[len(w)-1]
			}
			_ = json.NewEncoder(w).Encode(predictResponse{Predictions: preds})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p, err := NewRemoteLoader(server.URL+"/", time.Second, 3).Load(context.Background())
	require.NoError(t, err)

	out, err := p.Predict(context.Background(), [][]float64{{0.1, 0.4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4}, out)
	assert.Equal(t, int32(2), predictCalls.Load())
}

func TestRemoteLoaderUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewRemoteLoader(server.URL, time.Second, 1).Load(context.Background())
	assert.ErrorIs(t, err, ErrModelLoad)
}

func TestRemotePredictorClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	p, err := NewRemoteLoader(server.URL, time.Second, 3).Load(context.Background())
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), [][]float64{{1}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemotePredictorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","predictions":[]}`))
	}))
	defer server.Close()

	p, err := NewRemoteLoader(server.URL, time.Second, 1).Load(context.Background())
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), [][]float64{{1}})
	assert.Error(t, err)
}
