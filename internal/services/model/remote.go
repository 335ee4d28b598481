package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BTCForecast/internal/domain/service"
	xhttp "BTCForecast/pkg/http"
)

// RemoteLoader talks to an external inference service. Load probes its
// health endpoint and hands back a predictor bound to the same service.
type RemoteLoader struct {
	baseURL string
	client  *xhttp.Client
	retries int
}

// NewRemoteLoader builds a loader for the service at baseURL.
func NewRemoteLoader(baseURL string, timeout time.Duration, retries int) *RemoteLoader {
	return &RemoteLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		retries: retries,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (r *RemoteLoader) Load(ctx context.Context) (service.Predictor, error) {
	var resp healthResponse
	err := r.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    r.baseURL + "/health",
	}, &resp)
	if err != nil {
		return nil, &LoadError{Path: r.baseURL, Err: err}
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, &LoadError{Path: r.baseURL, Err: fmt.Errorf("inference service status %q", resp.Status)}
	}
	return &RemotePredictor{loader: r}, nil
}

// RemotePredictor posts windows to the inference service.
type RemotePredictor struct {
	loader *RemoteLoader
}

type predictRequest struct {
	Windows [][]float64 `json:"windows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func (p *RemotePredictor) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	var resp predictResponse
	err := p.loader.client.SendAndParseWithRetry(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    p.loader.baseURL + "/predict",
		Body:   predictRequest{Windows: windows},
	}, &resp, p.loader.retries)
	if err != nil {
		return nil, fmt.Errorf("post /predict: %w", err)
	}
	if len(resp.Predictions) != len(windows) {
		return nil, fmt.Errorf("inference service returned %d predictions for %d windows", len(resp.Predictions), len(windows))
	}
	return resp.Predictions, nil
}

var (
	_ service.ModelLoader = (*RemoteLoader)(nil)
	_ service.Predictor   = (*RemotePredictor)(nil)
)
