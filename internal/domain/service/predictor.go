package service

import "context"

// Predictor maps a batch of windows, each a sequence of scaled closes, to one
// scaled next-step value per window.
type Predictor interface {
	Predict(ctx context.Context, windows [][]float64) ([]float64, error)
}

// ModelLoader produces a ready predictor, reading the artifact each call.
type ModelLoader interface {
	Load(ctx context.Context) (Predictor, error)
}
