package models

// PredictionResult is the outcome of one prediction request.
type PredictionResult struct {
	Prediction   float64 `json:"prediction"`
	CurrentPrice float64 `json:"current_price"`
	Timestamp    string  `json:"timestamp"`
}

// HistoricalPoint is the wire shape of one historical price.
type HistoricalPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ModelStatus describes the artifact state loaded at startup.
type ModelStatus struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend"`
	Reason    string `json:"reason,omitempty"`
	Window    int    `json:"window"`
}
