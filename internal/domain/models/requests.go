package models

// Requests for the HTTP endpoints.

type HistoricalRequest struct {
	Timeframe string `query:"timeframe" default:"7d"`
}

// PredictRequest's timeframe is passed to the fetcher as is.
type PredictRequest struct {
	Timeframe string `json:"timeframe" default:"1d"`
}
