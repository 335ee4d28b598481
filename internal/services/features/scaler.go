package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

var ErrNotFitted = errors.New("scaler not fitted")

// MinMaxScaler rescales a univariate series into FeatureRange.
type MinMaxScaler struct {
	DataMin      float64    `json:"data_min"`
	DataMax      float64    `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
	Fitted       bool       `json:"-"`
}

// NewMinMaxScaler returns an unfitted scaler targeting [0, 1].
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: [2]float64{0, 1}}
}

// LoadMinMaxScaler reads a fitted scaler from a JSON file.
func LoadMinMaxScaler(path string) (*MinMaxScaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	s := NewMinMaxScaler()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("decode scaler %s: %w", path, err)
	}
	if s.FeatureRange[0] >= s.FeatureRange[1] {
		return nil, fmt.Errorf("scaler %s: invalid feature range %v", path, s.FeatureRange)
	}
	if s.DataMax < s.DataMin || math.IsNaN(s.DataMin) || math.IsNaN(s.DataMax) {
		return nil, fmt.Errorf("scaler %s: invalid data range [%v, %v]", path, s.DataMin, s.DataMax)
	}
	s.Fitted = true
	return s, nil
}

// Fit records the min and max of values.
func (s *MinMaxScaler) Fit(values []float64) error {
	if len(values) == 0 {
		return errors.New("fit scaler: no values")
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	s.DataMin, s.DataMax = lo, hi
	s.Fitted = true
	return nil
}

// scale and offset such that y = x*scale + offset. A constant input maps to
// the lower bound of the range.
func (s *MinMaxScaler) params() (scale, offset float64) {
	dataRange := s.DataMax - s.DataMin
	if dataRange == 0 {
		dataRange = 1
	}
	scale = (s.FeatureRange[1] - s.FeatureRange[0]) / dataRange
	offset = s.FeatureRange[0] - s.DataMin*scale
	return scale, offset
}

func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	scale, offset := s.params()
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*scale + offset
	}
	return out, nil
}

// FitTransform fits on values and returns them scaled.
func (s *MinMaxScaler) FitTransform(values []float64) ([]float64, error) {
	if err := s.Fit(values); err != nil {
		return nil, err
	}
	return s.Transform(values)
}

func (s *MinMaxScaler) InverseTransform(values []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	scale, offset := s.params()
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - offset) / scale
	}
	return out, nil
}
