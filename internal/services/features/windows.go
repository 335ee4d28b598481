package features

import "fmt"

// SlidingWindows returns, for every i in [size, len(values)), the slice
// values[i-size:i]. The final element of values never starts a window of its
// own, so a series of exactly size points yields nothing.
func SlidingWindows(values []float64, size int) [][]float64 {
	if size <= 0 || len(values) <= size {
		return nil
	}
	out := make([][]float64, 0, len(values)-size)
	for i := size; i < len(values); i++ {
		w := make([]float64, size)
		copy(w, values[i-size:i])
		out = append(out, w)
	}
	return out
}

// LastWindow returns the most recent window produced by SlidingWindows.
func LastWindow(values []float64, size int) ([]float64, error) {
	windows := SlidingWindows(values, size)
	if len(windows) == 0 {
		return nil, fmt.Errorf("no complete window of %d points in %d values", size, len(values))
	}
	return windows[len(windows)-1], nil
}
