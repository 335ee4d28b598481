package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestSlidingWindows(t *testing.T) {
	w := SlidingWindows(seq(5), 3)
	assert.Equal(t, [][]float64{{0, 1, 2}, {1, 2, 3}}, w)
}

func TestSlidingWindowsExactLength(t *testing.T) {
	assert.Empty(t, SlidingWindows(seq(60), 60))
	_, err := LastWindow(seq(60), 60)
	assert.Error(t, err)
}

func TestLastWindowExcludesFinalPoint(t *testing.T) {
	values := seq(120)
	w, err := LastWindow(values, 60)
	require.NoError(t, err)
	require.Len(t, w, 60)
	assert.Equal(t, 59.0, w[0])
	assert.Equal(t, 118.0, w[59])
}

func TestSlidingWindowsCopies(t *testing.T) {
	values := seq(4)
	w := SlidingWindows(values, 2)
	w[0][0] = 99
	assert.Equal(t, 0.0, values[0])
}
