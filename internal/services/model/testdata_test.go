package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

// tinyArtifact is a one-unit LSTM followed by a dense head.
func tinyArtifact() map[string]any {
	return map[string]any{
		"name": "tiny",
		"input": map[string]any{
			"batch_shape": []any{nil, 3, 1},
			"dtype":       "float32",
		},
		"layers": []any{
			map[string]any{
				"type":             "lstm",
				"units":            1,
				"kernel":           [][]float64{{1, 1, 1, 1}},
				"recurrent_kernel": [][]float64{{0, 0, 0, 0}},
				"bias":             []float64{0, 0, 0, 0},
			},
			map[string]any{"type": "dropout", "rate": 0.2},
			map[string]any{
				"type":   "dense",
				"units":  1,
				"kernel": [][]float64{{2}},
				"bias":   []float64{0.5},
			},
		},
	}
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}
