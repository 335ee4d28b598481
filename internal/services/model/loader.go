package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"BTCForecast/internal/domain/service"
	applogger "BTCForecast/pkg/logger"
)

// ErrModelLoad is matched by every model or scaler load failure.
var ErrModelLoad = errors.New("model load failed")

// LoadError reports that an artifact could not be turned into a predictor.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrModelLoad, e.Err} }

// artifactFile is the serialized form of a trained network.
type artifactFile struct {
	Name   string      `json:"name,omitempty"`
	Input  inputSpec   `json:"input"`
	Layers []layerSpec `json:"layers"`
}

type inputSpec struct {
	BatchShape []*int `json:"batch_shape,omitempty"`
	Dtype      string `json:"dtype,omitempty"`
}

type layerSpec struct {
	Name                string      `json:"name,omitempty"`
	Type                string      `json:"type"`
	Units               int         `json:"units,omitempty"`
	Activation          string      `json:"activation,omitempty"`
	RecurrentActivation string      `json:"recurrent_activation,omitempty"`
	ReturnSequences     bool        `json:"return_sequences,omitempty"`
	Rate                float64     `json:"rate,omitempty"`
	BatchShape          []*int      `json:"batch_shape,omitempty"`
	Kernel              [][]float64 `json:"kernel,omitempty"`
	RecurrentKernel     [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias                []float64   `json:"bias,omitempty"`
}

// FileLoader reads a network artifact from disk on every Load.
type FileLoader struct {
	path   string
	window int
	l      *applogger.Logger

	// set after the first lenient load has been reported
	fallbackLogged atomic.Bool
}

// NewFileLoader creates a loader for the artifact at path expecting inputs of
// window steps with a single feature.
func NewFileLoader(path string, window int, l *applogger.Logger) *FileLoader {
	if l == nil {
		l = applogger.Nop()
	}
	return &FileLoader{path: path, window: window, l: l}
}

// Path returns the artifact location.
func (f *FileLoader) Path() string { return f.path }

// Load decodes the artifact strictly and, if that fails, once more with every
// batch_shape attribute removed.
func (f *FileLoader) Load(ctx context.Context) (service.Predictor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &LoadError{Path: f.path, Err: err}
	}

	net, strictErr := decodeStrict(b, f.window)
	if strictErr == nil {
		return net, nil
	}

	net, err = decodeLenient(b, f.window)
	if err != nil {
		f.l.Error("model decode failed",
			applogger.String("path", f.path),
			applogger.String("strict_error", strictErr.Error()),
			applogger.Error(err),
		)
		return nil, &LoadError{Path: f.path, Err: fmt.Errorf("strict: %v; lenient: %w", strictErr, err)}
	}
	if f.fallbackLogged.CompareAndSwap(false, true) {
		f.l.Warn("model loaded without batch_shape",
			applogger.String("path", f.path),
			applogger.Error(strictErr),
		)
	} else {
		f.l.Debug("model loaded without batch_shape", applogger.String("path", f.path))
	}
	return net, nil
}

func decodeStrict(b []byte, window int) (*Network, error) {
	var af artifactFile
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&af); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := checkBatchShape(af.Input.BatchShape, window); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if !knownDtypes[af.Input.Dtype] {
		return nil, fmt.Errorf("input: unsupported dtype %q", af.Input.Dtype)
	}
	for i, ls := range af.Layers {
		if ls.BatchShape == nil {
			continue
		}
		if i > 0 {
			return nil, fmt.Errorf("layer %d: batch_shape only allowed on the first layer", i)
		}
		if err := checkBatchShape(ls.BatchShape, window); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return build(&af, window)
}

// Weights are evaluated in float64 whatever the stored dtype.
var knownDtypes = map[string]bool{
	"":         true,
	"float16":  true,
	"bfloat16": true,
	"float32":  true,
	"float64":  true,
}

func decodeLenient(b []byte, window int) (*Network, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	stripped, err := json.Marshal(stripKey(raw, "batch_shape"))
	if err != nil {
		return nil, err
	}
	return decodeStrict(stripped, window)
}

func stripKey(v any, key string) any {
	switch t := v.(type) {
	case map[string]any:
		delete(t, key)
		for k, child := range t {
			t[k] = stripKey(child, key)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = stripKey(child, key)
		}
		return t
	default:
		return v
	}
}

// checkBatchShape accepts (batch, window, 1) where any dimension may be null.
func checkBatchShape(shape []*int, window int) error {
	if shape == nil {
		return nil
	}
	if len(shape) != 3 {
		return fmt.Errorf("batch_shape has %d dims, want 3", len(shape))
	}
	if d := shape[0]; d != nil && *d < 1 {
		return fmt.Errorf("batch_shape batch dim %d", *d)
	}
	if d := shape[1]; d != nil && window > 0 && *d != window {
		return fmt.Errorf("batch_shape has %d steps, want %d", *d, window)
	}
	if d := shape[2]; d != nil && *d != 1 {
		return fmt.Errorf("batch_shape has %d features, want 1", *d)
	}
	return nil
}

func build(af *artifactFile, window int) (*Network, error) {
	if len(af.Layers) == 0 {
		return nil, errors.New("artifact has no layers")
	}

	var (
		layers = make([]layer, 0, len(af.Layers))
		dim    = 1
		seq    = true
	)
	for i, ls := range af.Layers {
		switch ls.Type {
		case "lstm":
			if !seq {
				return nil, fmt.Errorf("layer %d: lstm needs a sequence input", i)
			}
			l, err := buildLSTM(ls, dim)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			layers = append(layers, l)
			dim, seq = ls.Units, ls.ReturnSequences
		case "dense":
			if seq {
				return nil, fmt.Errorf("layer %d: dense after a sequence output", i)
			}
			l, err := buildDense(ls, dim)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			layers = append(layers, l)
			dim = ls.Units
		case "dropout":
			// identity at inference
		default:
			return nil, fmt.Errorf("layer %d: unsupported type %q", i, ls.Type)
		}
	}
	if seq || dim != 1 {
		return nil, fmt.Errorf("network must end in a single output, got dim %d", dim)
	}

	return &Network{name: af.Name, window: window, layers: layers}, nil
}

func buildLSTM(ls layerSpec, in int) (*lstmLayer, error) {
	u := ls.Units
	if u < 1 {
		return nil, fmt.Errorf("lstm units %d", u)
	}
	if err := checkMatrix("kernel", ls.Kernel, in, 4*u); err != nil {
		return nil, err
	}
	if err := checkMatrix("recurrent_kernel", ls.RecurrentKernel, u, 4*u); err != nil {
		return nil, err
	}
	if len(ls.Bias) != 4*u {
		return nil, fmt.Errorf("bias has %d values, want %d", len(ls.Bias), 4*u)
	}
	act, err := lookupActivation(ls.Activation, "tanh")
	if err != nil {
		return nil, err
	}
	recAct, err := lookupActivation(ls.RecurrentActivation, "sigmoid")
	if err != nil {
		return nil, err
	}
	return &lstmLayer{
		units:      u,
		kernel:     ls.Kernel,
		recurrent:  ls.RecurrentKernel,
		bias:       ls.Bias,
		act:        act,
		recAct:     recAct,
		returnSeqs: ls.ReturnSequences,
	}, nil
}

func buildDense(ls layerSpec, in int) (*denseLayer, error) {
	if ls.Units < 1 {
		return nil, fmt.Errorf("dense units %d", ls.Units)
	}
	if err := checkMatrix("kernel", ls.Kernel, in, ls.Units); err != nil {
		return nil, err
	}
	if len(ls.Bias) != ls.Units {
		return nil, fmt.Errorf("bias has %d values, want %d", len(ls.Bias), ls.Units)
	}
	act, err := lookupActivation(ls.Activation, "linear")
	if err != nil {
		return nil, err
	}
	return &denseLayer{units: ls.Units, kernel: ls.Kernel, bias: ls.Bias, act: act}, nil
}

func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%s has %d rows, want %d", name, len(m), rows)
	}
	for i, r := range m {
		if len(r) != cols {
			return fmt.Errorf("%s row %d has %d cols, want %d", name, i, len(r), cols)
		}
	}
	return nil
}

var _ service.ModelLoader = (*FileLoader)(nil)
