package model

import (
	"context"
	"fmt"
	"math"

	"BTCForecast/internal/domain/service"
)

type activation func(float64) float64

var activations = map[string]activation{
	"":        func(x float64) float64 { return x },
	"linear":  func(x float64) float64 { return x },
	"relu":    func(x float64) float64 { return math.Max(0, x) },
	"tanh":    math.Tanh,
	"sigmoid": func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
	"hard_sigmoid": func(x float64) float64 {
		return math.Max(0, math.Min(1, 0.2*x+0.5))
	},
}

func lookupActivation(name, fallback string) (activation, error) {
	if name == "" {
		name = fallback
	}
	fn, ok := activations[name]
	if !ok {
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
	return fn, nil
}

// layer transforms a sequence of vectors. Non-sequence outputs are a
// sequence of length one.
type layer interface {
	forward(seq [][]float64) [][]float64
}

// lstmLayer uses the Keras gate order: input, forget, cell, output.
type lstmLayer struct {
	units      int
	kernel     [][]float64 // in x 4u
	recurrent  [][]float64 // u x 4u
	bias       []float64   // 4u
	act        activation
	recAct     activation
	returnSeqs bool
}

func (l *lstmLayer) forward(seq [][]float64) [][]float64 {
	u := l.units
	h := make([]float64, u)
	c := make([]float64, u)
	z := make([]float64, 4*u)

	var out [][]float64
	if l.returnSeqs {
		out = make([][]float64, 0, len(seq))
	}

	for _, x := range seq {
		copy(z, l.bias)
		for i, xi := range x {
			row := l.kernel[i]
			for j := range z {
				z[j] += xi * row[j]
			}
		}
		for i, hi := range h {
			row := l.recurrent[i]
			for j := range z {
				z[j] += hi * row[j]
			}
		}

		next := make([]float64, u)
		for k := 0; k < u; k++ {
			ig := l.recAct(z[k])
			fg := l.recAct(z[u+k])
			cg := l.act(z[2*u+k])
			og := l.recAct(z[3*u+k])
			c[k] = fg*c[k] + ig*cg
			next[k] = og * l.act(c[k])
		}
		h = next
		if l.returnSeqs {
			out = append(out, h)
		}
	}

	if l.returnSeqs {
		return out
	}
	return [][]float64{h}
}

type denseLayer struct {
	units  int
	kernel [][]float64 // in x units
	bias   []float64
	act    activation
}

func (l *denseLayer) forward(seq [][]float64) [][]float64 {
	out := make([][]float64, len(seq))
	for t, x := range seq {
		y := make([]float64, l.units)
		copy(y, l.bias)
		for i, xi := range x {
			row := l.kernel[i]
			for j := range y {
				y[j] += xi * row[j]
			}
		}
		for j := range y {
			y[j] = l.act(y[j])
		}
		out[t] = y
	}
	return out
}

// Network is a stacked recurrent regressor evaluated in process. It holds no
// mutable state, so one instance can serve concurrent requests.
type Network struct {
	name   string
	window int
	layers []layer
}

// Window is the number of time steps each input window must contain.
func (n *Network) Window() int { return n.window }

func (n *Network) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	out := make([]float64, 0, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(w) == 0 {
			return nil, fmt.Errorf("window %d is empty", i)
		}
		if n.window > 0 && len(w) != n.window {
			return nil, fmt.Errorf("window %d: got %d steps, want %d", i, len(w), n.window)
		}

		seq := make([][]float64, len(w))
		for t, v := range w {
			seq[t] = []float64{v}
		}
		for _, l := range n.layers {
			seq = l.forward(seq)
		}
		out = append(out, seq[len(seq)-1][0])
	}
	return out, nil
}

var _ service.Predictor = (*Network)(nil)
