// SPDX-License-Identifier: MIT
//
// synth.go - deterministic synthetic profile series.
//
// Purpose:
//   • Reproducible (x, y) fixtures for tests, benchmarks and the CLI demo.
//   • Exact model samples plus optional Gaussian noise and linear trend.
//
// Contract:
//   • Synthesize(c, x0, x1, n, seed, opts...) is deterministic per
//     (c, x0, x1, n, seed, options); no global state.
//   • O(n) time and memory.

package dataset

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/tanhfit/profile"
)

// ErrSynthParams indicates an unusable synthesis request.
var ErrSynthParams = errors.New("dataset: invalid synthesis parameters")

// synthConfig is the resolved option set.
type synthConfig struct {
	sigma float64    // Gaussian noise sigma, ≥ 0; 0 disables noise
	trend float64    // added per unit x, measured from x0
	rng   *rand.Rand // shared stream; nil means a local one from seed
	name  string
}

// SynthOption customizes Synthesize.
type SynthOption func(*synthConfig)

// WithNoise adds sigma·N(0,1) to every sample.
func WithNoise(sigma float64) SynthOption {
	return func(c *synthConfig) { c.sigma = sigma }
}

// WithTrend adds slope·(x-x0) to every sample.
func WithTrend(slope float64) SynthOption {
	return func(c *synthConfig) { c.trend = slope }
}

// WithRand draws noise from r instead of a stream seeded per call, so that
// several calls can share one deterministic sequence. Panics on nil.
func WithRand(r *rand.Rand) SynthOption {
	if r == nil {
		panic("dataset: WithRand(nil)")
	}
	return func(c *synthConfig) { c.rng = r }
}

// WithName sets Series.Name.
func WithName(name string) SynthOption {
	return func(c *synthConfig) { c.name = name }
}

// Synthesize samples profile c at n evenly spaced points on [x0, x1].
func Synthesize(c profile.Coeffs, x0, x1 float64, n int, seed int64, opts ...SynthOption) (Series, error) {
	cfg := synthConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if n < 2 || !(x1 > x0) || cfg.sigma < 0 || c[profile.Width] == 0 {
		return Series{}, fmt.Errorf("%w: n=%d range=[%v,%v] sigma=%v width=%v",
			ErrSynthParams, n, x0, x1, cfg.sigma, c[profile.Width])
	}
	rng := cfg.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	s := Series{Name: cfg.name, X: make([]float64, n), Y: make([]float64, n)}
	step := (x1 - x0) / float64(n-1)
	for i := 0; i < n; i++ {
		x := x0 + step*float64(i)
		y := profile.Func(x, c) + cfg.trend*(x-x0)
		if cfg.sigma > 0 {
			y += cfg.sigma * rng.NormFloat64()
		}
		s.X[i], s.Y[i] = x, y
	}

	return s, nil
}
