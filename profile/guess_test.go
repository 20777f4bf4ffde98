package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tanhfit/profile"
)

func TestGuess(t *testing.T) {
	xs := make([]float64, 41)
	for i := range xs {
		xs[i] = -5 + 0.25*float64(i)
	}

	tests := []struct {
		name  string
		truth profile.Coeffs
		tol   float64 // on centers and levels
	}{
		{"symmetric bump", profile.Coeffs{-1, 1, 0.5, 0, 1}, 0.05},
		{"offset bump", profile.Coeffs{-2, 0.5, 0.3, 1, 3}, 0.05},
		{"dip", profile.Coeffs{0, 3, 0.8, 2, -1}, 0.15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := profile.Guess(xs, profile.Curve(xs, tc.truth, nil))
			require.True(t, ok)
			for _, k := range []int{profile.Center1, profile.Center2, profile.Low, profile.High} {
				assert.InDelta(t, tc.truth[k], c[k], tc.tol, "c[%d]", k)
			}
			assert.Greater(t, c[profile.Width], 0.0)
		})
	}
}

func TestGuess_Rejects(t *testing.T) {
	_, ok := profile.Guess([]float64{0, 1}, []float64{0, 1})
	assert.False(t, ok, "too short")

	_, ok = profile.Guess([]float64{0, 1, 2}, []float64{0, 1})
	assert.False(t, ok, "length mismatch")

	_, ok = profile.Guess([]float64{0, 1, 2, 3}, []float64{1, 1, 1, 1})
	assert.False(t, ok, "flat")

	_, ok = profile.Guess([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 3})
	assert.False(t, ok, "monotone: extreme on an end")
}
