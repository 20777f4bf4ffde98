package profile_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tanhfit/profile"
)

var rising = profile.Coeffs{-1, 1, 0.5, 0, 1}

func TestFunc_Plateaus(t *testing.T) {
	// far outside the centers the curve sits on c4, between them on c5
	assert.InDelta(t, 0.0, profile.Func(-50, rising), 1e-12)
	assert.InDelta(t, 0.0, profile.Func(50, rising), 1e-12)
	wide := profile.Coeffs{-3, 3, 0.5, 0, 1}
	assert.InDelta(t, 1.0, profile.Func(0, wide), 1e-4)

	// symmetric around the midpoint of the centers
	for _, x := range []float64{0.25, 0.9, 1.7, 4} {
		assert.InDelta(t, profile.Func(x, rising), profile.Func(-x, rising), 1e-15, "x=%v", x)
	}

	// at a center the first step is half way
	t2 := math.Tanh((-1.0 - 1.0) / 0.5)
	assert.InDelta(t, 0.5*(0-t2), profile.Func(-1, rising), 1e-15)
}

func TestEval_MatchesFuncAndDerivs(t *testing.T) {
	c := profile.Coeffs{-0.7, 1.3, 0.8, 0.2, 2.5}
	for _, x := range []float64{-5, -1, 0, 0.4, 2, 7} {
		f, d := profile.Eval(x, c)
		assert.Equal(t, profile.Func(x, c), f, "x=%v", x)
		assert.Equal(t, profile.Derivs(x, c), d, "x=%v", x)
	}
}

func TestDerivs_PlateauWeightsSumToOne(t *testing.T) {
	// f is affine in (c4, c5) with weights (1-s, s)
	for _, x := range []float64{-3, -0.2, 0, 1.1, 6} {
		d := profile.Derivs(x, rising)
		assert.InDelta(t, 1.0, d[profile.Low]+d[profile.High], 1e-15, "x=%v", x)
	}
}

// numericPartial is the central finite difference of Func in coefficient k.
func numericPartial(x float64, c profile.Coeffs, k int) float64 {
	h := 1e-6 * math.Max(1, math.Abs(c[k]))
	cp, cm := c, c
	cp[k] += h
	cm[k] -= h

	return (profile.Func(x, cp) - profile.Func(x, cm)) / (2 * h)
}

func TestDerivs_MatchFiniteDifferences(t *testing.T) {
	c := profile.Coeffs{-1.2, 0.9, 0.6, -0.3, 1.4}
	for _, x := range []float64{-4, -1.5, -1.2, 0, 0.5, 0.9, 3} {
		d := profile.Derivs(x, c)
		for k := 0; k < profile.NTerms; k++ {
			assert.InDelta(t, numericPartial(x, c, k), d[k], 1e-6, "x=%v k=%d", x, k)
		}
	}
}

func TestDerivs_FiniteDifferences_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("analytic partials agree with central differences", prop.ForAll(
		func(x, c1, gap, w, lo, hi float64) bool {
			c := profile.Coeffs{c1, c1 + gap, w, lo, hi}
			d := profile.Derivs(x, c)
			for k := 0; k < profile.NTerms; k++ {
				num := numericPartial(x, c, k)
				if math.Abs(num-d[k]) > 1e-5*math.Max(1, math.Abs(d[k])) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-5, 5),
		gen.Float64Range(-2, 2),
		gen.Float64Range(0.1, 3),
		gen.Float64Range(0.3, 2),
		gen.Float64Range(-2, 2),
		gen.Float64Range(-2, 2),
	))

	properties.TestingRun(t)
}

func TestCurve(t *testing.T) {
	xs := []float64{-2, 0, 2}
	got := profile.Curve(xs, rising, nil)
	require.Len(t, got, 3)
	for i, x := range xs {
		assert.Equal(t, profile.Func(x, rising), got[i])
	}

	// reuses a large enough destination
	buf := make([]float64, 0, 8)
	got = profile.Curve(xs, rising, buf)
	require.Len(t, got, 3)
	assert.Equal(t, 8, cap(got))
}

func TestFromSlice(t *testing.T) {
	c, ok := profile.FromSlice([]float64{1, 2, 3, 4, 5})
	require.True(t, ok)
	assert.Equal(t, profile.Coeffs{1, 2, 3, 4, 5}, c)

	_, ok = profile.FromSlice([]float64{1, 2, 3})
	assert.False(t, ok)
}
