// SPDX-License-Identifier: MIT
package profile

import "math"

// NTerms is the number of model coefficients. Callers size coefficient
// buffers with it.
const NTerms = 5

// Coefficient indices into Coeffs.
const (
	Center1 = iota // c1: first transition center
	Center2        // c2: second transition center
	Width          // c3: shared transition width, must be non-zero
	Low            // c4: outer plateau level
	High           // c5: inner plateau level
)

// Coeffs is the fixed-size coefficient vector (c1..c5) of the double-tanh model.
type Coeffs [NTerms]float64

// FromSlice copies the first NTerms values of s. It reports false when
// len(s) != NTerms and leaves the result zero.
func FromSlice(s []float64) (Coeffs, bool) {
	var c Coeffs
	if len(s) != NTerms {
		return c, false
	}
	copy(c[:], s)

	return c, true
}

// steps returns the two tanh steps t1, t2 at x.
func steps(x float64, c Coeffs) (t1, t2 float64) {
	t1 = math.Tanh((x - c[Center1]) / c[Width])
	t2 = math.Tanh((x - c[Center2]) / c[Width])

	return t1, t2
}

// Func evaluates the model
//
//	f(x) = c4 + 0.5*(c5-c4)*(tanh((x-c1)/c3) - tanh((x-c2)/c3))
//
// c[Width] must be non-zero.
func Func(x float64, c Coeffs) float64 {
	t1, t2 := steps(x, c)

	return c[Low] + 0.5*(c[High]-c[Low])*(t1-t2)
}

// Derivs returns the analytic partial derivatives ∂f/∂c_k at x.
func Derivs(x float64, c Coeffs) Coeffs {
	_, d := Eval(x, c)

	return d
}

// Eval returns the model value and its partial derivatives at x, sharing a
// single pair of tanh evaluations.
func Eval(x float64, c Coeffs) (float64, Coeffs) {
	t1, t2 := steps(x, c)
	half := 0.5 * (c[High] - c[Low])
	w := c[Width]
	s1 := t1*t1 - 1 // -sech²((x-c1)/c3)
	s2 := 1 - t2*t2 // +sech²((x-c2)/c3)

	var d Coeffs
	d[Center1] = half * s1 / w
	d[Center2] = half * s2 / w
	d[Width] = half * ((x-c[Center1])*s1 + (x-c[Center2])*s2) / (w * w)
	d[Low] = 1 - 0.5*(t1-t2)
	d[High] = 0.5 * (t1 - t2)

	return c[Low] + half*(t1-t2), d
}

// Curve evaluates Func at every xs[i] into dst, growing dst when it is too
// short, and returns it.
func Curve(xs []float64, c Coeffs, dst []float64) []float64 {
	if cap(dst) < len(xs) {
		dst = make([]float64, len(xs))
	}
	dst = dst[:len(xs)]
	for i, x := range xs {
		dst[i] = Func(x, c)
	}

	return dst
}
