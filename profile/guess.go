// SPDX-License-Identifier: MIT
package profile

import "math"

// Guess estimates starting coefficients from a series sampled in ascending x.
//
// The outer level is the mean of the two end points, the inner level the
// sample farthest from it. Each center is the half-level crossing between
// an end and that sample, and the width is a quarter of the center spacing.
// ok is false when the series is shorter than 3 points, the lengths differ,
// or the extreme sits on an end.
func Guess(x, y []float64) (c Coeffs, ok bool) {
	n := len(x)
	if n < 3 || len(y) != n {
		return c, false
	}

	lo := 0.5 * (y[0] + y[n-1])
	m, best := 0, 0.0
	for i, v := range y {
		if d := math.Abs(v - lo); d > best {
			best, m = d, i
		}
	}
	if best == 0 || m == 0 || m == n-1 {
		return c, false
	}
	hi := y[m]
	half := 0.5 * (lo + hi)

	c[Center1] = 0.5 * (x[0] + x[m])
	for i := 0; i < m; i++ {
		if (y[i]-half)*(y[i+1]-half) <= 0 {
			c[Center1] = interpolate(x[i], x[i+1], y[i], y[i+1], half)
			break
		}
	}
	c[Center2] = 0.5 * (x[m] + x[n-1])
	for i := n - 2; i >= m; i-- {
		if (y[i]-half)*(y[i+1]-half) <= 0 {
			c[Center2] = interpolate(x[i], x[i+1], y[i], y[i+1], half)
			break
		}
	}

	c[Width] = 0.25 * (c[Center2] - c[Center1])
	if !(c[Width] > 0) {
		c[Width] = 0.1 * (x[n-1] - x[0])
	}
	c[Low], c[High] = lo, hi

	return c, true
}

// interpolate returns the x at which the segment (x0,y0)-(x1,y1) reaches level.
func interpolate(x0, x1, y0, y1, level float64) float64 {
	if y1 == y0 {
		return x0
	}

	return x0 + (level-y0)*(x1-x0)/(y1-y0)
}
