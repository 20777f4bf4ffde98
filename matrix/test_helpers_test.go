// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   - Provide small, deterministic fixtures and utilities for the kernels.
//   - Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/katalvlaran/tanhfit/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing kernels onto their generic At/Set fallback path.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t testing.TB, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseWithOptions(r, c)
	if err != nil {
		t.Fatalf("NewDenseWithOptions(%d,%d): %v", r, c, err)
	}

	return m
}

// IdentityDense returns an n×n identity or fails the test.
func IdentityDense(t testing.TB, n int) *matrix.Dense {
	t.Helper()
	m := identity(n)
	if m == nil {
		t.Fatalf("identity(%d): invalid size", n)
	}

	return m
}

// identity returns I_n, or nil for n ≤ 0.
func identity(n int) *matrix.Dense {
	vals := make([]float64, n*n)
	for i := 0; i < n; i++ {
		vals[i*n+i] = 1
	}
	m, err := matrix.NewDenseFrom(n, n, vals)
	if err != nil {
		return nil
	}

	return m
}

// NewFilledDense builds r×c *Dense from a row-major flat slice.
func NewFilledDense(t testing.TB, r, c int, vals []float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDenseFrom(r, c, vals)
	if err != nil {
		t.Fatalf("NewDenseFrom(%d,%d): %v", r, c, err)
	}

	return d
}

// RandFilledDense returns a new r×c Dense filled with deterministic U(-1,1).
func RandFilledDense(t testing.TB, r, c int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	vals := make([]float64, r*c)
	for i := range vals {
		vals[i] = rng.Float64()*2 - 1 // 0*2-1=-1 || 1*2-1=1
	}

	return NewFilledDense(t, r, c, vals)
}

// WellConditioned returns R + n·P, where R is U(-1,1) noise and P the cyclic
// shift permutation by shift. For shift != 0 the dominant entries sit off the
// diagonal, so elimination must swap rows.
func WellConditioned(t testing.TB, n, shift int, seed int64) *matrix.Dense {
	t.Helper()
	m := RandFilledDense(t, n, n, seed)
	for i := 0; i < n; i++ {
		j := (i + shift) % n
		MustSet(t, m, i, j, MustAt(t, m, i, j)+float64(n))
	}

	return m
}

// MustSet writes v to m[i,j] or fails the test.
func MustSet(t testing.TB, m matrix.Matrix, i, j int, v float64) {
	t.Helper()
	if err := m.Set(i, j, v); err != nil {
		t.Fatalf("Set(%d,%d,%v): %v", i, j, v, err)
	}
}

// MustAt reads m[i,j] or fails the test.
func MustAt(t testing.TB, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// product returns a×b by the textbook i-j-k triple loop over At.
func product(a, b matrix.Matrix) (*matrix.Dense, error) {
	if a.Cols() != b.Rows() {
		return nil, matrix.ErrDimensionMismatch
	}
	p, err := matrix.NewDenseWithOptions(a.Rows(), b.Cols(), matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, err
	}
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < b.Cols(); j++ {
			var sum float64
			for k := 0; k < a.Cols(); k++ {
				av, err := a.At(i, k)
				if err != nil {
					return nil, err
				}
				bv, err := b.At(k, j)
				if err != nil {
					return nil, err
				}
				sum += av * bv
			}
			if err = p.Set(i, j, sum); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// MustMul multiplies or fails the test.
func MustMul(t testing.TB, a, b matrix.Matrix) matrix.Matrix {
	t.Helper()
	p, err := product(a, b)
	if err != nil {
		t.Fatalf("product: %v", err)
	}

	return p
}

// allClose reports whether a and b share a shape and |a-b| ≤ atol + rtol*|b|
// holds element-wise. A NaN element never compares close.
func allClose(a, b matrix.Matrix, rtol, atol float64) bool {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, errA := a.At(i, j)
			bv, errB := b.At(i, j)
			if errA != nil || errB != nil || !(math.Abs(av-bv) <= atol+rtol*math.Abs(bv)) {
				return false
			}
		}
	}

	return true
}

// CompareClose asserts allClose(a,b) under (rtol, atol).
func CompareClose(t testing.TB, a, b matrix.Matrix, rtol, atol float64) {
	t.Helper()
	if !allClose(a, b, rtol, atol) {
		t.Fatalf("not close (rtol=%g, atol=%g)\n got:\n%s\nwant:\n%s", rtol, atol, format(a), format(b))
	}
}

// format renders rows as lines with comma-separated %g values.
func format(m matrix.Matrix) string {
	var b strings.Builder
	for i := 0; i < m.Rows(); i++ {
		b.WriteString("[")
		for j := 0; j < m.Cols(); j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			v, _ := m.At(i, j)
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteString("]\n")
	}

	return b.String()
}

// flatten copies m into a row-major slice.
func flatten(t testing.TB, m matrix.Matrix) []float64 {
	t.Helper()
	out := make([]float64, 0, m.Rows()*m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			out = append(out, MustAt(t, m, i, j))
		}
	}

	return out
}

// AssertErrorIs asserts errors.Is(err, target).
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("want %v; got %v", target, err)
	}
}

// InDelta reports whether |a-b| ≤ delta.
func InDelta(a, b, delta float64) bool {
	return math.Abs(a-b) <= delta
}

// naiveGaussJordan inverts a row-major n×n slice on the augmented [A | I]
// without any row exchange. Reference for matrices that never need a swap.
func naiveGaussJordan(a []float64, n int) []float64 {
	w := 2 * n
	aug := make([]float64, n*w)
	for i := 0; i < n; i++ {
		copy(aug[i*w:i*w+n], a[i*n:(i+1)*n])
		aug[i*w+n+i] = 1
	}
	for k := 0; k < n; k++ {
		p := aug[k*w+k]
		for j := 0; j < w; j++ {
			aug[k*w+j] /= p
		}
		for i := 0; i < n; i++ {
			if i == k {
				continue
			}
			f := aug[i*w+k]
			for j := 0; j < w; j++ {
				aug[i*w+j] -= f * aug[k*w+j]
			}
		}
	}
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(out[i*n:(i+1)*n], aug[i*w+n:(i+1)*w])
	}

	return out
}
