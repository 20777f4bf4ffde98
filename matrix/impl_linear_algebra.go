// SPDX-License-Identifier: MIT
// Package matrix provides the operations the fitting kernel needs on any
// Matrix implementation: matrix-vector product and inversion by
// Gauss-Jordan elimination with partial pivoting. All functions perform strict
// fail-fast validation and return clear errors on shape violations.
//
// Notes:
//   - Every kernel has a *Dense fast-path over the flat buffer and a generic
//     At/Set fallback with the same loop order.
//   - Errors are wrapped via matrixErrorf(op, err) so callers match with errors.Is.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial value for dot-product accumulators.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting an all-zero active column.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping.
const (
	opMatVec         = "MatVec"
	opInverse        = "Inverse"
	opInverseInPlace = "InverseInPlace"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// MatVec computes y = m·x.
//
// Errors:
//   - ErrNilMatrix (nil m or x), ErrDimensionMismatch (len(x) != m.Cols()).
//
// Complexity:
//   - Time O(r*c), Space O(r).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows)

	var i, j int
	if d, ok := m.(*Dense); ok {
		var base int
		var acc float64
		for i = 0; i < rows; i++ {
			acc = ZeroSum
			base = i * cols
			for j = 0; j < cols; j++ {
				acc += d.data[base+j] * x[j]
			}
			y[i] = acc
		}

		return y, nil
	}

	var mv float64
	var err error
	for i = 0; i < rows; i++ {
		y[i] = ZeroSum
		for j = 0; j < cols; j++ {
			if mv, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opMatVec, err)
			}
			y[i] += mv * x[j]
		}
	}

	return y, nil
}

// Inverse computes m⁻¹ by Gauss-Jordan elimination with partial pivoting.
// The input is read-only; a fresh Dense is returned.
//
// Implementation:
//   - Stage 1: ValidateSquare(m). Copy m into a working Dense (Clone for *Dense,
//     At loop into NewDenseFrom otherwise).
//   - Stage 2: run the in-place elimination kernel on the working copy.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare (configuration errors).
//   - ErrSingular when an entire active column is zero.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Inverse(m Matrix) (Matrix, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	n := m.Rows()
	var work *Dense
	if d, ok := m.(*Dense); ok {
		work = d.Clone().(*Dense)
	} else {
		vals := make([]float64, n*n)
		var err error
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if vals[i*n+j], err = m.At(i, j); err != nil {
					return nil, matrixErrorf(opInverse, err)
				}
			}
		}
		if work, err = NewDenseFrom(n, n, vals, WithNoValidateNaNInf()); err != nil {
			return nil, matrixErrorf(opInverse, err)
		}
	}

	if _, err := gaussJordan(work.data, n); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return work, nil
}

// InverseInPlace overwrites d with d⁻¹ using Gauss-Jordan elimination with
// partial pivoting. On ErrSingular the contents of d are unspecified.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrSingular.
//
// Complexity:
//   - Time O(n^3), Space O(n) scratch (pivot indices and one saved column).
func InverseInPlace(d *Dense) error {
	if d == nil {
		return matrixErrorf(opInverseInPlace, ErrNilMatrix)
	}
	if err := ValidateSquare(d); err != nil {
		return matrixErrorf(opInverseInPlace, err)
	}
	if _, err := gaussJordan(d.data, d.r); err != nil {
		return matrixErrorf(opInverseInPlace, err)
	}

	return nil
}

// gaussJordan inverts the n×n row-major buffer a in place and returns the
// pivot permutation it applied (pivot[i] is the original row now at row i).
//
// Implementation:
//   - Stage 1: pivot[i] = i.
//   - Stage 2: for each k, select the row m ≥ k with strictly maximal |a[m,k]|
//     (first one wins on ties, so no swap happens when row k already holds the
//     maximum); swap rows m,k and pivot[m],pivot[k].
//   - Stage 3: d = 1/a[k,k]; save column k, update every other cell with
//     a[i,j] -= a[i,k]*a[k,j]*d, scale row k by d, set column k to -saved*d and
//     the pivot cell to d.
//   - Stage 4: scatter columns back: result[:, pivot[i]] = working[:, i].
//
// Determinism:
//   - Fixed k→i→j order; tie-break is positional.
func gaussJordan(a []float64, n int) ([]int, error) {
	pivot := make([]int, n)
	for i := range pivot {
		pivot[i] = i
	}
	saved := make([]float64, n)

	var (
		i, j, k, m   int
		maxAbs, v, d float64
		rowK, rowI   int
	)
	for k = 0; k < n; k++ {
		// partial pivoting on column k
		m = k
		maxAbs = math.Abs(a[k*n+k])
		for i = k + 1; i < n; i++ {
			if v = math.Abs(a[i*n+k]); v > maxAbs {
				maxAbs = v
				m = i
			}
		}
		if maxAbs == ZeroPivot {
			return nil, ErrSingular
		}
		if m != k {
			swapRows(a, n, m, k)
			pivot[m], pivot[k] = pivot[k], pivot[m]
		}

		rowK = k * n
		d = 1 / a[rowK+k]
		for i = 0; i < n; i++ {
			saved[i] = a[i*n+k]
		}
		for i = 0; i < n; i++ {
			if i == k {
				continue
			}
			rowI = i * n
			for j = 0; j < n; j++ {
				if j == k {
					continue
				}
				a[rowI+j] -= saved[i] * a[rowK+j] * d
			}
		}
		for j = 0; j < n; j++ {
			if j != k {
				a[rowK+j] *= d
			}
		}
		for i = 0; i < n; i++ {
			if i != k {
				a[i*n+k] = -saved[i] * d
			}
		}
		a[rowK+k] = d
	}

	// un-permute: gather the working matrix, scatter columns by pivot
	work := make([]float64, len(a))
	copy(work, a)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			a[j*n+pivot[i]] = work[j*n+i]
		}
	}

	return pivot, nil
}

// swapRows exchanges rows r1 and r2 of the n-column row-major buffer a.
func swapRows(a []float64, n, r1, r2 int) {
	b1, b2 := r1*n, r2*n
	for j := 0; j < n; j++ {
		a[b1+j], a[b2+j] = a[b2+j], a[b1+j]
	}
}
