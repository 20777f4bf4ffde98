// Package matrix offers a small dense linear-algebra core for the fitting kernel.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and an
//     optional finite-only numeric policy.
//   - Inverse / InverseInPlace: Gauss-Jordan elimination with partial (row)
//     pivoting and an explicit pivot-index array that un-permutes the result
//     back into the original column order.
//   - MatVec, which applies an inverse to a vector.
//
// Errors are package sentinels (ErrNonSquare, ErrSingular, ...) wrapped with
// an operation tag; match them with errors.Is.
//
// Inversion is O(n³) and intended for the small normalized curvature
// matrices of the Levenberg-Marquardt driver in package lmfit.
package matrix
