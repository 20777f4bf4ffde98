// Package lmfit fits the double-tanh profile (see package profile) to a data
// series with the Levenberg-Marquardt method.
//
// Each attempted step builds the curvature matrix alpha and gradient beta
// from the analytic partials, normalizes alpha by its diagonal, adds the
// damping factor lambda to the unit diagonal, inverts the result with
// matrix.InverseInPlace and applies it to the scaled gradient with
// matrix.MatVec. A step that lowers the reduced chi-square is kept
// and lambda shrinks tenfold; otherwise lambda grows tenfold. The fit:
//
//   - converges when a kept step improves chi-square by a fraction below Tol;
//   - converges immediately when chi-square is already at the rounding floor
//     of the data (exact fit);
//   - fails when a step is rejected while lambda exceeds FailLambda;
//   - optionally fails after MaxIterations attempted steps.
//
// Only invalid input produces an error. A failed fit still returns a Result,
// and the caller's coefficients hold the best point reached.
//
// Fit keeps no package state; concurrent calls on disjoint buffers are safe.
//
//	c := []float64{-1.5, 1.5, 1.0, -0.1, 1.1}
//	res, err := lmfit.Fit(x, y, c, nil)
//	if err != nil { ... }
//	if res.Failed { ... }
package lmfit
