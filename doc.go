// Package tanhfit fits a two-step tanh interface profile to measured
// (x, y) series with Levenberg-Marquardt least squares.
//
// 🚀 What is tanhfit?
//
//	A small numerical stack, leaves first:
//		• matrix/  — dense matrices and a Gauss-Jordan inverter with partial pivoting
//		• profile/ — the five-parameter double-tanh model, its exact partials, a starting-guess estimator
//		• lmfit/   — the Levenberg-Marquardt driver: damping, convergence, per-step trace
//
//	and the plumbing around it:
//		• batch/   — many independent fits at once
//		• dataset/ — delimited-text series in, fitted curves out
//		• metrics/ — Prometheus counters and histograms for fits and steps
//		• cmd/tanhfit — command-line driver
//
// The model:
//
//	f(x) = c4 + 0.5*(c5-c4)*(tanh((x-c1)/c3) - tanh((x-c2)/c3))
//
// Quick shape (c1 < c2, c5 > c4):
//
//	c5        ┌───────┐
//	         ╱         ╲
//	c4 ─────┘           └─────
//	        c1         c2
//
//	go get github.com/katalvlaran/tanhfit
package tanhfit
