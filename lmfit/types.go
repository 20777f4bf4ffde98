// SPDX-License-Identifier: MIT

package lmfit

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/tanhfit/profile"
)

// Defaults for Options.
const (
	DefaultTol           = 1e-6  // fractional chi-square change that ends the fit
	DefaultInitialLambda = 0.001 // starting damping factor
	DefaultLambdaFactor  = 10.0  // damping multiplier / divisor per step
	DefaultFailLambda    = 0.9   // a rejected step above this damping gives up
)

// exactFitULPs bounds the residual RMS, in units of machine epsilon times the
// largest |y|, below which the data is considered reproduced exactly.
const exactFitULPs = 100

// Options configures Fit.
//
// Fields:
//   - Tol           — convergence threshold on the fractional chi-square change
//     of an accepted step.
//   - InitialLambda — damping factor of the first step.
//   - LambdaFactor  — lambda is divided by it after an accepted step and
//     multiplied by it after a rejected one. Must be > 1.
//   - FailLambda    — a rejected step taken with lambda above this value ends
//     the fit as failed.
//   - MaxIterations — upper bound on attempted steps; 0 means unbounded.
//   - Trace         — emit one structured line per attempted step.
//   - Sink          — trace destination; os.Stderr when nil.
//   - Logger        — trace logger; takes precedence over Sink.
//   - OnIteration   — called after every attempted step; has no effect on the fit.
//
// Example:
//
//	opts := lmfit.DefaultOptions()
//	opts.Trace = true
//	opts.Sink = os.Stdout
//	res, err := lmfit.Fit(x, y, c, &opts)
type Options struct {
	Tol           float64
	InitialLambda float64
	LambdaFactor  float64
	FailLambda    float64
	MaxIterations int

	Trace  bool
	Sink   io.Writer
	Logger *zerolog.Logger

	OnIteration func(Iteration)
}

// DefaultOptions returns the documented defaults with tracing off.
func DefaultOptions() Options {
	return Options{
		Tol:           DefaultTol,
		InitialLambda: DefaultInitialLambda,
		LambdaFactor:  DefaultLambdaFactor,
		FailLambda:    DefaultFailLambda,
	}
}

// validate rejects settings the algorithm cannot run with.
func (o Options) validate() error {
	if !(o.Tol > 0) {
		return fitErrorf(ErrBadOptions, "Tol=%v must be > 0", o.Tol)
	}
	if !(o.InitialLambda > 0) {
		return fitErrorf(ErrBadOptions, "InitialLambda=%v must be > 0", o.InitialLambda)
	}
	if !(o.LambdaFactor > 1) {
		return fitErrorf(ErrBadOptions, "LambdaFactor=%v must be > 1", o.LambdaFactor)
	}
	if !(o.FailLambda > 0) {
		return fitErrorf(ErrBadOptions, "FailLambda=%v must be > 0", o.FailLambda)
	}
	if o.MaxIterations < 0 {
		return fitErrorf(ErrBadOptions, "MaxIterations=%d must be >= 0", o.MaxIterations)
	}

	return nil
}

// StopReason says why the iteration ended.
type StopReason int

const (
	// StopConverged: an accepted step improved chi-square by less than Tol.
	StopConverged StopReason = iota
	// StopExactFit: chi-square reached the rounding floor of the data.
	StopExactFit
	// StopDampingExhausted: a step was rejected with lambda above FailLambda.
	StopDampingExhausted
	// StopIterationLimit: MaxIterations attempted steps without converging.
	StopIterationLimit
)

// String implements fmt.Stringer.
func (r StopReason) String() string {
	switch r {
	case StopConverged:
		return "converged"
	case StopExactFit:
		return "exact-fit"
	case StopDampingExhausted:
		return "damping-exhausted"
	case StopIterationLimit:
		return "iteration-limit"
	default:
		return "unknown"
	}
}

// Iteration describes one attempted step.
type Iteration struct {
	Step     int            // 1-based count of accepted steps so far
	Attempt  int            // 1-based count of attempted steps
	Coeffs   profile.Coeffs // coefficients after the step (unchanged when rejected)
	Sigma    profile.Coeffs // standard errors of the last accepted step
	ChiSq    float64        // reduced chi-square after the step
	Trial    float64        // reduced chi-square of the candidate
	Change   float64        // fractional change (old-trial)/old
	Lambda   float64        // damping factor the step was taken with
	Accepted bool
}

// Result reports the outcome of Fit. The caller's coefficient slice holds
// Coeffs on return.
type Result struct {
	Failed      bool
	Reason      StopReason
	Coeffs      profile.Coeffs
	Sigma       profile.Coeffs // zero until the first accepted step
	ChiSq       float64        // reduced chi-square of Coeffs
	Lambda      float64        // damping factor when the fit stopped
	Iterations  int            // accepted steps
	Evaluations int            // attempted steps (curvature builds)
	History     []float64      // reduced chi-square, initial value then each accepted step
}
