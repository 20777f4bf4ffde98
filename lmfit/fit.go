// SPDX-License-Identifier: MIT

package lmfit

import (
	"fmt"
	"math"

	"github.com/katalvlaran/tanhfit/matrix"
	"github.com/katalvlaran/tanhfit/profile"
)

const nTerms = profile.NTerms

// Fit adjusts c so that profile.Func(x, c) matches y in the least-squares
// sense, using Levenberg-Marquardt with diagonal-normalized damping.
//
// c must hold exactly profile.NTerms coefficients and is updated in place
// after every accepted step, so on any non-error return it holds the best
// coefficients found. A nil opts means DefaultOptions().
//
// Non-convergence is reported through Result.Failed, not through the error;
// the error is non-nil only for unusable input, in which case nothing ran.
//
// Complexity: O(len(x)·NTerms²) per attempted step.
func Fit(x, y, c []float64, opts *Options) (*Result, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, fitErrorf(ErrLengthMismatch, "len(x)=%d len(y)=%d", len(x), len(y))
	}
	if len(x)-nTerms <= 0 {
		return nil, fitErrorf(ErrDegreesOfFreedom, "n=%d, need more than %d", len(x), nTerms)
	}
	coeffs, ok := profile.FromSlice(c)
	if !ok {
		return nil, fitErrorf(ErrCoeffCount, "len(c)=%d, want %d", len(c), nTerms)
	}

	f, err := newFitter(x, y, o)
	if err != nil {
		return nil, err
	}

	return f.run(coeffs, c)
}

// fitter holds the per-call working state. Nothing in it outlives Fit.
type fitter struct {
	x, y  []float64
	dof   float64
	floor float64
	opts  Options
	trace tracer

	alpha [nTerms][nTerms]float64
	beta  [nTerms]float64
	norm  [nTerms][nTerms]float64 // sqrt(alpha[j][j]*alpha[k][k])
	scale [nTerms]float64         // sqrt(alpha[k][k])
	array *matrix.Dense
}

func newFitter(x, y []float64, o Options) (*fitter, error) {
	// the damped matrix may legitimately carry NaN when a derivative column vanishes
	array, err := matrix.NewDenseWithOptions(nTerms, nTerms, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, fmt.Errorf("lmfit: %w", err)
	}

	var ymax float64
	for _, v := range y {
		if a := math.Abs(v); a > ymax && !math.IsInf(a, 1) {
			ymax = a
		}
	}
	rms := exactFitULPs * epsilon * ymax

	return &fitter{
		x:     x,
		y:     y,
		dof:   float64(len(x) - nTerms),
		floor: rms * rms,
		opts:  o,
		trace: newTracer(o),
		array: array,
	}, nil
}

// epsilon is the float64 machine epsilon, 2^-52.
const epsilon = 1.0 / (1 << 52)

// run executes the iteration from coeffs, mirroring every accepted
// coefficient vector into out.
func (f *fitter) run(coeffs profile.Coeffs, out []float64) (*Result, error) {
	lambda := f.opts.InitialLambda
	chisq := f.chiSquare(coeffs)
	res := &Result{
		Coeffs:  coeffs,
		ChiSq:   chisq,
		Lambda:  lambda,
		History: []float64{chisq},
	}

	if chisq <= f.floor {
		res.Reason = StopExactFit
		f.trace.done(res)

		return res, nil
	}

	for {
		if f.opts.MaxIterations > 0 && res.Evaluations >= f.opts.MaxIterations {
			res.Failed = true
			res.Reason = StopIterationLimit
			break
		}
		res.Evaluations++

		f.accumulate(coeffs)
		if err := f.damp(lambda); err != nil {
			return nil, err
		}
		trial, err := f.step(coeffs)
		if err != nil {
			return nil, err
		}
		chisqNew := f.chiSquare(trial)
		change := (chisq - chisqNew) / chisq

		it := Iteration{
			Attempt: res.Evaluations,
			ChiSq:   chisq,
			Trial:   chisqNew,
			Change:  change,
			Lambda:  lambda,
		}

		if change > 0 {
			sigma, err := f.sigmas()
			if err != nil {
				return nil, err
			}
			coeffs = trial
			copy(out, coeffs[:])
			chisq = chisqNew
			res.Iterations++
			res.Coeffs = coeffs
			res.ChiSq = chisq
			res.Sigma = sigma
			res.History = append(res.History, chisq)

			it.Accepted = true
			it.ChiSq = chisq
			f.emit(it, res)

			if chisq <= f.floor {
				res.Reason = StopExactFit
				res.Lambda = lambda
				break
			}
			if change < f.opts.Tol {
				res.Reason = StopConverged
				res.Lambda = lambda
				break
			}
			lambda /= f.opts.LambdaFactor
			res.Lambda = lambda
			continue
		}

		f.emit(it, res)
		if lambda > f.opts.FailLambda {
			res.Failed = true
			res.Reason = StopDampingExhausted
			res.Lambda = lambda
			break
		}
		lambda *= f.opts.LambdaFactor
		res.Lambda = lambda
	}

	f.trace.done(res)

	return res, nil
}

// emit fills the coefficient fields of it from res and hands it to the
// trace and the hook.
func (f *fitter) emit(it Iteration, res *Result) {
	it.Step = res.Iterations
	it.Coeffs = res.Coeffs
	it.Sigma = res.Sigma
	f.trace.iteration(it)
	if f.opts.OnIteration != nil {
		f.opts.OnIteration(it)
	}
}

// chiSquare returns sum((y-f(x,c))²)/(n-NTerms).
func (f *fitter) chiSquare(c profile.Coeffs) float64 {
	var sum float64
	for i, xi := range f.x {
		r := f.y[i] - profile.Func(xi, c)
		sum += r * r
	}

	return sum / f.dof
}

// accumulate builds the curvature matrix alpha (lower triangle, then
// mirrored) and the gradient beta at c.
func (f *fitter) accumulate(c profile.Coeffs) {
	f.alpha = [nTerms][nTerms]float64{}
	f.beta = [nTerms]float64{}

	for i, xi := range f.x {
		yfit, d := profile.Eval(xi, c)
		r := f.y[i] - yfit
		for j := 0; j < nTerms; j++ {
			f.beta[j] += d[j] * r
			for k := 0; k <= j; k++ {
				f.alpha[j][k] += d[j] * d[k]
			}
		}
	}
	for j := 1; j < nTerms; j++ {
		for k := 0; k < j; k++ {
			f.alpha[k][j] = f.alpha[j][k]
		}
	}
	for j := 0; j < nTerms; j++ {
		f.scale[j] = math.Sqrt(f.alpha[j][j])
		for k := 0; k < nTerms; k++ {
			f.norm[j][k] = math.Sqrt(f.alpha[j][j] * f.alpha[k][k])
		}
	}
}

// damp loads the normalized damped matrix into array and inverts it.
func (f *fitter) damp(lambda float64) error {
	var v float64
	for j := 0; j < nTerms; j++ {
		for k := 0; k < nTerms; k++ {
			if j == k {
				v = 1 + lambda
			} else {
				v = f.alpha[j][k] / f.norm[j][k]
			}
			if err := f.array.Set(j, k, v); err != nil {
				return fmt.Errorf("lmfit: %w", err)
			}
		}
	}
	if err := matrix.InverseInPlace(f.array); err != nil {
		return fmt.Errorf("lmfit: damped curvature: %w", err)
	}

	return nil
}

// step returns c + Σ_k beta[k]·inv[j,k]/norm[j,k] for each j, computed as
// S⁻¹·inv·S⁻¹·beta with S = diag(scale).
func (f *fitter) step(c profile.Coeffs) (profile.Coeffs, error) {
	scaled := make([]float64, nTerms)
	for k := range scaled {
		scaled[k] = f.beta[k] / f.scale[k]
	}
	delta, err := matrix.MatVec(f.array, scaled)
	if err != nil {
		return c, fmt.Errorf("lmfit: step: %w", err)
	}

	trial := c
	for j := range trial {
		trial[j] += delta[j] / f.scale[j]
	}

	return trial, nil
}

// sigmas returns sqrt(inv[t,t]/alpha[t,t]) from the current inverse.
func (f *fitter) sigmas() (profile.Coeffs, error) {
	var s profile.Coeffs
	for t := 0; t < nTerms; t++ {
		v, err := f.array.At(t, t)
		if err != nil {
			return s, fmt.Errorf("lmfit: sigma: %w", err)
		}
		s[t] = math.Sqrt(v / f.alpha[t][t])
	}

	return s, nil
}
