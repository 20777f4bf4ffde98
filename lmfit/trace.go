// SPDX-License-Identifier: MIT

package lmfit

import (
	"os"

	"github.com/rs/zerolog"
)

// tracer writes the per-step diagnostics. The zero value is silent.
type tracer struct {
	log *zerolog.Logger
}

func newTracer(o Options) tracer {
	if !o.Trace {
		return tracer{}
	}
	if o.Logger != nil {
		return tracer{log: o.Logger}
	}
	sink := o.Sink
	if sink == nil {
		sink = os.Stderr
	}
	l := zerolog.New(sink).With().Str("component", "lmfit").Logger()

	return tracer{log: &l}
}

func (t tracer) iteration(it Iteration) {
	if t.log == nil {
		return
	}
	t.log.Info().
		Int("iter", it.Step).
		Int("attempt", it.Attempt).
		Floats64("c", it.Coeffs[:]).
		Floats64("sigma", it.Sigma[:]).
		Float64("chisq", it.ChiSq).
		Float64("trial", it.Trial).
		Float64("change", it.Change).
		Float64("lambda", it.Lambda).
		Bool("accepted", it.Accepted).
		Msg("lm step")
}

func (t tracer) done(res *Result) {
	if t.log == nil {
		return
	}
	ev := t.log.Info()
	if res.Failed {
		ev = t.log.Warn()
	}
	ev.Str("reason", res.Reason.String()).
		Bool("failed", res.Failed).
		Int("iterations", res.Iterations).
		Int("evaluations", res.Evaluations).
		Floats64("c", res.Coeffs[:]).
		Float64("chisq", res.ChiSq).
		Msg("lm done")
}
