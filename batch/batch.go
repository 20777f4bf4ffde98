// SPDX-License-Identifier: MIT

// Package batch fits many independent data series concurrently.
//
// Every job gets its own copy of the starting coefficients and its own
// working state inside lmfit.Fit, so jobs never share mutable buffers.
package batch

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/tanhfit/lmfit"
)

// Job is one series to fit.
type Job struct {
	// Name identifies the job in outcomes and trace lines.
	Name string
	// X and Y are the data series; they are only read.
	X, Y []float64
	// Start is the initial guess; it is copied, never modified.
	Start []float64
}

// Outcome is the result of one Job.
type Outcome struct {
	Name string
	// Coeffs holds the fitted coefficients (the starting copy when Err != nil).
	Coeffs []float64
	// Result is nil when Err != nil.
	Result   *lmfit.Result
	Duration time.Duration
	Err      error
}

// Observer receives every finished fit. metrics.Collector implements it.
type Observer interface {
	Observe(res *lmfit.Result, elapsed time.Duration)
}

// Options configures Run.
type Options struct {
	// Fit is applied to every job. OnIteration, when set, is called from
	// several goroutines and must be safe for concurrent use.
	Fit lmfit.Options
	// Limit caps concurrent fits; 0 means runtime.GOMAXPROCS(0).
	Limit int
	// Observer, when non-nil, is called once per completed fit.
	Observer Observer
}

// Run fits every job and returns one Outcome per job, in job order.
//
// Per-job problems (bad input, a failed fit) are reported in the Outcome and
// do not stop other jobs. Jobs not yet started when ctx is cancelled get
// ctx.Err() as their error, and Run returns ctx.Err().
func Run(ctx context.Context, jobs []Job, opts Options) ([]Outcome, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var sink io.Writer
	if opts.Fit.Trace && opts.Fit.Logger == nil && opts.Fit.Sink != nil {
		sink = zerolog.SyncWriter(opts.Fit.Sink)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	outcomes := make([]Outcome, len(jobs))

	for i := range jobs {
		idx := i
		g.Go(func() error {
			job := jobs[idx]
			out := Outcome{Name: job.Name, Coeffs: append([]float64(nil), job.Start...)}
			if err := gctx.Err(); err != nil {
				out.Err = err
				outcomes[idx] = out
				return err
			}

			fo := opts.Fit
			if sink != nil {
				l := zerolog.New(sink).With().Str("component", "lmfit").Str("job", job.Name).Logger()
				fo.Logger = &l
			} else if fo.Logger != nil && fo.Trace {
				l := fo.Logger.With().Str("job", job.Name).Logger()
				fo.Logger = &l
			}

			start := time.Now()
			out.Result, out.Err = lmfit.Fit(job.X, job.Y, out.Coeffs, &fo)
			out.Duration = time.Since(start)
			if out.Err == nil && opts.Observer != nil {
				opts.Observer.Observe(out.Result, out.Duration)
			}
			outcomes[idx] = out

			// fit errors belong to the job, not the group
			return nil
		})
	}

	// only cancellation reaches the group; jobs started before it still
	// finish, so fall back to ctx for a cancel that came after the last start
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	return outcomes, ctx.Err()
}

// Failed counts outcomes with an error or a failed fit.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil || o.Result.Failed {
			n++
		}
	}

	return n
}
