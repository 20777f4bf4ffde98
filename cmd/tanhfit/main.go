// SPDX-License-Identifier: MIT

// Command tanhfit fits the double-tanh profile to one or more (x, y) series.
//
//	tanhfit [flags] file.csv...
//
// Each file is fitted independently and concurrently; a summary line per file
// goes to stdout. -demo N adds N synthetic noisy series. See -h for flags; every flag also reads TANHFIT_<NAME>.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/tanhfit/batch"
	"github.com/katalvlaran/tanhfit/dataset"
	"github.com/katalvlaran/tanhfit/metrics"
	"github.com/katalvlaran/tanhfit/profile"
)

// Exit codes.
const (
	ExitSuccess   = 0
	ExitFitFailed = 1
	ExitConfig    = 2
	ExitInput     = 3
)

// Synthetic series for -demo.
var demoProfile = profile.Coeffs{-1, 1, 0.5, 0, 1}

const (
	demoPoints = 201
	demoNoise  = 0.02
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process: it returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := ParseConfig("tanhfit", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitConfig
	}
	logOut := logWriter(stderr, cfg.LogFormat)
	logger := zerolog.New(logOut).With().Timestamp().Logger()

	series := make([]dataset.Series, 0, len(cfg.Inputs))
	opts := dataset.Options{XColumn: cfg.XColumn, YColumn: cfg.YColumn, Comma: []rune(cfg.Comma)[0]}
	for _, path := range cfg.Inputs {
		s, err := dataset.Load(path, opts)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("load failed")
			return ExitInput
		}
		series = append(series, s)
	}
	for i := 1; i <= cfg.Demo; i++ {
		s, err := dataset.Synthesize(demoProfile, -5, 5, demoPoints, int64(i),
			dataset.WithNoise(demoNoise), dataset.WithName(fmt.Sprintf("demo-%d", i)))
		if err != nil {
			logger.Error().Err(err).Msg("synthesize")
			return ExitInput
		}
		series = append(series, s)
	}

	jobs, err := buildJobs(series, cfg.Start)
	if err != nil {
		logger.Error().Err(err).Msg("no starting guess")
		return ExitInput
	}

	reg := prometheus.NewRegistry()
	col := metrics.New(reg)

	fo := col.Instrument(cfg.FitOptions())
	if fo.Trace {
		fo.Sink = logOut
	}
	outcomes, err := batch.Run(ctx, jobs, batch.Options{Fit: fo, Limit: cfg.Workers, Observer: col})
	if err != nil {
		logger.Warn().Err(err).Msg("interrupted")
	}

	if err := report(stdout, outcomes); err != nil {
		logger.Error().Err(err).Msg("write report")
		return ExitInput
	}
	if cfg.Curve {
		for i, o := range outcomes {
			c, _ := profile.FromSlice(o.Coeffs)
			fit := profile.Curve(series[i].X, c, nil)
			fmt.Fprintf(stdout, "# %s\n", o.Name)
			if err := dataset.WriteCurve(stdout, series[i], fit); err != nil {
				logger.Error().Err(err).Msg("write curve")
				return ExitInput
			}
		}
	}

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, col, logger)
	}

	if n := batch.Failed(outcomes); n > 0 {
		logger.Warn().Int("failed", n).Int("total", len(outcomes)).Msg("some fits failed")
		return ExitFitFailed
	}

	return ExitSuccess
}

// buildJobs pairs every series with start, or with an estimate from the data.
func buildJobs(series []dataset.Series, start []float64) ([]batch.Job, error) {
	jobs := make([]batch.Job, len(series))
	for i, s := range series {
		c := start
		if c == nil {
			g, ok := profile.Guess(s.X, s.Y)
			if !ok {
				return nil, fmt.Errorf("%s: cannot estimate coefficients, pass -start", s.Name)
			}
			c = g[:]
		}
		jobs[i] = batch.Job{Name: s.Name, X: s.X, Y: s.Y, Start: c}
	}

	return jobs, nil
}

// report writes one aligned line per outcome: status, iterations, chi-square,
// then each coefficient with its standard error.
func report(w io.Writer, outcomes []batch.Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "series\tstatus\titer\tchisq\tc1\tc2\tc3\tc4\tc5")
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\n", o.Name, o.Err)
			continue
		}
		status := o.Result.Reason.String()
		if o.Result.Failed {
			status = "FAILED " + status
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4g", o.Name, status, o.Result.Iterations, o.Result.ChiSq)
		for k, v := range o.Result.Coeffs {
			fmt.Fprintf(tw, "\t%.6g±%.2g", v, o.Result.Sigma[k])
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

// serveMetrics blocks serving /metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, col *metrics.Collector, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", col)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics until interrupted")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server")
	}
}
