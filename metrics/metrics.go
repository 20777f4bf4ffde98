// SPDX-License-Identifier: MIT

// Package metrics exports fit outcomes in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/tanhfit/lmfit"
)

// Namespace prefixes every metric name.
const Namespace = "tanhfit"

// Collector records fits on a caller-owned registry.
// It tracks:
//   - Attempted steps, split by acceptance (counter)
//   - Finished fits, split by stop reason (counter)
//   - Accepted steps per fit (histogram)
//   - Final reduced chi-square (histogram)
//   - Wall time per fit (histogram)
//
// All methods are safe for concurrent use.
type Collector struct {
	steps     *prometheus.CounterVec
	fits      *prometheus.CounterVec
	accepted  prometheus.Histogram
	chisq     prometheus.Histogram
	durations prometheus.Histogram
	handler   http.Handler
}

// New registers the fit metrics on reg and serves them from reg's gatherer
// when reg is a *prometheus.Registry.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	c := &Collector{
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "steps_total",
			Help:      "Levenberg-Marquardt steps attempted",
		}, []string{"accepted"}),
		fits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fits_total",
			Help:      "Fits finished, by stop reason",
		}, []string{"reason", "failed"}),
		accepted: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fit_iterations",
			Help:      "Accepted steps per fit",
			Buckets:   prometheus.LinearBuckets(0, 2, 16),
		}),
		chisq: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fit_chisq",
			Help:      "Reduced chi-square at the end of a fit",
			Buckets:   prometheus.ExponentialBuckets(1e-12, 10, 14),
		}),
		durations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fit_duration_seconds",
			Help:      "Wall time per fit",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.handler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	} else {
		c.handler = promhttp.Handler()
	}

	return c
}

// Step counts one attempted step. It has the lmfit.Options.OnIteration
// signature.
func (c *Collector) Step(it lmfit.Iteration) {
	c.steps.WithLabelValues(strconv.FormatBool(it.Accepted)).Inc()
}

// Observe records a finished fit.
func (c *Collector) Observe(res *lmfit.Result, elapsed time.Duration) {
	if res == nil {
		return
	}
	c.fits.WithLabelValues(res.Reason.String(), strconv.FormatBool(res.Failed)).Inc()
	c.accepted.Observe(float64(res.Iterations))
	c.chisq.Observe(res.ChiSq)
	c.durations.Observe(elapsed.Seconds())
}

// Instrument returns a copy of opts whose OnIteration also feeds Step.
// An existing hook still runs first.
func (c *Collector) Instrument(opts lmfit.Options) lmfit.Options {
	prev := opts.OnIteration
	opts.OnIteration = func(it lmfit.Iteration) {
		if prev != nil {
			prev(it)
		}
		c.Step(it)
	}

	return opts
}

// ServeHTTP writes the metrics in Prometheus text format. Only GET is allowed.
func (c *Collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c.handler.ServeHTTP(w, r)
}
