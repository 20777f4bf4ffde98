// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/katalvlaran/tanhfit/lmfit"
	"github.com/katalvlaran/tanhfit/profile"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "TANHFIT_"

// Config holds the command-line settings.
type Config struct {
	// Inputs are the data files, one series each.
	Inputs []string
	// Demo adds that many synthetic noisy series.
	Demo int
	// Start is the initial guess; empty means estimate it per series.
	Start []float64

	Tol        float64
	FailLambda float64
	MaxIter    int
	Workers    int

	XColumn, YColumn int
	Comma            string

	// Trace writes one JSON line per step to stderr.
	Trace bool
	// Curve writes the fitted curve of every series as CSV to stdout.
	Curve bool
	// MetricsAddr, when set, serves /metrics there until interrupted.
	MetricsAddr string
	// LogFormat is one of LogAuto, LogJSON, LogConsole.
	LogFormat string
}

// Log formats for stderr.
const (
	LogAuto    = "auto" // console on a terminal, JSON otherwise
	LogJSON    = "json"
	LogConsole = "console"
)

// FitOptions converts the config into lmfit.Options.
func (c Config) FitOptions() lmfit.Options {
	o := lmfit.DefaultOptions()
	o.Tol = c.Tol
	o.FailLambda = c.FailLambda
	o.MaxIterations = c.MaxIter
	o.Trace = c.Trace

	return o
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Demo < 0 {
		return fmt.Errorf("demo cannot be negative: %d", c.Demo)
	}
	if len(c.Inputs) == 0 && c.Demo == 0 {
		return errors.New("no input files")
	}
	if c.Start != nil && len(c.Start) != profile.NTerms {
		return fmt.Errorf("start needs %d values, got %d", profile.NTerms, len(c.Start))
	}
	if !(c.Tol > 0) {
		return fmt.Errorf("tol must be strictly positive: %v", c.Tol)
	}
	if !(c.FailLambda > 0) {
		return fmt.Errorf("fail-lambda must be strictly positive: %v", c.FailLambda)
	}
	if c.MaxIter < 0 {
		return fmt.Errorf("max-iter cannot be negative: %d", c.MaxIter)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.Workers)
	}
	if c.XColumn < 0 || c.YColumn < 0 || c.XColumn == c.YColumn {
		return fmt.Errorf("bad columns x=%d y=%d", c.XColumn, c.YColumn)
	}
	if len([]rune(c.Comma)) != 1 {
		return fmt.Errorf("sep must be a single character: %q", c.Comma)
	}
	// '#' starts a comment line; the others are refused by encoding/csv
	switch r := []rune(c.Comma)[0]; r {
	case '#', '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("sep cannot be %q", r)
	}
	switch c.LogFormat {
	case LogAuto, LogJSON, LogConsole:
	default:
		return fmt.Errorf("log-format must be %s, %s or %s: %q", LogAuto, LogJSON, LogConsole, c.LogFormat)
	}

	return nil
}

// ParseConfig reads flags from args, then TANHFIT_* variables for flags not
// given explicitly, then validates. Priority: flags > environment > defaults.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (Config, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	cfg := Config{}
	var start string
	fs.StringVar(&start, "start", "", "Initial guess c1,c2,c3,c4,c5 (default: estimated from each series).")
	fs.Float64Var(&cfg.Tol, "tol", lmfit.DefaultTol, "Convergence threshold on the fractional chi-square change.")
	fs.Float64Var(&cfg.FailLambda, "fail-lambda", lmfit.DefaultFailLambda, "Give up when a step is rejected above this damping.")
	fs.IntVar(&cfg.MaxIter, "max-iter", 0, "Upper bound on attempted steps per fit (0 = unbounded).")
	fs.IntVar(&cfg.Workers, "workers", 0, "Concurrent fits (0 = GOMAXPROCS).")
	fs.IntVar(&cfg.Demo, "demo", 0, "Also fit this many synthetic noisy series.")
	fs.IntVar(&cfg.XColumn, "xcol", 0, "Zero-based column holding x.")
	fs.IntVar(&cfg.YColumn, "ycol", 1, "Zero-based column holding y.")
	fs.StringVar(&cfg.Comma, "sep", ",", "Field separator.")
	fs.BoolVar(&cfg.Trace, "trace", false, "Write per-step diagnostics to stderr.")
	fs.BoolVar(&cfg.Curve, "curve", false, "Write x,y,fit rows for every series to stdout.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address until interrupted.")
	fs.StringVar(&cfg.LogFormat, "log-format", LogAuto, "Stderr format: auto, json or console.")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] file.csv...\n\nFlags:\n", programName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg, &start, fs)
	cfg.Inputs = fs.Args()

	if start != "" {
		vals, err := parseFloats(start)
		if err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return Config{}, errors.New("invalid configuration")
		}
		cfg.Start = vals
	}
	if cfg.Comma == `\t` {
		cfg.Comma = "\t"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return Config{}, errors.New("invalid configuration")
	}

	return cfg, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		out = append(out, v)
	}

	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Environment overrides
// ─────────────────────────────────────────────────────────────────────────────

// isFlagSet reports whether name was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})

	return found
}

// applyEnvOverrides reads, for each flag not set explicitly:
//   - TANHFIT_START, TANHFIT_SEP, TANHFIT_METRICS_ADDR, TANHFIT_LOG_FORMAT (string)
//   - TANHFIT_TOL, TANHFIT_FAIL_LAMBDA (float)
//   - TANHFIT_MAX_ITER, TANHFIT_WORKERS, TANHFIT_DEMO, TANHFIT_XCOL, TANHFIT_YCOL (int)
//   - TANHFIT_TRACE, TANHFIT_CURVE (bool: true/false, 1/0, yes/no)
//
// Unparsable values are ignored.
func applyEnvOverrides(cfg *Config, start *string, fs *flag.FlagSet) {
	if !isFlagSet(fs, "start") {
		*start = getEnvString("START", *start)
	}
	if !isFlagSet(fs, "sep") {
		cfg.Comma = getEnvString("SEP", cfg.Comma)
	}
	if !isFlagSet(fs, "metrics-addr") {
		cfg.MetricsAddr = getEnvString("METRICS_ADDR", cfg.MetricsAddr)
	}
	if !isFlagSet(fs, "log-format") {
		cfg.LogFormat = getEnvString("LOG_FORMAT", cfg.LogFormat)
	}
	if !isFlagSet(fs, "tol") {
		cfg.Tol = getEnvFloat("TOL", cfg.Tol)
	}
	if !isFlagSet(fs, "fail-lambda") {
		cfg.FailLambda = getEnvFloat("FAIL_LAMBDA", cfg.FailLambda)
	}
	if !isFlagSet(fs, "max-iter") {
		cfg.MaxIter = getEnvInt("MAX_ITER", cfg.MaxIter)
	}
	if !isFlagSet(fs, "demo") {
		cfg.Demo = getEnvInt("DEMO", cfg.Demo)
	}
	if !isFlagSet(fs, "workers") {
		cfg.Workers = getEnvInt("WORKERS", cfg.Workers)
	}
	if !isFlagSet(fs, "xcol") {
		cfg.XColumn = getEnvInt("XCOL", cfg.XColumn)
	}
	if !isFlagSet(fs, "ycol") {
		cfg.YColumn = getEnvInt("YCOL", cfg.YColumn)
	}
	if !isFlagSet(fs, "trace") {
		cfg.Trace = getEnvBool("TRACE", cfg.Trace)
	}
	if !isFlagSet(fs, "curve") {
		cfg.Curve = getEnvBool("CURVE", cfg.Curve)
	}
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
