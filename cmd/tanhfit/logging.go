// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// logWriter returns the stderr destination for format: w itself for JSON
// lines, or a zerolog.ConsoleWriter over it. Colors are used only on a terminal.
func logWriter(w io.Writer, format string) io.Writer {
	tty := isTerminal(w)
	if format == LogJSON || (format == LogAuto && !tty) {
		return w
	}

	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !tty}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
