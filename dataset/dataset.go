// SPDX-License-Identifier: MIT

// Package dataset reads and writes (x, y) measurement series as delimited text.
//
// Input rows hold at least two numeric fields. Blank lines and lines starting
// with '#' are skipped, and a first row whose x or y field is not a number
// is taken as a header.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmpty indicates a source with no data rows.
	ErrEmpty = errors.New("dataset: no data rows")

	// ErrParse indicates a row that could not be read as numbers.
	ErrParse = errors.New("dataset: malformed row")
)

// commentChar starts a line that Read skips.
const commentChar = '#'

// Series is a pair of equal-length columns.
type Series struct {
	Name string
	X, Y []float64
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.X) }

// Options selects columns and the field separator.
type Options struct {
	XColumn int  // zero-based, default 0
	YColumn int  // zero-based, default 1
	Comma   rune // default ','
}

// DefaultOptions reads x from column 0 and y from column 1, comma separated.
func DefaultOptions() Options {
	return Options{XColumn: 0, YColumn: 1, Comma: ','}
}

// Read parses a series from r.
func Read(r io.Reader, opts Options) (Series, error) {
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	if opts.XColumn < 0 || opts.YColumn < 0 || opts.XColumn == opts.YColumn {
		return Series{}, fmt.Errorf("%w: columns x=%d y=%d", ErrParse, opts.XColumn, opts.YColumn)
	}
	if opts.Comma == commentChar {
		return Series{}, fmt.Errorf("%w: separator %q also starts comment lines", ErrParse, opts.Comma)
	}
	need := max(opts.XColumn, opts.YColumn) + 1

	rd := csv.NewReader(r)
	rd.Comma = opts.Comma
	rd.Comment = commentChar
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	var s Series
	for row := 0; ; row++ {
		fields, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		line, _ := rd.FieldPos(0)
		if len(fields) < need {
			return Series{}, fmt.Errorf("%w: line %d has %d fields, need %d", ErrParse, line, len(fields), need)
		}

		x, errX := parseField(fields[opts.XColumn])
		y, errY := parseField(fields[opts.YColumn])
		if errX != nil || errY != nil {
			if row == 0 {
				continue // header
			}
			return Series{}, fmt.Errorf("%w: line %d: %q, %q", ErrParse, line, fields[opts.XColumn], fields[opts.YColumn])
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}
	if len(s.X) == 0 {
		return Series{}, ErrEmpty
	}

	return s, nil
}

// Load reads a series from the named file; the series is named after it.
func Load(path string, opts Options) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	s, err := Read(f, opts)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = path

	return s, nil
}

// WriteCurve writes a header and one "x,y,fit" row per point.
// fit must be as long as s.
func WriteCurve(w io.Writer, s Series, fit []float64) error {
	if len(fit) != s.Len() || len(s.Y) != s.Len() {
		return fmt.Errorf("dataset: curve has %d points, series %d", len(fit), s.Len())
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y", "fit"}); err != nil {
		return err
	}
	for i := range s.X {
		rec := []string{formatFloat(s.X[i]), formatFloat(s.Y[i]), formatFloat(fit[i])}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
