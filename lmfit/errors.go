// SPDX-License-Identifier: MIT

package lmfit

import (
	"errors"
	"fmt"
)

// Every error returned by Fit is a configuration error at the call site: the
// fit was not attempted and the coefficient buffer is untouched. Non-convergence
// is NOT an error; it is reported through Result.Failed.
var (
	// ErrLengthMismatch indicates len(x) != len(y).
	ErrLengthMismatch = errors.New("lmfit: x and y lengths differ")

	// ErrDegreesOfFreedom indicates n - NTerms <= 0.
	ErrDegreesOfFreedom = errors.New("lmfit: not enough points for the number of coefficients")

	// ErrCoeffCount indicates the coefficient buffer is not exactly NTerms long.
	ErrCoeffCount = errors.New("lmfit: coefficient vector has wrong length")

	// ErrBadOptions indicates a non-positive tolerance or damping setting.
	ErrBadOptions = errors.New("lmfit: invalid options")
)

// fitErrorf attaches details to a sentinel while keeping it matchable.
func fitErrorf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
