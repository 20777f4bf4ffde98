// SPDX-License-Identifier: MIT
// Package matrix - functional options for Dense construction.
//
// Purpose:
//   - Single source of truth for the numeric policy (NaN/Inf rejection).
//   - Public entry points accept ...Option and resolve them via gatherOptions.

package matrix

// DefaultValidateNaNInf toggles strict finite-value validation on Set and NewDenseFrom.
const DefaultValidateNaNInf = true

// Option mutates Options; applied in order (last-writer-wins).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported to prevent external mutation.
type Options struct {
	validateNaNInf bool // DefaultValidateNaNInf
}

// WithNoValidateNaNInf disables NaN/Inf validation on newly created matrices.
// Working buffers of iterative solvers use it so that a diverging step is
// reported by the solver instead of failing a Set.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// gatherOptions applies user setters on top of defaults.
// Complexity: O(k) for k=len(user).
func gatherOptions(user ...Option) Options {
	o := Options{validateNaNInf: DefaultValidateNaNInf}
	for _, set := range user {
		if set != nil {
			set(&o)
		}
	}

	return o
}
