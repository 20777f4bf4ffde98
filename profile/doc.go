// Package profile evaluates the double-tanh interface profile and its exact
// partial derivatives.
//
// The model describes a plateau-to-plateau transition made of two equal-width
// tanh steps located independently:
//
//	t1 = tanh((x-c1)/c3)
//	t2 = tanh((x-c2)/c3)
//	f  = c4 + 0.5*(c5-c4)*(t1-t2)
//
// With c1 < c2 and c3 > 0 the curve sits at c4 far from the pair of centers
// and reaches c5 between them.
//
// All functions are pure and allocation-free (except Curve, which may grow
// its destination). Width c3 must be non-zero; this is not checked.
//
//	import "github.com/katalvlaran/tanhfit/profile"
//
//	c := profile.Coeffs{-1, 1, 0.5, 0, 1}
//	f, d := profile.Eval(0.3, c)
package profile
