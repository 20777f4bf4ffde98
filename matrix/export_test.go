// SPDX-License-Identifier: MIT

package matrix

// Test-bridge for the unexported elimination kernel, visible to matrix_test only.
var GaussJordan = gaussJordan
