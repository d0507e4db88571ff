// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flow implements the per-node-kind flow laws:
// pure functions from current storages/levels/time/parameters to a flow
// rate, writing into an edge-indexed flow buffer. The smoothing primitives
// here (Reduction, ManningRegularized) keep the exact ramp polynomial shape;
// any substitute must stay C1 and monotone.
package flow

import "math"

// Reduction is the C1 smooth low-storage/low-head reduction factor r(x; T):
// zero below 0, a cubic ramp on [0, T), one above T.
func Reduction(x, t float64) float64 {
	if x < 0 {
		return 0
	}
	if x >= t {
		return 1
	}
	xt := x / t
	return (-2*xt + 3) * xt * xt
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ManningRegularized evaluates the arctangent-smoothed magnitude term used
// by ManningResistance to regularize the derivative at Δh=0:
// sqrt(2/π · atan(k·Δh) · Δh/L + ε). The result is always non-negative;
// callers must multiply by Sign(deltaH) to recover the flow direction.
func ManningRegularized(deltaH, length float64) float64 {
	const k = 1000.0
	const eps = 1e-200
	v := 2.0 / math.Pi * math.Atan(k*deltaH) * deltaH / length
	return math.Sqrt(v + eps)
}

// Sign returns -1, 0 or 1 matching the sign of x, used to orient Manning
// flows by the sign of the driving head difference.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
