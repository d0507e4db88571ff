// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interp implements the piecewise-linear, constant-extrapolated
// time-series interpolants used throughout the node catalogue for flow and
// control parameters. The shape mirrors gosl/fun's fun.TimeSpace
// interface: a value sampled with At(t).
package interp

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Func is satisfied by any scalar function of time; it is the local
// analogue of gosl/fun.TimeSpace, scoped to the single free variable (time)
// every control/forcing parameter in this system varies over.
type Func interface {
	At(t float64) float64
}

// Constant is a Func that never varies; used for parameters that have no
// time table.
type Constant float64

func (c Constant) At(float64) float64 { return float64(c) }

// PiecewiseLinear is a strictly-increasing-time sample table, extended by
// constant extrapolation at both ends. Construction
// validates strict monotonicity of Times; callers that load from a
// catalog table failing this invariant must surface a schema error rather
// than constructing one of these.
type PiecewiseLinear struct {
	Times  []float64
	Values []float64
}

// New validates and returns a PiecewiseLinear interpolant. It panics on a
// length mismatch (a programmer error, never external data) and returns an
// error on non-increasing times (a schema error, not a programmer error).
func New(times, values []float64) (*PiecewiseLinear, error) {
	if len(times) != len(values) {
		chk.Panic("interp: times and values must have the same length: %d != %d", len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, chk.Err("interp: sample times must be strictly increasing: t[%d]=%g <= t[%d]=%g", i, times[i], i-1, times[i-1])
		}
	}
	return &PiecewiseLinear{Times: times, Values: values}, nil
}

// At samples the interpolant at t, clamping to the first/last value outside
// [t0, tend].
func (p *PiecewiseLinear) At(t float64) float64 {
	n := len(p.Times)
	if n == 0 {
		return 0
	}
	if t <= p.Times[0] {
		return p.Values[0]
	}
	if t >= p.Times[n-1] {
		return p.Values[n-1]
	}
	// first index with Times[i] >= t
	i := sort.Search(n, func(i int) bool { return p.Times[i] >= t })
	if p.Times[i] == t {
		return p.Values[i]
	}
	t0, t1 := p.Times[i-1], p.Times[i]
	v0, v1 := p.Values[i-1], p.Values[i]
	frac := (t - t0) / (t1 - t0)
	return v0 + frac*(v1-v0)
}

// MostRecentRowBefore returns the index of the last sample at or before t,
// or -1 if t is before the first sample. Used by the rating-curve update
// (node.TabulatedRatingCurves.ApplyScheduledCurves) to pick the curve in
// force at t.
func MostRecentRowBefore(times []float64, t float64) int {
	n := len(times)
	i := sort.Search(n, func(i int) bool { return times[i] > t })
	return i - 1
}

// Handle is a replaceable pointer to a Func, used where DiscreteControl
// swaps an interpolant wholesale at a control transition:
// "replacement is a pointer/handle swap, not in-place editing".
type Handle struct {
	fn Func
}

// NewHandle wraps fn in a Handle.
func NewHandle(fn Func) *Handle { return &Handle{fn: fn} }

// At delegates to the wrapped Func.
func (h *Handle) At(t float64) float64 {
	if h.fn == nil {
		return 0
	}
	return h.fn.At(t)
}

// Set swaps the wrapped Func (a pointer swap, never in-place mutation of the
// old interpolant's samples).
func (h *Handle) Set(fn Func) { h.fn = fn }

// TabulatedRatingCurve is a level->discharge piecewise-linear function used
// by node.TabulatedRatingCurve and replaced wholesale by the rating-curve
// update callback.
type TabulatedRatingCurve struct {
	Level     []float64
	Discharge []float64
}

// NewRatingCurve validates and returns a TabulatedRatingCurve; levels must
// be strictly increasing (duplicate levels are a schema error).
func NewRatingCurve(level, discharge []float64) (*TabulatedRatingCurve, error) {
	for i := 1; i < len(level); i++ {
		if level[i] <= level[i-1] {
			return nil, chk.Err("rating curve: repeated or decreasing level at index %d: %g <= %g", i, level[i], level[i-1])
		}
	}
	return &TabulatedRatingCurve{Level: level, Discharge: discharge}, nil
}

// At samples q(h): flat-clamped below the bottom of the table (held at the
// lowest tabulated discharge), extrapolated with the boundary slope of
// the table's top segment above it, since discharge tables describe an open
// channel control that keeps rising with head rather than saturating.
func (c *TabulatedRatingCurve) At(h float64) float64 {
	n := len(c.Level)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return c.Discharge[0]
	}
	if h <= c.Level[0] {
		return c.Discharge[0]
	}
	if h >= c.Level[n-1] {
		h0, h1 := c.Level[n-2], c.Level[n-1]
		q0, q1 := c.Discharge[n-2], c.Discharge[n-1]
		slope := (q1 - q0) / (h1 - h0)
		return q1 + slope*(h-h1)
	}
	i := sort.Search(n, func(i int) bool { return c.Level[i] >= h })
	h0, h1 := c.Level[i-1], c.Level[i]
	q0, q1 := c.Discharge[i-1], c.Discharge[i]
	frac := (h - h0) / (h1 - h0)
	return q0 + frac*(q1-q0)
}
