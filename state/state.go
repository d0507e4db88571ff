// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state implements the packed state vector:
// [storage_1 ... storage_nBasin, integral_1 ... integral_nPid], allocated
// once with a layout that never changes. Out-of-range access is fatal via
// chk.Panic, since it can only happen from a programmer error, never from
// external input.
package state

import "github.com/cpmech/gosl/chk"

// Vector is the packed ODE state: basin storages followed by PID
// integrals. Length, ordering and the index map are fixed at
// construction.
type Vector struct {
	Y        []float64
	nBasin   int
	nPid     int
}

// New allocates a Vector of length nBasin+nPid, zero-initialized.
func New(nBasin, nPid int) *Vector {
	return &Vector{Y: make([]float64, nBasin+nPid), nBasin: nBasin, nPid: nPid}
}

// NumBasins and NumPid report the two segment lengths.
func (v *Vector) NumBasins() int { return v.nBasin }
func (v *Vector) NumPid() int    { return v.nPid }

// Storage returns storage[i] (0-based basin index); panics out of range.
func (v *Vector) Storage(i int) float64 {
	v.checkBasin(i)
	return v.Y[i]
}

// SetStorage sets storage[i]; panics out of range.
func (v *Vector) SetStorage(i int, val float64) {
	v.checkBasin(i)
	v.Y[i] = val
}

// Integral returns the PID integral state at row i (0-based); panics out
// of range.
func (v *Vector) Integral(i int) float64 {
	v.checkPid(i)
	return v.Y[v.nBasin+i]
}

// SetIntegral sets the PID integral state at row i.
func (v *Vector) SetIntegral(i int, val float64) {
	v.checkPid(i)
	v.Y[v.nBasin+i] = val
}

// BasinIndex and PidIndex convert a segment-local index to the packed
// index in Y, for code assembling du directly (the RHS, the Jacobian
// prototype).
func (v *Vector) BasinIndex(i int) int { v.checkBasin(i); return i }
func (v *Vector) PidIndex(i int) int   { v.checkPid(i); return v.nBasin + i }

func (v *Vector) checkBasin(i int) {
	if i < 0 || i >= v.nBasin {
		chk.Panic("state: basin index %d out of range [0,%d)", i, v.nBasin)
	}
}

func (v *Vector) checkPid(i int) {
	if i < 0 || i >= v.nPid {
		chk.Panic("state: pid index %d out of range [0,%d)", i, v.nPid)
	}
}

// Clone returns an independent copy of the vector, used by the engine to
// keep the start-of-step state for DiscreteControl crossing detection.
func (v *Vector) Clone() *Vector {
	y := make([]float64, len(v.Y))
	copy(y, v.Y)
	return &Vector{Y: y, nBasin: v.nBasin, nPid: v.nPid}
}
