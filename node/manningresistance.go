// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "math"

// ManningResistances is the record-of-arrays table for KindManningResistance.
// Flow law: standard trapezoidal Gauckler-Manning formula
// with averaged wetted perimeter on both ends; sign of q follows sign of
// Δh; the arctangent-regularized magnitude term lives in package flow
// (flow.ManningRegularized).
type ManningResistances struct {
	ExternalID       []int32
	Active           []bool
	Length           []float64 // L, m
	ManningN         []float64 // roughness coefficient
	ProfileW         []float64 // bottom width, m
	ProfileSlope     []float64 // side slope (horizontal:vertical)
	BottomA, BottomB []float64 // bed elevation at each end, m

	ControlMapping []map[string]ScalarUpdate
}

// NewManningResistances allocates a table of size n.
func NewManningResistances(n int) *ManningResistances {
	t := &ManningResistances{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		Length:         make([]float64, n),
		ManningN:       make([]float64, n),
		ProfileW:       make([]float64, n),
		ProfileSlope:   make([]float64, n),
		BottomA:        make([]float64, n),
		BottomB:        make([]float64, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// WettedArea and WettedPerimeter compute the trapezoidal cross-section
// geometry at a given depth, used symmetrically at both ends of the
// resistance ("averaged wetted perimeter on both ends").
func (t *ManningResistances) WettedArea(i int, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	w, s := t.ProfileW[i], t.ProfileSlope[i]
	return depth * (w + s*depth)
}

func (t *ManningResistances) WettedPerimeter(i int, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	w, s := t.ProfileW[i], t.ProfileSlope[i]
	return w + 2*depth*math.Sqrt(1+s*s)
}
