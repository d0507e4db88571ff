// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "math"

// LinearResistances is the record-of-arrays table for KindLinearResistance.
// Flow law: q = clamp((h_a - h_b) / R, -Qmax, Qmax), then
// multiplied by a low-storage reduction factor on whichever basin side is
// outflowing.
type LinearResistances struct {
	ExternalID []int32
	Active     []bool
	Resistance []float64 // R, s/m2
	MaxFlow    []float64 // Qmax, m3/s; math.Inf(1) for unbounded

	// ControlMapping holds, per (control state label), the descriptor
	// applied atomically on a DiscreteControl transition.
	ControlMapping []map[string]ScalarUpdate
}

// NewLinearResistances allocates a table of size n with Qmax defaulted to
// +Inf (unbounded), matching "Qmax=infinity" scenarios like S2.
func NewLinearResistances(n int) *LinearResistances {
	t := &LinearResistances{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		Resistance:     make([]float64, n),
		MaxFlow:        make([]float64, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
		t.MaxFlow[i] = math.Inf(1)
	}
	return t
}
