// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/hydrocore/ribasim/graph"

// PidControls is the record-of-arrays table for KindPidControl.
// error e(t) = target(t) - level(listen); integral state = ∫e dt;
// the controlled flow rate formula combines proportional, integral and
// derivative terms scaled by a reduction/smooth factor, then clamped to the
// controlled node's [min,max] flow rate.
type PidControls struct {
	ExternalID   []int32
	Active       []bool
	Listen       []graph.NodeID // must be a Basin adjacent to Controlled
	Controlled   []graph.NodeID // a Pump or Outlet
	Target       []Interpolant
	Proportional []float64 // Kp
	Integral     []float64 // Ki
	Derivative   []float64 // Kd

	// StateIndex is allocated zeroed and not filled in; the RHS reads the
	// integral of PID row i from state index NumBasins()+i instead.
	StateIndex []int

	ControlMapping []map[string]ScalarUpdate
}

// NewPidControls allocates a table of size n.
func NewPidControls(n int) *PidControls {
	t := &PidControls{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		Listen:         make([]graph.NodeID, n),
		Controlled:     make([]graph.NodeID, n),
		Target:         make([]Interpolant, n),
		Proportional:   make([]float64, n),
		Integral:       make([]float64, n),
		Derivative:     make([]float64, n),
		StateIndex:     make([]int, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}
