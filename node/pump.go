// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

// Pumps is the record-of-arrays table for KindPump. Flow law:
// q = rate * reduction(source_storage, 10.0). FlowRate is also the
// slot PidControl writes into directly when this pump is PID-controlled.
type Pumps struct {
	ExternalID  []int32
	Active      []bool
	FlowRate    []float64 // current commanded rate, m3/s; mutated by PidControl or forcing
	MinFlowRate []float64
	MaxFlowRate []float64

	ControlMapping []map[string]ScalarUpdate
}

// NewPumps allocates a table of size n.
func NewPumps(n int) *Pumps {
	t := &Pumps{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		FlowRate:       make([]float64, n),
		MinFlowRate:    make([]float64, n),
		MaxFlowRate:    make([]float64, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
		t.MaxFlowRate[i] = 1e9
	}
	return t
}
