// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

// Outlets is the record-of-arrays table for KindOutlet. Flow law:
// q = rate * reduction(source_storage, 10.0), further reduced by
// (a) source level below target level and (b) source level below the
// minimum crest level, each via the same smooth ramp (flow.Reduction).
type Outlets struct {
	ExternalID     []int32
	Active         []bool
	FlowRate       []float64
	MinFlowRate    []float64
	MaxFlowRate    []float64
	MinCrestLevel  []float64
	MinUpstreamLvl []float64 // target level below which flow is also damped

	ControlMapping []map[string]ScalarUpdate
}

// NewOutlets allocates a table of size n.
func NewOutlets(n int) *Outlets {
	t := &Outlets{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		FlowRate:       make([]float64, n),
		MinFlowRate:    make([]float64, n),
		MaxFlowRate:    make([]float64, n),
		MinCrestLevel:  make([]float64, n),
		MinUpstreamLvl: make([]float64, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
		t.MaxFlowRate[i] = 1e9
		t.MinCrestLevel[i] = -1e9
	}
	return t
}
