// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/hydrocore/ribasim/graph"

// FlowDemands is the record-of-arrays table for KindFlowDemand: attaches a
// priority and a demand curve to the flow-buffer of a node it is linked to
// via a control edge, consumed by the allocation engine's
// F_flow_buffer_in/out variables.
type FlowDemands struct {
	ExternalID []int32
	Active     []bool
	DemandItp  []Interpolant
	Priority   []int
	Node       []graph.NodeID // the node carrying the flow-demand buffer
}

// NewFlowDemands allocates a table of size n.
func NewFlowDemands(n int) *FlowDemands {
	t := &FlowDemands{
		ExternalID: make([]int32, n),
		Active:     make([]bool, n),
		DemandItp:  make([]Interpolant, n),
		Priority:   make([]int, n),
		Node:       make([]graph.NodeID, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}
