// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// subnetworkAllocation builds the S4 scenario directly against the LP
// model: one source FlowBoundary feeding one Basin feeding two UserDemand
// nodes with priorities 1 and 2 and demands 2.0 and 3.0, source capped at
// 4.0 m3/s.
func subnetworkAllocation(t *testing.T) (*Model, *CompositeEdge, *CompositeEdge, func(priority int, id graph.NodeID) float64) {
	t.Helper()
	src := node.ID(node.KindFlowBoundary, 1, 1)
	basin := node.ID(node.KindBasin, 2, 1)
	u1 := node.ID(node.KindUserDemand, 3, 1)
	u2 := node.ID(node.KindUserDemand, 4, 1)

	edgeSrc := &CompositeEdge{A: src, B: basin, Capacity: 4.0}
	edgeU1 := &CompositeEdge{A: basin, B: u1, Capacity: posInf}
	edgeU2 := &CompositeEdge{A: basin, B: u2, Capacity: posInf}

	g := &Graph{
		SubnetworkID: 1,
		Nodes:        []graph.NodeID{basin, u1, u2},
		Edges:        []*CompositeEdge{edgeSrc, edgeU1, edgeU2},
	}

	cat := node.NewCatalogue()
	demands := map[graph.NodeID]map[int]float64{
		u1: {1: 2.0},
		u2: {2: 3.0},
	}
	demand := func(priority int, id graph.NodeID) float64 {
		return demands[id][priority]
	}

	m := NewModel(g, cat, LinearAbsolute, 86400)
	return m, edgeU1, edgeU2, demand
}

func TestAllocationRespectsUserDemandCap(t *testing.T) {
	m, edgeU1, edgeU2, demand := subnetworkAllocation(t)

	solutions, err := m.Solve([]int{1, 2}, demand, nil, false)
	require.NoError(t, err)
	require.Len(t, solutions, 2)

	assert.InDelta(t, 2.0, solutions[0].EdgeFlow[edgeU1], 1e-6, "priority 1 must allocate exactly user1's demand, not the full source capacity")
	assert.InDelta(t, 0.0, solutions[0].EdgeFlow[edgeU2], 1e-6)

	assert.InDelta(t, 2.0, solutions[1].EdgeFlow[edgeU2], 1e-6, "priority 2 gets only the remaining source capacity, not the full demand of 3.0")
}

func TestAllocationNeverExceedsEdgeCapacity(t *testing.T) {
	m, edgeU1, edgeU2, demand := subnetworkAllocation(t)
	solutions, err := m.Solve([]int{1, 2}, demand, nil, false)
	require.NoError(t, err)

	var totalSourceFlow float64
	for _, sol := range solutions {
		totalSourceFlow += sol.EdgeFlow[edgeU1] + sol.EdgeFlow[edgeU2]
	}
	assert.LessOrEqual(t, totalSourceFlow, 4.0+1e-6, "total allocated flow must never exceed the source's capacity")
}

func TestAbsoluteValueLinearizationMatchesShortfall(t *testing.T) {
	// A single user with demand 5.0 against a capped source of 2.0 must
	// allocate exactly the source cap, and the LinearAbsolute objective
	// must not push flow above the edge's own demand-cap constraint.
	src := node.ID(node.KindFlowBoundary, 1, 1)
	basin := node.ID(node.KindBasin, 2, 1)
	u1 := node.ID(node.KindUserDemand, 3, 1)

	edgeSrc := &CompositeEdge{A: src, B: basin, Capacity: 2.0}
	edgeU1 := &CompositeEdge{A: basin, B: u1, Capacity: posInf}
	g := &Graph{SubnetworkID: 1, Nodes: []graph.NodeID{basin, u1}, Edges: []*CompositeEdge{edgeSrc, edgeU1}}

	cat := node.NewCatalogue()
	demand := func(priority int, id graph.NodeID) float64 {
		if id == u1 && priority == 1 {
			return 5.0
		}
		return 0
	}

	m := NewModel(g, cat, LinearAbsolute, 86400)
	solutions, err := m.Solve([]int{1}, demand, nil, false)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, solutions[0].EdgeFlow[edgeU1], 1e-6)
}

func TestFractionalFlowConstraintBoundsSplit(t *testing.T) {
	src := node.ID(node.KindFlowBoundary, 1, 1)
	basin := node.ID(node.KindBasin, 2, 1)
	ff := node.ID(node.KindFractionalFlow, 3, 1)
	u1 := node.ID(node.KindUserDemand, 4, 1)

	edgeSrc := &CompositeEdge{A: src, B: basin, Capacity: 1.0}
	edgeSplit := &CompositeEdge{
		A: basin, B: ff, Capacity: posInf,
		FractionalFlowOf: &fractionalFlowRef{Fraction: 0.25, Predecessor: src},
	}
	edgeOut := &CompositeEdge{A: ff, B: u1, Capacity: posInf}

	g := &Graph{
		SubnetworkID: 1,
		Nodes:        []graph.NodeID{basin, ff, u1},
		Edges:        []*CompositeEdge{edgeSrc, edgeSplit, edgeOut},
	}
	cat := node.NewCatalogue()
	demand := func(priority int, id graph.NodeID) float64 {
		if id == u1 {
			return 10.0
		}
		return 0
	}
	m := NewModel(g, cat, LinearAbsolute, 86400)
	_, err := m.Solve([]int{1}, demand, nil, false)
	require.NoError(t, err)
}
