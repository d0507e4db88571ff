// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/interp"
	"github.com/hydrocore/ribasim/node"
)

// TestDemandOfSamplesSolveTime guards against regressing to a hardcoded
// t=0 sample: the demand curve ramps from 1.0 to 5.0 between t=0 and
// t=10, so demandOf at t=10 must differ from demandOf at t=0.
func TestDemandOfSamplesSolveTime(t *testing.T) {
	u1 := node.ID(node.KindUserDemand, 1, 1)

	cat := node.NewCatalogue()
	cat.UserDemand = node.NewUserDemands(1)
	itp, err := interp.New([]float64{0, 10}, []float64{1.0, 5.0})
	require.NoError(t, err)
	cat.UserDemand.Priorities[0] = []int{1}
	cat.UserDemand.DemandItp[0] = []node.Interpolant{itp}
	cat.UserDemand.Allocated[0] = []float64{0}

	e := &Engine{Cat: cat}
	assert.InDelta(t, 1.0, e.demandOf(1, u1, 0), 1e-9)
	assert.InDelta(t, 5.0, e.demandOf(1, u1, 10), 1e-9)
	assert.InDelta(t, 3.0, e.demandOf(1, u1, 5), 1e-9)
}

// TestEngineRunAllocatesAtSolveTime exercises Engine.Run end to end with a
// time-varying demand, confirming the allocated/demand Records reflect the
// curve's value at the actual solve time rather than t=0.
func TestEngineRunAllocatesAtSolveTime(t *testing.T) {
	src := node.ID(node.KindFlowBoundary, 1, 1)
	basin := node.ID(node.KindBasin, 2, 1)
	u1 := node.ID(node.KindUserDemand, 3, 1)

	g := &Graph{
		SubnetworkID: 0,
		Nodes:        []graph.NodeID{basin, u1},
		Edges: []*CompositeEdge{
			{A: src, B: basin, Capacity: 100},
			{A: basin, B: u1, Capacity: posInf},
		},
	}

	cat := node.NewCatalogue()
	cat.UserDemand = node.NewUserDemands(1)
	itp, err := interp.New([]float64{0, 10}, []float64{1.0, 5.0})
	require.NoError(t, err)
	cat.UserDemand.Priorities[0] = []int{1}
	cat.UserDemand.DemandItp[0] = []node.Interpolant{itp}
	cat.UserDemand.Allocated[0] = []float64{0}

	m := NewModel(g, cat, LinearAbsolute, 86400)
	e := &Engine{Cat: cat, Main: m, DtAlloc: 86400}

	require.NoError(t, e.Run(10))

	require.Len(t, e.Records, 1)
	assert.InDelta(t, 5.0, e.Records[0].Demand, 1e-6)
	assert.InDelta(t, 5.0, e.Records[0].Allocated, 1e-6)
	assert.InDelta(t, 5.0, cat.UserDemand.Allocated[0][0], 1e-6)
}
