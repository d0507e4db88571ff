// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/interp"
	"github.com/hydrocore/ribasim/node"
)

// manningChain builds a two-LevelBoundary chain through a single
// ManningResistance node, with ha/hb driving the upstream/downstream head.
func manningChain(t *testing.T, ha, hb float64) (*graph.Graph, *node.Catalogue, *Buffer) {
	t.Helper()
	g := graph.New()
	lbA := node.ID(node.KindLevelBoundary, 1, 1)
	mr := node.ID(node.KindManningResistance, 2, 1)
	lbB := node.ID(node.KindLevelBoundary, 3, 2)
	g.InsertNode(lbA)
	g.InsertNode(mr)
	g.InsertNode(lbB)
	g.InsertEdge(1, lbA, mr, graph.EdgeFlow)
	g.InsertEdge(2, mr, lbB, graph.EdgeFlow)

	cat := node.NewCatalogue()
	cat.LevelBoundary = node.NewLevelBoundaries(2)
	cat.LevelBoundary.Level[0] = interp.Constant(ha)
	cat.LevelBoundary.Level[1] = interp.Constant(hb)

	cat.ManningResistance = node.NewManningResistances(1)
	cat.ManningResistance.ExternalID[0] = 2
	cat.ManningResistance.Length[0] = 100
	cat.ManningResistance.ManningN[0] = 0.04
	cat.ManningResistance.ProfileW[0] = 2
	cat.ManningResistance.ProfileSlope[0] = 1
	cat.ManningResistance.BottomA[0] = 0
	cat.ManningResistance.BottomB[0] = 0

	buf := NewBuffer(g.NumFlowEdges(), cat.NumBasins())
	return g, cat, buf
}

func TestManningResistanceFlowsDownhill(t *testing.T) {
	g, cat, buf := manningChain(t, 1.0, 0.0)
	ManningResistance(g, cat, buf, 0)
	require.Greater(t, len(buf.Q), 0)
	assert.Greater(t, buf.Q[0], 0.0, "flow must be positive when upstream head exceeds downstream head")
}

// TestManningResistanceReversesWithHead guards against the regularized
// magnitude term (always non-negative) silently swallowing the flow
// direction: swapping which end is higher must reverse the sign of q, not
// just its downstream/upstream magnitude.
func TestManningResistanceReversesWithHead(t *testing.T) {
	gDown, catDown, bufDown := manningChain(t, 1.0, 0.0)
	ManningResistance(gDown, catDown, bufDown, 0)

	gUp, catUp, bufUp := manningChain(t, 0.0, 1.0)
	ManningResistance(gUp, catUp, bufUp, 0)

	assert.Greater(t, bufDown.Q[0], 0.0)
	assert.Less(t, bufUp.Q[0], 0.0, "reversing the head difference must reverse the sign of q")
	assert.InDelta(t, -bufDown.Q[0], bufUp.Q[0], 1e-9, "magnitude must be symmetric under head reversal")
}

func TestManningResistanceZeroAtEqualHeads(t *testing.T) {
	g, cat, buf := manningChain(t, 1.0, 1.0)
	ManningResistance(g, cat, buf, 0)
	assert.InDelta(t, 0.0, buf.Q[0], 1e-9)
}

func TestManningRegularizedIsAlwaysNonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, ManningRegularized(5.0, 10.0), 0.0)
	assert.GreaterOrEqual(t, ManningRegularized(-5.0, 10.0), 0.0)
}

func TestSign(t *testing.T) {
	assert.Equal(t, 1.0, Sign(3.0))
	assert.Equal(t, -1.0, Sign(-3.0))
	assert.Equal(t, 0.0, Sign(0.0))
}
