// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(t *testing.T) (*Graph, NodeID, NodeID, NodeID) {
	t.Helper()
	g := New()
	a := NodeID{Kind: 1, ExternalID: 1, InternalIndex: 1}
	b := NodeID{Kind: 2, ExternalID: 2, InternalIndex: 1}
	c := NodeID{Kind: 1, ExternalID: 3, InternalIndex: 2}
	g.InsertNode(a)
	g.InsertNode(b)
	g.InsertNode(c)
	g.InsertEdge(1, a, b, EdgeFlow)
	g.InsertEdge(2, b, c, EdgeFlow)
	return g, a, b, c
}

func TestInsertEdgeAssignsDenseFlowIndex(t *testing.T) {
	g, _, _, _ := chain(t)
	assert.Equal(t, 2, g.NumFlowEdges())
	edges := g.Edges()
	assert.Equal(t, 0, edges[0].FlowIndex)
	assert.Equal(t, 1, edges[1].FlowIndex)
}

func TestControlEdgesDoNotConsumeFlowIndex(t *testing.T) {
	g := New()
	a := NodeID{Kind: 1, ExternalID: 1, InternalIndex: 1}
	b := NodeID{Kind: 3, ExternalID: 2, InternalIndex: 1}
	g.InsertNode(a)
	g.InsertNode(b)
	e := g.InsertEdge(1, a, b, EdgeControl)
	assert.Equal(t, -1, e.FlowIndex)
	assert.Equal(t, 0, g.NumFlowEdges())
}

func TestUniqueFlowNeighbors(t *testing.T) {
	g, a, b, c := chain(t)
	out, err := g.UniqueFlowOutNeighbor(a)
	require.NoError(t, err)
	assert.Equal(t, b, out)

	in, err := g.UniqueFlowInNeighbor(c)
	require.NoError(t, err)
	assert.Equal(t, b, in)
}

func TestUniqueFlowNeighborDegreeViolation(t *testing.T) {
	g := New()
	a := NodeID{Kind: 1, ExternalID: 1, InternalIndex: 1}
	g.InsertNode(a)
	_, err := g.UniqueFlowOutNeighbor(a)
	require.Error(t, err)
	var dv *DegreeViolation
	assert.ErrorAs(t, err, &dv)
}

func TestEdgeBetweenUnknown(t *testing.T) {
	g, a, _, c := chain(t)
	_, err := g.EdgeBetween(a, c)
	require.Error(t, err)
	var ue *UnknownEdge
	assert.ErrorAs(t, err, &ue)
}

func TestInsertNodeIsIdempotent(t *testing.T) {
	g := New()
	a := NodeID{Kind: 1, ExternalID: 1, InternalIndex: 1}
	g.InsertNode(a)
	g.InsertNode(a)
	assert.Len(t, g.Nodes(), 1)
}
