// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// TestFractionalFlowSplitsByFraction: two FractionalFlow nodes share a single
// upstream rating-curve node, each receiving its predecessor's total outflow
// on its own in-edge, and must rescale it by their own fraction (0.25, 0.75)
// onto their own out-edge.
func TestFractionalFlowSplitsByFraction(t *testing.T) {
	g := graph.New()
	up := node.ID(node.KindTabulatedRatingCurve, 1, 1)
	ffUp := node.ID(node.KindFractionalFlow, 2, 1)
	ffDown := node.ID(node.KindFractionalFlow, 3, 2)
	sinkUp := node.ID(node.KindLevelBoundary, 4, 1)
	sinkDown := node.ID(node.KindLevelBoundary, 5, 2)

	g.InsertNode(up)
	g.InsertNode(ffUp)
	g.InsertNode(ffDown)
	g.InsertNode(sinkUp)
	g.InsertNode(sinkDown)

	inUp := g.InsertEdge(1, up, ffUp, graph.EdgeFlow)
	inDown := g.InsertEdge(2, up, ffDown, graph.EdgeFlow)
	outUp := g.InsertEdge(3, ffUp, sinkUp, graph.EdgeFlow)
	outDown := g.InsertEdge(4, ffDown, sinkDown, graph.EdgeFlow)

	cat := node.NewCatalogue()
	cat.FractionalFlow = node.NewFractionalFlows(2)
	cat.FractionalFlow.ExternalID[0] = 2
	cat.FractionalFlow.ExternalID[1] = 3
	cat.FractionalFlow.Fraction[0] = 0.25
	cat.FractionalFlow.Fraction[1] = 0.75

	buf := NewBuffer(g.NumFlowEdges(), 0)
	buf.Q[inUp.FlowIndex] = 1.0
	buf.Q[inDown.FlowIndex] = 1.0

	FractionalFlow(g, cat, buf, 0)

	assert.InDelta(t, 0.25, buf.Q[outUp.FlowIndex], 1e-6)
	assert.InDelta(t, 0.75, buf.Q[outDown.FlowIndex], 1e-6)
}
