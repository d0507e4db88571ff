// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// fractionalFlowGraph builds one rating-curve predecessor feeding n
// FractionalFlow successors with the given fractions.
func fractionalFlowGraph(t *testing.T, fractions []float64) (*graph.Graph, *node.Catalogue) {
	t.Helper()
	g := graph.New()
	src := node.ID(node.KindTabulatedRatingCurve, 1, 1)
	g.InsertNode(src)

	cat := node.NewCatalogue()
	cat.FractionalFlow = node.NewFractionalFlows(len(fractions))
	for i, f := range fractions {
		id := node.ID(node.KindFractionalFlow, int32(i+2), i+1)
		g.InsertNode(id)
		g.InsertEdge(int32(i+1), src, id, graph.EdgeFlow)
		cat.FractionalFlow.ExternalID[i] = int32(i + 2)
		cat.FractionalFlow.Fraction[i] = f
	}
	return g, cat
}

func TestValidateFractionalFlowsAcceptsExactSplit(t *testing.T) {
	g, cat := fractionalFlowGraph(t, []float64{0.25, 0.75})
	require.NoError(t, validateFractionalFlows(g, cat))
}

func TestValidateFractionalFlowsRejectsBadSplit(t *testing.T) {
	g, cat := fractionalFlowGraph(t, []float64{0.25, 0.5})
	err := validateFractionalFlows(g, cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node 1")
}

func TestValidateFractionalFlowsSkipsInactiveNodes(t *testing.T) {
	g, cat := fractionalFlowGraph(t, []float64{0.3, 0.7, 5.0})
	cat.FractionalFlow.Active[2] = false
	require.NoError(t, validateFractionalFlows(g, cat), "an inactive node's fraction must not count toward the predecessor's split")
}
