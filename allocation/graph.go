// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package allocation implements the periodic LP-based allocation engine:
// per-subnetwork allocation graph construction, the LP model (capacity,
// conservation, fractional-flow and absolute-value-linearization
// constraints), and the ascending-priority solve loop that feeds
// UserDemand.allocated back to the ODE.
package allocation

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// Direction restricts which way flow may travel on a composite edge, for
// node kinds that are inherently one-directional.
type Direction int

const (
	Bidirectional Direction = iota
	Forward                 // a -> b only
	Backward                // b -> a only
)

// CompositeEdge is one collapsed chain of non-retained nodes between two
// retained allocation-graph nodes, with an admissible direction and a
// capacity equal to the minimum max_flow_rate along the chain.
type CompositeEdge struct {
	A, B     graph.NodeID
	Capacity float64
	Dir      Direction
	// FractionalFlowOf, when non-nil, makes the LP add the fraction
	// constraint for this edge. Build does not set it, so the graphs it
	// returns carry no fraction constraints.
	FractionalFlowOf *fractionalFlowRef
}

type fractionalFlowRef struct {
	Fraction    float64
	Predecessor graph.NodeID
}

// Graph is one subnetwork's (or the main network's) reduced allocation
// graph: the retained nodes plus the composite edges between them.
type Graph struct {
	SubnetworkID int32
	Nodes        []graph.NodeID
	Edges        []*CompositeEdge
}

// isRetained reports whether a node kind is always kept in the allocation
// graph rather than collapsed into a composite-edge chain: UserDemand,
// Basin, Terminal, nodes that own or sink to a FractionalFlow chain, and
// nodes with an external flow demand.
func isRetained(cat *node.Catalogue, id graph.NodeID) bool {
	switch node.Kind(id.Kind) {
	case node.KindUserDemand, node.KindBasin, node.KindTerminal, node.KindFractionalFlow:
		return true
	case node.KindPump, node.KindOutlet:
		return hasFlowDemand(cat, id)
	}
	return false
}

func hasFlowDemand(cat *node.Catalogue, id graph.NodeID) bool {
	for _, n := range cat.FlowDemand.Node {
		if n == id {
			return true
		}
	}
	return false
}

// chainDirection derives the admissible direction of a single-node chain
// segment: Pump/Outlet/TabulatedRatingCurve/FractionalFlow forbid flow
// reversal; everything else (LinearResistance,
// ManningResistance) is bidirectional.
func chainDirection(k node.Kind) Direction {
	switch k {
	case node.KindPump, node.KindOutlet, node.KindTabulatedRatingCurve, node.KindFractionalFlow:
		return Forward
	}
	return Bidirectional
}

// chainCapacity returns the max_flow_rate of a single non-retained node, or
// +Inf when the kind imposes no hard cap (ManningResistance, rating curves).
func chainCapacity(cat *node.Catalogue, id graph.NodeID) float64 {
	idx := id.InternalIndex - 1
	switch node.Kind(id.Kind) {
	case node.KindPump:
		return cat.Pump.MaxFlowRate[idx]
	case node.KindOutlet:
		return cat.Outlet.MaxFlowRate[idx]
	case node.KindLinearResistance:
		return cat.LinearResistance.MaxFlow[idx]
	}
	return posInf
}

const posInf = 1e18

// Build constructs the reduced allocation graph of a subnetwork by BFS from
// its retained nodes, collapsing runs of non-retained nodes into
// CompositeEdges.
func Build(g *graph.Graph, cat *node.Catalogue, subnetworkID int32, members map[graph.NodeID]bool) (*Graph, error) {
	ag := &Graph{SubnetworkID: subnetworkID}
	for id := range members {
		if isRetained(cat, id) {
			ag.Nodes = append(ag.Nodes, id)
		}
	}
	seen := map[[2]graph.NodeID]bool{}
	for _, start := range ag.Nodes {
		for _, e := range g.OutNeighbors(start, graph.EdgeFlow) {
			if !members[e.Dst] {
				continue
			}
			end, cap_, dir, err := walkChain(g, cat, members, start, e.Dst)
			if err != nil {
				return nil, err
			}
			key := [2]graph.NodeID{start, end}
			if seen[key] {
				continue
			}
			seen[key] = true
			ag.Edges = append(ag.Edges, &CompositeEdge{A: start, B: end, Capacity: cap_, Dir: dir})
		}
	}
	return ag, nil
}

// walkChain follows a run of non-retained nodes from start (already
// retained) through next until it reaches the next retained node,
// accumulating the minimum capacity and narrowing the admissible direction.
func walkChain(g *graph.Graph, cat *node.Catalogue, members map[graph.NodeID]bool, start, next graph.NodeID) (graph.NodeID, float64, Direction, error) {
	capacity := posInf
	dir := Bidirectional
	cur := next
	for i := 0; i < len(members)+1; i++ {
		if isRetained(cat, cur) {
			return cur, capacity, dir, nil
		}
		if c := chainCapacity(cat, cur); c < capacity {
			capacity = c
		}
		if d := chainDirection(node.Kind(cur.Kind)); d != Bidirectional {
			dir = d
		}
		outs := g.OutNeighbors(cur, graph.EdgeFlow)
		if len(outs) != 1 {
			return graph.NodeID{}, 0, 0, chk.Err("allocation: node %v in a collapsed chain must have exactly one flow successor, has %d", cur, len(outs))
		}
		cur = outs[0].Dst
	}
	return graph.NodeID{}, 0, 0, chk.Err("allocation: chain from %v did not terminate at a retained node (cycle?)", start)
}
