// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph implements the typed directed multigraph of node-IDs
// described: nodes carry a kind and a dense per-kind index,
// edges carry a kind and are iterable per-neighbor in deterministic
// (insertion) order, bucketed by edge kind so that filtering by kind is
// O(degree) rather than a scan.
package graph

import (
	"github.com/cpmech/gosl/chk"
)

// Kind identifies the physical or control role of a node; see node.Kind for
// the concrete enumeration. The graph package only needs node kinds to be
// comparable small integers, so it is expressed here as an alias to avoid a
// cyclic import between graph and node.
type Kind int

// NodeID is a value triple (kind, external_id, internal_index). Two NodeIDs
// are equal iff all three fields match, so an ID rebuilt from a per-kind
// table must carry the same ExternalID and InternalIndex as the one
// inserted into the graph.
type NodeID struct {
	Kind           Kind
	ExternalID     int32
	InternalIndex  int // 1-based dense index into the node kind's arrays
}

// EdgeKind distinguishes flow edges, control edges, and the "none" kind used
// for expanded composite-edge bookkeeping.
type EdgeKind int

const (
	EdgeNone EdgeKind = iota
	EdgeFlow
	EdgeControl
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeFlow:
		return "flow"
	case EdgeControl:
		return "control"
	default:
		return "none"
	}
}

// Edge carries a stable id, endpoints, kind, optional subnetwork-source tag,
// an optional expanded node-id path for composite allocation edges, and a
// dense flow index assigned only to flow edges.
type Edge struct {
	ID              int32
	Src, Dst        NodeID
	Kind            EdgeKind
	SourceOfSubnet  int  // 0 means "not a source"
	ExpandedPath    []NodeID
	FlowIndex       int // -1 if not a flow edge
}

// DegreeViolation reports a violated in/out-degree bound for a node.
type DegreeViolation struct {
	Node     NodeID
	Kind     EdgeKind
	Want     string // e.g. "exactly one", "at least one", "zero"
	Got      int
}

func (e *DegreeViolation) Error() string {
	return chk.Err("degree violation: node %v expects %s %s flow neighbors, got %d", e.Node, e.Want, e.Kind, e.Got).Error()
}

// UnknownEdge is returned when an edge is looked up by endpoints that are
// not connected.
type UnknownEdge struct {
	Src, Dst NodeID
}

func (e *UnknownEdge) Error() string {
	return chk.Err("unknown edge: no edge from %v to %v", e.Src, e.Dst).Error()
}

// adjacency holds, per node, the outgoing and incoming edges bucketed by
// edge kind, in insertion order.
type adjacency struct {
	outFlow, inFlow       []*Edge
	outControl, inControl []*Edge
}

// Graph is the typed directed multigraph. It is built once at
// initialization (New, InsertNode, InsertEdge) and is structurally
// immutable thereafter; only scalar node/edge metadata mutates afterwards,
// owned by the node catalogue, not by Graph itself.
type Graph struct {
	nodes    map[NodeID]struct{}
	order    []NodeID // insertion order, for deterministic iteration elsewhere
	adj      map[NodeID]*adjacency
	edgeOf   map[[2]NodeID]*Edge // last edge wins on duplicate (src,dst) lookups
	allEdges []*Edge
	nextFlow int
}

// New returns an empty Graph ready for InsertNode/InsertEdge calls.
func New() *Graph {
	return &Graph{
		nodes:  make(map[NodeID]struct{}),
		adj:    make(map[NodeID]*adjacency),
		edgeOf: make(map[[2]NodeID]*Edge),
	}
}

// InsertNode registers a node id. Re-inserting the same id is a no-op.
func (g *Graph) InsertNode(id NodeID) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
	g.order = append(g.order, id)
	g.adj[id] = &adjacency{}
}

// InsertEdge adds a directed edge of the given kind between two already
// inserted nodes. Flow edges are assigned the next dense flow index.
func (g *Graph) InsertEdge(id int32, src, dst NodeID, kind EdgeKind) *Edge {
	e := &Edge{ID: id, Src: src, Dst: dst, Kind: kind, FlowIndex: -1}
	if kind == EdgeFlow {
		e.FlowIndex = g.nextFlow
		g.nextFlow++
	}
	g.allEdges = append(g.allEdges, e)
	g.edgeOf[[2]NodeID{src, dst}] = e
	sa, da := g.adj[src], g.adj[dst]
	switch kind {
	case EdgeFlow:
		sa.outFlow = append(sa.outFlow, e)
		da.inFlow = append(da.inFlow, e)
	case EdgeControl:
		sa.outControl = append(sa.outControl, e)
		da.inControl = append(da.inControl, e)
	}
	return e
}

// NumFlowEdges returns the number of flow edges inserted so far; this is
// the required length of the edge-indexed flow buffer.
func (g *Graph) NumFlowEdges() int { return g.nextFlow }

// Nodes returns all node ids in insertion order.
func (g *Graph) Nodes() []NodeID { return g.order }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.allEdges }

// OutNeighbors returns the out-neighbor edges of id restricted to kind, in
// insertion order.
func (g *Graph) OutNeighbors(id NodeID, kind EdgeKind) []*Edge {
	a := g.adj[id]
	if a == nil {
		return nil
	}
	if kind == EdgeFlow {
		return a.outFlow
	}
	return a.outControl
}

// InNeighbors returns the in-neighbor edges of id restricted to kind, in
// insertion order.
func (g *Graph) InNeighbors(id NodeID, kind EdgeKind) []*Edge {
	a := g.adj[id]
	if a == nil {
		return nil
	}
	if kind == EdgeFlow {
		return a.inFlow
	}
	return a.inControl
}

// EdgeBetween looks up the edge from src to dst, or returns UnknownEdge.
func (g *Graph) EdgeBetween(src, dst NodeID) (*Edge, error) {
	if e, ok := g.edgeOf[[2]NodeID{src, dst}]; ok {
		return e, nil
	}
	return nil, &UnknownEdge{Src: src, Dst: dst}
}

// UniqueFlowOutNeighbor returns the single flow out-neighbor of id, failing
// with DegreeViolation if the count is not exactly one.
func (g *Graph) UniqueFlowOutNeighbor(id NodeID) (NodeID, error) {
	edges := g.OutNeighbors(id, EdgeFlow)
	if len(edges) != 1 {
		return NodeID{}, &DegreeViolation{Node: id, Kind: EdgeFlow, Want: "exactly one", Got: len(edges)}
	}
	return edges[0].Dst, nil
}

// UniqueFlowInNeighbor returns the single flow in-neighbor of id, failing
// with DegreeViolation if the count is not exactly one.
func (g *Graph) UniqueFlowInNeighbor(id NodeID) (NodeID, error) {
	edges := g.InNeighbors(id, EdgeFlow)
	if len(edges) != 1 {
		return NodeID{}, &DegreeViolation{Node: id, Kind: EdgeFlow, Want: "exactly one", Got: len(edges)}
	}
	return edges[0].Src, nil
}
