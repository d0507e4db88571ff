// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rhs assembles dS/dt from the edge-indexed flow buffer plus
// vertical fluxes and supplies the sparse Jacobian
// prototype derived from graph topology. It is the single `rhs(du, u, p, t)`
// function the pluggable Integrator calls every evaluation.
package rhs

import (
	"github.com/cpmech/gosl/la"
	"github.com/hydrocore/ribasim/flow"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// System bundles everything the RHS needs to evaluate: the graph, node
// catalogue, a reusable flow buffer, and the cached previous-step listen
// levels/targets PidControl needs for its derivative term.
type System struct {
	Graph *graph.Graph
	Cat   *node.Catalogue
	Buf   *flow.Buffer

	prevListenLevel map[int]float64 // pid index -> previous level(listen)
	prevTarget      map[int]float64 // pid index -> previous target(t)
	prevTime        float64
	havePrev        bool
}

// NewSystem allocates a System sized from the catalogue and graph.
func NewSystem(g *graph.Graph, cat *node.Catalogue) *System {
	return &System{
		Graph:           g,
		Cat:             cat,
		Buf:             flow.NewBuffer(g.NumFlowEdges(), cat.NumBasins()),
		prevListenLevel: make(map[int]float64),
		prevTarget:      make(map[int]float64),
	}
}

// Eval implements rhs(du, u, p, t): steps 1-6.
func (s *System) Eval(du []float64, u []float64, t float64) {
	for i := range du {
		du[i] = 0
	}
	s.Buf.Zero()

	cat := s.Cat
	nBasin := cat.NumBasins()

	// step 2: refresh level/area caches from storage, and forcing from its
	// time tables; forcing is resampled at every evaluation rather than on
	// a discrete callback tick since the underlying interpolants are cheap
	// and the integrator already calls Eval at adaptive internal stages.
	for i := 0; i < nBasin; i++ {
		cat.Basin.RefreshLevelArea(i, u[i])
		cat.Basin.RefreshForcing(i, t)
	}

	// step 3: vertical fluxes
	for i := 0; i < nBasin; i++ {
		net := cat.Basin.VerticalFlux(i, flow.Reduction)
		du[i] += net
		s.Buf.SelfEdge[i] = net
	}

	// step 4: fixed-order flow formulators
	flow.LinearResistance(s.Graph, cat, s.Buf, t)
	flow.ManningResistance(s.Graph, cat, s.Buf, t)
	flow.TabulatedRatingCurve(s.Graph, cat, s.Buf, t)
	flow.FlowBoundary(s.Graph, cat, s.Buf, t)
	flow.Pump(s.Graph, cat, s.Buf, t)
	flow.Outlet(s.Graph, cat, s.Buf, t)
	flow.UserDemand(s.Graph, cat, s.Buf, t)
	flow.FractionalFlow(s.Graph, cat, s.Buf, t)
	flow.LevelBoundary(s.Graph, cat, s.Buf, t)
	flow.Terminal(s.Graph, cat, s.Buf, t)

	// UserDemand loss (1-return_factor)*abstraction is a vertical flux, not
	// a flow-buffer edge; apply it directly to du here since it has no
	// edge to ride on.
	s.applyUserDemandLoss(du, t)

	// step 5: assemble du from the flow buffer
	for _, e := range s.Graph.Edges() {
		if e.Kind != graph.EdgeFlow || e.FlowIndex < 0 {
			continue
		}
		q := s.Buf.Q[e.FlowIndex]
		if node.Kind(e.Src.Kind) == node.KindBasin {
			du[e.Src.InternalIndex-1] -= q
		}
		if node.Kind(e.Dst.Kind) == node.KindBasin {
			du[e.Dst.InternalIndex-1] += q
		}
	}

	// step 6: PID control, run last; writes flow rates and corrects du for
	// the controlled and listen basins directly.
	s.applyPidControl(du, u, t)

	s.prevTime = t
	s.havePrev = true
}

// applyUserDemandLoss adds -(1-return_factor)*abstraction to the source
// basin's derivative,
func (s *System) applyUserDemandLoss(du []float64, t float64) {
	tbl := s.Cat.UserDemand
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindUserDemand, tbl.ExternalID[i], i+1)
		inID, err := s.Graph.UniqueFlowInNeighbor(id)
		if err != nil || node.Kind(inID.Kind) != node.KindBasin {
			continue
		}
		inEdge, err := s.Graph.EdgeBetween(inID, id)
		if err != nil || inEdge.FlowIndex < 0 {
			continue
		}
		abstraction := s.Buf.Q[inEdge.FlowIndex]
		loss := (1 - tbl.ReturnFactor[i]) * abstraction
		du[inID.InternalIndex-1] -= loss
	}
}

// JacobianPrototype builds the sparse Jacobian prototype once from graph
// topology: for each basin i, mark (i,j) where j is a basin
// reachable within two flow hops (possibly through a FractionalFlow), plus
// the diagonal; for PID, bidirectional links between its integral row and
// every basin connected to the controlled node.
func (s *System) JacobianPrototype() *la.Triplet {
	cat := s.Cat
	n := cat.NumBasins() + cat.NumPid()
	trip := new(la.Triplet)
	trip.Init(n, n, n*8)
	mark := func(i, j int) { trip.Put(i, j, 1) }

	for i := 0; i < cat.NumBasins(); i++ {
		mark(i, i)
		id := node.ID(node.KindBasin, cat.Basin.ExternalID[i], i+1)
		for _, j := range basinsWithinTwoHops(s.Graph, id) {
			mark(i, j.InternalIndex-1)
		}
	}

	for p := 0; p < cat.NumPid(); p++ {
		row := cat.NumBasins() + p
		mark(row, row)
		controlled := cat.PidControl.Controlled[p]
		for _, b := range basinsAdjacentTo(s.Graph, controlled) {
			mark(row, b.InternalIndex-1)
			mark(b.InternalIndex-1, row)
		}
	}
	return trip
}

// basinsWithinTwoHops returns every Basin node reachable from id within two
// flow hops in either direction (so a resistance or a FractionalFlow chain
// between two basins links them in the prototype).
func basinsWithinTwoHops(g *graph.Graph, id graph.NodeID) []graph.NodeID {
	seen := map[graph.NodeID]bool{}
	var out []graph.NodeID
	frontier := []graph.NodeID{id}
	for hop := 0; hop < 2; hop++ {
		var next []graph.NodeID
		for _, n := range frontier {
			for _, e := range g.OutNeighbors(n, graph.EdgeFlow) {
				next = append(next, e.Dst)
			}
			for _, e := range g.InNeighbors(n, graph.EdgeFlow) {
				next = append(next, e.Src)
			}
		}
		for _, n := range next {
			if node.Kind(n.Kind) == node.KindBasin && n != id && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
		frontier = next
	}
	return out
}

// basinsAdjacentTo returns every Basin directly connected (in or out) to id.
func basinsAdjacentTo(g *graph.Graph, id graph.NodeID) []graph.NodeID {
	var out []graph.NodeID
	for _, e := range g.OutNeighbors(id, graph.EdgeFlow) {
		if node.Kind(e.Dst.Kind) == node.KindBasin {
			out = append(out, e.Dst)
		}
	}
	for _, e := range g.InNeighbors(id, graph.EdgeFlow) {
		if node.Kind(e.Src.Kind) == node.KindBasin {
			out = append(out, e.Src)
		}
	}
	return out
}
