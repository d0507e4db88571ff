// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"math"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// writeBoth assigns q to both the in-edge and out-edge of a node with no
// storage of its own (LinearResistance, ManningResistance,
// TabulatedRatingCurve): with exactly one flow in-neighbor and
// one relevant flow out-neighbor, the node conserves flow instantaneously,
// so the same value belongs at both dense flow indices.
func writeBoth(buf *Buffer, inEdge, outEdge *graph.Edge, q float64) {
	if inEdge != nil && inEdge.FlowIndex >= 0 {
		buf.Q[inEdge.FlowIndex] = q
	}
	if outEdge != nil && outEdge.FlowIndex >= 0 {
		buf.Q[outEdge.FlowIndex] = q
	}
}

// LinearResistance evaluates q = clamp((h_a-h_b)/R, -Qmax, Qmax) then damps
// by the low-storage reduction factor on whichever basin side is currently
// outflowing.
func LinearResistance(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.LinearResistance
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindLinearResistance, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		outID, errOut := g.UniqueFlowOutNeighbor(id)
		if errIn != nil || errOut != nil {
			continue
		}
		ha, hb := Head(cat, inID, t), Head(cat, outID, t)
		q := Clamp((ha-hb)/tbl.Resistance[i], -tbl.MaxFlow[i], tbl.MaxFlow[i])
		q *= outflowReduction(cat, inID, outID, q)
		inEdge, _ := g.EdgeBetween(inID, id)
		outEdge, _ := g.EdgeBetween(id, outID)
		writeBoth(buf, inEdge, outEdge, q)
	}
}

// ManningResistance evaluates the trapezoidal Gauckler-Manning law with the
// arctangent-regularized magnitude term.
func ManningResistance(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.ManningResistance
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindManningResistance, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		outID, errOut := g.UniqueFlowOutNeighbor(id)
		if errIn != nil || errOut != nil {
			continue
		}
		ha, hb := Head(cat, inID, t), Head(cat, outID, t)
		deltaH := ha - hb
		depthA := ha - tbl.BottomA[i]
		depthB := hb - tbl.BottomB[i]
		area := 0.5 * (tbl.WettedArea(i, math.Max(0, depthA)) + tbl.WettedArea(i, math.Max(0, depthB)))
		perim := 0.5 * (tbl.WettedPerimeter(i, math.Max(0, depthA)) + tbl.WettedPerimeter(i, math.Max(0, depthB)))
		var q float64
		if perim > 0 && area > 0 && tbl.ManningN[i] > 0 {
			rh := area / perim
			mag := ManningRegularized(deltaH, tbl.Length[i])
			q = Sign(deltaH) * (1.0 / tbl.ManningN[i]) * area * math.Pow(rh, 2.0/3.0) * mag
		}
		q *= outflowReduction(cat, inID, outID, q)
		inEdge, _ := g.EdgeBetween(inID, id)
		outEdge, _ := g.EdgeBetween(id, outID)
		writeBoth(buf, inEdge, outEdge, q)
	}
}

// TabulatedRatingCurve evaluates q = table(h_upstream) * reduction factor;
// the table may have been swapped by the rating-curve update callback
// earlier in this instant.
func TabulatedRatingCurve(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.TabulatedRatingCurve
	for i := range tbl.ExternalID {
		if !tbl.Active[i] || tbl.Table[i] == nil {
			continue
		}
		id := node.ID(node.KindTabulatedRatingCurve, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		outID, errOut := g.UniqueFlowOutNeighbor(id)
		if errIn != nil || errOut != nil {
			continue
		}
		h := Head(cat, inID, t)
		q := tbl.Table[i].At(h)
		q *= Reduction(Storage(cat, inID), 10.0)
		inEdge, _ := g.EdgeBetween(inID, id)
		outEdge, _ := g.EdgeBetween(id, outID)
		writeBoth(buf, inEdge, outEdge, q)
	}
}

// FlowBoundary imposes q = rate(t) >= 0 on its outgoing edges.
func FlowBoundary(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.FlowBoundary
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindFlowBoundary, tbl.ExternalID[i], i+1)
		q := tbl.Rate[i].At(t)
		for _, e := range g.OutNeighbors(id, graph.EdgeFlow) {
			if e.FlowIndex >= 0 {
				buf.Q[e.FlowIndex] = q
			}
		}
	}
}

// Pump evaluates q = rate * reduction(source_storage, 10.0).
// The commanded rate itself may have been overwritten by PidControl on the
// previous step; PidControl runs again after this pass and, when it
// overwrites FlowRate, corrects du directly rather than through this
// buffer.
func Pump(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.Pump
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindPump, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		if errIn != nil {
			continue
		}
		q := tbl.FlowRate[i] * Reduction(Storage(cat, inID), 10.0)
		q = Clamp(q, tbl.MinFlowRate[i], tbl.MaxFlowRate[i])
		for _, out := range g.OutNeighbors(id, graph.EdgeFlow) {
			if out.FlowIndex >= 0 {
				buf.Q[out.FlowIndex] = q
			}
		}
		if inEdge, err := g.EdgeBetween(inID, id); err == nil && inEdge.FlowIndex >= 0 {
			buf.Q[inEdge.FlowIndex] = q
		}
	}
}

// Outlet evaluates q = rate * reduction(source_storage, 10.0) further
// damped by source-level-below-target and source-level-below-crest ramps.
func Outlet(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.Outlet
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindOutlet, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		if errIn != nil {
			continue
		}
		srcLevel := Head(cat, inID, t)
		q := tbl.FlowRate[i] * Reduction(Storage(cat, inID), 10.0)
		q *= Reduction(srcLevel-tbl.MinUpstreamLvl[i], 0.1)
		q *= Reduction(srcLevel-tbl.MinCrestLevel[i], 0.1)
		q = Clamp(q, tbl.MinFlowRate[i], tbl.MaxFlowRate[i])
		for _, out := range g.OutNeighbors(id, graph.EdgeFlow) {
			if out.FlowIndex >= 0 {
				buf.Q[out.FlowIndex] = q
			}
		}
		if inEdge, err := g.EdgeBetween(inID, id); err == nil && inEdge.FlowIndex >= 0 {
			buf.Q[inEdge.FlowIndex] = q
		}
	}
}

// UserDemand computes the effective abstraction q_in = min(allocated,
// demand) summed over priorities, damped by the source basin's low-storage
// and low-level factors, and the corresponding return flow on the outgoing
// edge: return = return_factor * abstraction. Loss is
// reported by the caller as a vertical flux, not written here.
func UserDemand(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.UserDemand
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindUserDemand, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		if errIn != nil {
			continue
		}
		srcLevel := Head(cat, inID, t)
		abstraction := tbl.EffectiveAbstraction(i, t)
		abstraction *= Reduction(Storage(cat, inID), 10.0)
		abstraction *= Reduction(srcLevel-tbl.MinLevel[i], 0.1)
		if inEdge, err := g.EdgeBetween(inID, id); err == nil && inEdge.FlowIndex >= 0 {
			buf.Q[inEdge.FlowIndex] = abstraction
		}
		ret := abstraction * tbl.ReturnFactor[i]
		for _, out := range g.OutNeighbors(id, graph.EdgeFlow) {
			if out.FlowIndex >= 0 {
				buf.Q[out.FlowIndex] = ret
			}
		}
	}
}

// FractionalFlow rescales the already-computed inflow from its unique
// predecessor: q_out = fraction * q_in. It runs after the
// upstream-flow-producing kinds so the predecessor's out-edge value is
// already final for this step.
func FractionalFlow(g *graph.Graph, cat *node.Catalogue, buf *Buffer, t float64) {
	tbl := cat.FractionalFlow
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindFractionalFlow, tbl.ExternalID[i], i+1)
		inID, errIn := g.UniqueFlowInNeighbor(id)
		if errIn != nil {
			continue
		}
		inEdge, err := g.EdgeBetween(inID, id)
		if err != nil || inEdge.FlowIndex < 0 {
			continue
		}
		qIn := buf.Q[inEdge.FlowIndex]
		qOut := tbl.Fraction[i] * qIn
		for _, out := range g.OutNeighbors(id, graph.EdgeFlow) {
			if out.FlowIndex >= 0 {
				buf.Q[out.FlowIndex] = qOut
			}
		}
	}
}

// LevelBoundary and Terminal are passive: they neither originate nor
// reshape flow, they only sink or source it at the edges already written
// by their neighbor's formulator. They appear in the fixed evaluation
// order only to fix their place in it, not because they compute anything.
func LevelBoundary(*graph.Graph, *node.Catalogue, *Buffer, float64) {}
func Terminal(*graph.Graph, *node.Catalogue, *Buffer, float64)      {}

// outflowReduction damps a resistance-style flow by the low-storage
// reduction factor on whichever endpoint is currently outflowing: if q>0
// water leaves inID, if q<0 it leaves outID.
func outflowReduction(cat *node.Catalogue, inID, outID graph.NodeID, q float64) float64 {
	if q >= 0 {
		return Reduction(Storage(cat, inID), 10.0)
	}
	return Reduction(Storage(cat, outID), 10.0)
}
