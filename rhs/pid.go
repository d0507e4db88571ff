// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rhs

import (
	"github.com/hydrocore/ribasim/flow"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// applyPidControl runs every active PidControl node last, after every flow
// formulator: it computes the error against the (possibly interpolant-swapped)
// target, evaluates the PID rate, overwrites the controlled Pump or Outlet's
// FlowRate and flow-buffer entry, and corrects du for the delta between the
// rate the earlier formulator pass assumed and the rate PID actually wants,
// since that earlier pass ran on the previous step's commanded rate.
func (s *System) applyPidControl(du []float64, u []float64, t float64) {
	tbl := s.Cat.PidControl
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		listen := tbl.Listen[i]
		controlled := tbl.Controlled[i]

		target := tbl.Target[i].At(t)
		level := flow.Head(s.Cat, listen, t)
		errVal := target - level

		listenArea := s.listenArea(listen)
		dListenDt := s.listenDerivative(listen, du)
		dTargetDt := s.targetDerivative(i, target, t)

		in := flow.PidInputs{
			Error:      errVal,
			Integral:   u[s.Cat.NumBasins()+i],
			ListenArea: listenArea,
			DListenDt:  dListenDt,
			DTargetDt:  dTargetDt,
		}
		result := flow.Evaluate(s.Cat, i, in)

		s.correctDu(du, controlled, result.Rate)

		// dIntegral/dt = error, accumulated in the packed integral slot.
		du[s.Cat.NumBasins()+i] = errVal

		s.prevListenLevel[i] = level
		s.prevTarget[i] = target
	}
}

// listenArea returns the basin area backing the listen node, or 0 for a
// LevelBoundary (which has no storage and so no derivative feedback term).
func (s *System) listenArea(listen graph.NodeID) float64 {
	if node.Kind(listen.Kind) != node.KindBasin {
		return 0
	}
	return s.Cat.Basin.CurrentArea[listen.InternalIndex-1]
}

// listenDerivative returns dS/dt already assembled into du for the listen
// basin by the flow-formulator pass preceding PID, or 0 for a boundary.
func (s *System) listenDerivative(listen graph.NodeID, du []float64) float64 {
	if node.Kind(listen.Kind) != node.KindBasin {
		return 0
	}
	return du[listen.InternalIndex-1]
}

// targetDerivative approximates dTarget/dt via backward difference against
// the previous evaluation's sampled target, falling back to 0 on the first
// call of a run or a repeated/backward time (RHS may be re-evaluated at the
// same or an earlier t by the integrator's internal stages).
func (s *System) targetDerivative(i int, target, t float64) float64 {
	if !s.havePrev || t <= s.prevTime {
		return 0
	}
	prev, ok := s.prevTarget[i]
	if !ok {
		return 0
	}
	return (target - prev) / (t - s.prevTime)
}

// correctDu replaces the controlled node's flow-buffer contribution, written
// by the Pump/Outlet formulator earlier this evaluation using the previous
// step's commanded rate, with the freshly computed PID rate: it subtracts
// the delta from the upstream basin and adds it to every downstream basin,
// then updates the buffer entries so later consumers (output, allocation
// feedback) see the corrected value.
func (s *System) correctDu(du []float64, controlled graph.NodeID, rate float64) {
	if node.Kind(controlled.Kind) != node.KindPump && node.Kind(controlled.Kind) != node.KindOutlet {
		return
	}
	g := s.Graph
	inID, errIn := g.UniqueFlowInNeighbor(controlled)
	if errIn == nil {
		if inEdge, err := g.EdgeBetween(inID, controlled); err == nil && inEdge.FlowIndex >= 0 {
			old := s.Buf.Q[inEdge.FlowIndex]
			delta := rate - old
			if node.Kind(inID.Kind) == node.KindBasin {
				du[inID.InternalIndex-1] -= delta
			}
			s.Buf.Q[inEdge.FlowIndex] = rate
		}
	}
	for _, e := range g.OutNeighbors(controlled, graph.EdgeFlow) {
		if e.FlowIndex < 0 {
			continue
		}
		old := s.Buf.Q[e.FlowIndex]
		delta := rate - old
		if node.Kind(e.Dst.Kind) == node.KindBasin {
			du[e.Dst.InternalIndex-1] += delta
		}
		s.Buf.Q[e.FlowIndex] = rate
	}
}
