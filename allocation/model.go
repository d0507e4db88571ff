// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allocation

import (
	"github.com/cpmech/gosl/chk"
	"github.com/draffensperger/golp"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// ObjectiveKind selects exactly one of the four demand-term shapes;
// one is configured per Model and applies to all of its demands.
type ObjectiveKind int

const (
	QuadraticAbsolute ObjectiveKind = iota
	QuadraticRelative
	LinearAbsolute
	LinearRelative
)

// Model is one subnetwork's (or the main network's) allocation LP, rebuilt
// every priority within a solve.
type Model struct {
	Graph     *Graph
	Objective ObjectiveKind
	DtAlloc   float64 // Δt_allocation, seconds

	edgeVar      map[*CompositeEdge]int
	absVar       map[*CompositeEdge]int // F_abs_*, only for linear_* objectives
	basinInVar   map[graph.NodeID]int
	basinOutVar  map[graph.NodeID]int
	bufferInVar  map[graph.NodeID]int
	bufferOutVar map[graph.NodeID]int

	cat *node.Catalogue
}

// NewModel returns a Model ready to be solved priority by priority.
func NewModel(g *Graph, cat *node.Catalogue, objective ObjectiveKind, dtAlloc float64) *Model {
	return &Model{Graph: g, Objective: objective, DtAlloc: dtAlloc, cat: cat}
}

// PrioritySolution is the result of solving one priority level: the flow
// assigned to every allocation edge.
type PrioritySolution struct {
	Priority int
	EdgeFlow map[*CompositeEdge]float64
}

// Solve runs the ascending-priority loop for the priorities present in
// demands, returning one PrioritySolution per priority in ascending order.
// sourceFlow supplies the measured flow across this subnetwork's source
// edges at the start of the solve (used for the priority-1 source rhs);
// collectDemands, when true, treats sources as unconstrained (+Inf) so the
// solve only measures what the subnetwork would want, not what it can get.
func (m *Model) Solve(priorities []int, demand func(priority int, id graph.NodeID) float64, sourceFlow map[*CompositeEdge]float64, collectDemands bool) ([]PrioritySolution, error) {
	consumed := make(map[*CompositeEdge]float64, len(m.Graph.Edges))
	var out []PrioritySolution

	for idx, p := range priorities {
		lp, err := m.build(p, demand, sourceFlow, consumed, collectDemands, idx == 0)
		if err != nil {
			return nil, err
		}
		status := lp.Solve()
		if status != golp.OPTIMAL && status != golp.SUBOPTIMAL {
			return nil, chk.Err("allocation: subnetwork %d priority %d did not reach an optimal solution (status=%v)", m.Graph.SubnetworkID, p, status)
		}
		vals := lp.Variables()
		sol := PrioritySolution{Priority: p, EdgeFlow: make(map[*CompositeEdge]float64, len(m.Graph.Edges))}
		for e, vi := range m.edgeVar {
			q := vals[vi]
			sol.EdgeFlow[e] = q
			consumed[e] += q
		}
		out = append(out, sol)
	}
	return out, nil
}

// build constructs the LP for one priority: variables (edge flows, the
// basin-demand and flow-buffer in/out pairs, and the F_abs_* linearization
// variables a linear_* objective needs), capacity/source/demand-cap/
// conservation/fractional-flow/absolute-value constraints, and the
// objective.
func (m *Model) build(priority int, demand func(priority int, id graph.NodeID) float64, sourceFlow, consumed map[*CompositeEdge]float64, collectDemands, firstPriority bool) (*golp.LP, error) {
	edges := m.Graph.Edges
	needAbs := m.Objective == LinearAbsolute || m.Objective == LinearRelative

	inGraph := make(map[graph.NodeID]bool, len(m.Graph.Nodes))
	for _, id := range m.Graph.Nodes {
		inGraph[id] = true
	}
	levelDemandBasins := m.levelDemandBasins(inGraph)
	flowDemandNodes := m.flowDemandNodes(inGraph)

	var absEdges []*CompositeEdge
	if needAbs {
		for _, e := range edges {
			if node.Kind(e.B.Kind) == node.KindUserDemand && demand(priority, e.B) > 0 {
				absEdges = append(absEdges, e)
			}
		}
	}

	n := len(edges) + len(absEdges) + 2*len(levelDemandBasins) + 2*len(flowDemandNodes)
	lp := golp.NewLP(0, n)

	m.edgeVar = make(map[*CompositeEdge]int, len(edges))
	m.absVar = make(map[*CompositeEdge]int, len(absEdges))
	m.basinInVar = make(map[graph.NodeID]int, len(levelDemandBasins))
	m.basinOutVar = make(map[graph.NodeID]int, len(levelDemandBasins))
	m.bufferInVar = make(map[graph.NodeID]int, len(flowDemandNodes))
	m.bufferOutVar = make(map[graph.NodeID]int, len(flowDemandNodes))

	idx := 0
	for _, e := range edges {
		m.edgeVar[e] = idx
		lp.SetColName(idx, "F")
		lp.SetBounds(idx, 0, golp.Inf)
		idx++
	}
	for _, e := range absEdges {
		m.absVar[e] = idx
		lp.SetColName(idx, "F_abs")
		lp.SetBounds(idx, 0, golp.Inf)
		idx++
	}
	for _, id := range levelDemandBasins {
		m.basinInVar[id] = idx
		lp.SetColName(idx, "F_basin_in")
		lp.SetBounds(idx, 0, golp.Inf)
		idx++
		m.basinOutVar[id] = idx
		lp.SetColName(idx, "F_basin_out")
		lp.SetBounds(idx, 0, golp.Inf)
		idx++
	}
	for _, id := range flowDemandNodes {
		m.bufferInVar[id] = idx
		lp.SetColName(idx, "F_flow_buffer_in")
		lp.SetBounds(idx, 0, golp.Inf)
		idx++
		m.bufferOutVar[id] = idx
		lp.SetColName(idx, "F_flow_buffer_out")
		lp.SetBounds(idx, 0, golp.Inf)
		idx++
	}

	for _, e := range edges {
		i := m.edgeVar[e]
		cap_ := e.Capacity - consumed[e]
		if cap_ < 0 {
			cap_ = 0
		}
		if isSourceEdge(e) {
			rhs := cap_
			if collectDemands {
				rhs = golp.Inf
			} else if !firstPriority {
				rhs = cap_
			} else if sf, ok := sourceFlow[e]; ok {
				rhs = sf
			}
			addLE(lp, i, rhs)
		} else if e.Capacity < posInf {
			addLE(lp, i, cap_)
		}
		if node.Kind(e.B.Kind) == node.KindUserDemand {
			d := demand(priority, e.B)
			if d < 0 {
				d = 0
			}
			addLE(lp, i, d)
		}
	}

	for _, id := range levelDemandBasins {
		addLE(lp, m.basinOutVar[id], m.basinStorage(id)/m.DtAlloc)
	}
	for _, id := range flowDemandNodes {
		addLE(lp, m.bufferOutVar[id], chainCapacity(m.cat, id))
	}

	if err := m.addConservation(lp); err != nil {
		return nil, err
	}
	m.addFractionalFlowConstraints(lp)
	if needAbs {
		m.addAbsoluteValueConstraints(lp, n, priority, demand)
	}
	m.setObjective(lp, n, priority, demand)
	return lp, nil
}

// levelDemandBasins returns, in table order, the distinct basins within
// this subnetwork that an active LevelDemand references.
func (m *Model) levelDemandBasins(inGraph map[graph.NodeID]bool) []graph.NodeID {
	var out []graph.NodeID
	seen := map[graph.NodeID]bool{}
	for i, active := range m.cat.LevelDemand.Active {
		if !active {
			continue
		}
		for _, id := range m.cat.LevelDemand.Basins[i] {
			if inGraph[id] && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// flowDemandNodes returns, in table order, the distinct nodes within this
// subnetwork that an active FlowDemand attaches its buffer to.
func (m *Model) flowDemandNodes(inGraph map[graph.NodeID]bool) []graph.NodeID {
	var out []graph.NodeID
	seen := map[graph.NodeID]bool{}
	for i, active := range m.cat.FlowDemand.Active {
		if !active {
			continue
		}
		id := m.cat.FlowDemand.Node[i]
		if inGraph[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// basinStorage returns the current storage of basin id via its profile, or
// posInf if it has no profile (never bounds F_basin_out in that case).
func (m *Model) basinStorage(id graph.NodeID) float64 {
	idx := id.InternalIndex - 1
	p := m.cat.Basin.Profile[idx]
	if p == nil {
		return posInf
	}
	return p.LevelToStorage(m.cat.Basin.CurrentLevel[idx])
}

// isSourceEdge reports whether e originates outside the subnetwork (a
// boundary or the main-network link), the only edges whose rhs is driven by
// measured flow rather than a static capacity.
func isSourceEdge(e *CompositeEdge) bool {
	return node.Kind(e.A.Kind) == node.KindFlowBoundary || node.Kind(e.A.Kind) == node.KindLevelBoundary
}

// addLE adds the single-variable row `var <= rhs` to lp.
func addLE(lp *golp.LP, varIndex int, rhs float64) {
	row := make([]float64, lp.NumCols())
	row[varIndex] = 1
	lp.AddConstraint(row, golp.LE, rhs)
}

// addConservation adds one row per retained node that is neither a source
// nor a sink (boundaries, Terminal and UserDemand get none): sum of
// inflow edge variables (plus F_basin_in/F_flow_buffer_in, when present)
// equals sum of outflow edge variables (plus F_basin_out/F_flow_buffer_out).
func (m *Model) addConservation(lp *golp.LP) error {
	for _, id := range m.Graph.Nodes {
		if node.Kind(id.Kind) == node.KindFlowBoundary || node.Kind(id.Kind) == node.KindLevelBoundary || node.Kind(id.Kind) == node.KindTerminal || node.Kind(id.Kind) == node.KindUserDemand {
			continue
		}
		row := make([]float64, lp.NumCols())
		any := false
		for e, vi := range m.edgeVar {
			if e.A == id {
				row[vi] -= 1
				any = true
			}
			if e.B == id {
				row[vi] += 1
				any = true
			}
		}
		if vi, ok := m.basinInVar[id]; ok {
			row[vi] += 1
			any = true
		}
		if vi, ok := m.basinOutVar[id]; ok {
			row[vi] -= 1
			any = true
		}
		if vi, ok := m.bufferInVar[id]; ok {
			row[vi] += 1
			any = true
		}
		if vi, ok := m.bufferOutVar[id]; ok {
			row[vi] -= 1
			any = true
		}
		if any {
			lp.AddConstraint(row, golp.EQ, 0)
		}
	}
	return nil
}

// addFractionalFlowConstraints adds, for every composite edge that is the
// image edge of a FractionalFlow node, the inequality outflow <= fraction *
// inflow-to-predecessor.
func (m *Model) addFractionalFlowConstraints(lp *golp.LP) {
	for e, vi := range m.edgeVar {
		if e.FractionalFlowOf == nil {
			continue
		}
		row := make([]float64, lp.NumCols())
		row[vi] = 1
		for other, ovi := range m.edgeVar {
			if other.B == e.FractionalFlowOf.Predecessor {
				row[ovi] = -e.FractionalFlowOf.Fraction
			}
		}
		lp.AddConstraint(row, golp.LE, 0)
	}
}

// addAbsoluteValueConstraints linearizes F_abs >= |scale*(F[e]-d)| as the
// pair F_abs >= scale*(F[e]-d), F_abs >= -scale*(F[e]-d); scale is 1 for
// linear_absolute and 1/d for linear_relative.
func (m *Model) addAbsoluteValueConstraints(lp *golp.LP, n int, priority int, demand func(priority int, id graph.NodeID) float64) {
	for e, avi := range m.absVar {
		d := demand(priority, e.B)
		fi := m.edgeVar[e]
		scale := 1.0
		if m.Objective == LinearRelative {
			scale = 1.0 / d
		}
		row1 := make([]float64, n)
		row1[fi] = scale
		row1[avi] = -1
		lp.AddConstraint(row1, golp.LE, scale*d)

		row2 := make([]float64, n)
		row2[fi] = -scale
		row2[avi] = -1
		lp.AddConstraint(row2, golp.LE, -scale*d)
	}
}

// setObjective rebuilds the objective over this priority's demands: exactly
// one of quadratic-absolute, quadratic-relative, linear-absolute, or
// linear-relative is configured per Model (m.Objective). golp only minimizes a linear
// objective directly; the quadratic variants reward F[e] directly (driven
// to its demand cap by the demand-cap constraint added in build), while the
// linear variants minimize the F_abs_* distance-to-demand variable instead,
// preferring a direct, explicit formula over opaque QP machinery.
func (m *Model) setObjective(lp *golp.LP, n int, priority int, demand func(priority int, id graph.NodeID) float64) {
	obj := make([]float64, n)
	switch m.Objective {
	case QuadraticAbsolute, QuadraticRelative:
		for e, vi := range m.edgeVar {
			if node.Kind(e.B.Kind) != node.KindUserDemand {
				continue
			}
			d := demand(priority, e.B)
			if d <= 0 {
				continue
			}
			if m.Objective == QuadraticAbsolute {
				obj[vi] = -1
			} else {
				obj[vi] = -1 / d
			}
		}
	case LinearAbsolute, LinearRelative:
		for _, avi := range m.absVar {
			obj[avi] = 1
		}
	}
	lp.SetObjFn(obj)
	lp.SetMinimize()
}
