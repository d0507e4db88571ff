// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allocation

import (
	"sort"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// Record is one appended allocation event: (t, subnetwork_id, user_node_id,
// priority, demand, allocated, abstracted).
type Record struct {
	Time         float64
	SubnetworkID int32
	UserNodeID   int32
	Priority     int
	Demand       float64
	Allocated    float64
	Abstracted   float64
}

// Engine drives the periodic allocation callback across every subnetwork
// plus the main network: a "collect demands" pass runs first, then the
// main network solve, then each subnetwork solve.
type Engine struct {
	Cat         *node.Catalogue
	Main        *Model
	Subnetworks []*Model
	DtAlloc     float64
	Records     []Record
}

// Run executes one allocation solve at time t: demand collection on every
// subnetwork, the main network LP, then every subnetwork LP, writing
// results into UserDemand.Allocated and appending Records.
func (e *Engine) Run(t float64) error {
	priorities := e.priorities()
	demand := func(priority int, id graph.NodeID) float64 { return e.demandOf(priority, id, t) }

	for _, sub := range e.Subnetworks {
		if _, err := sub.Solve(priorities, demand, nil, true); err != nil {
			return err
		}
	}

	mainSolutions, err := e.Main.Solve(priorities, demand, nil, false)
	if err != nil {
		return err
	}
	e.record(t, e.Main, mainSolutions)

	for _, sub := range e.Subnetworks {
		solutions, err := sub.Solve(priorities, demand, nil, false)
		if err != nil {
			return err
		}
		e.record(t, sub, solutions)
	}
	return nil
}

// priorities collects every distinct priority referenced by any
// UserDemand, LevelDemand or FlowDemand, ascending, so callers can solve
// priority_idx = 1..P in ascending order.
func (e *Engine) priorities() []int {
	set := map[int]bool{}
	for _, ps := range e.Cat.UserDemand.Priorities {
		for _, p := range ps {
			set[p] = true
		}
	}
	for _, p := range e.Cat.LevelDemand.Priority {
		set[p] = true
	}
	for _, p := range e.Cat.FlowDemand.Priority {
		set[p] = true
	}
	out := make([]int, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// demandOf returns a UserDemand's demand at priority sampled at time t, 0
// if it has none at that priority.
func (e *Engine) demandOf(priority int, id graph.NodeID, t float64) float64 {
	if node.Kind(id.Kind) != node.KindUserDemand {
		return 0
	}
	idx := id.InternalIndex - 1
	for k, p := range e.Cat.UserDemand.Priorities[idx] {
		if p == priority {
			return e.Cat.UserDemand.DemandItp[idx][k].At(t)
		}
	}
	return 0
}

// record assigns F[e] for each UserDemand edge into Allocated[priority] and
// appends a Record for it.
func (e *Engine) record(t float64, m *Model, solutions []PrioritySolution) {
	for _, sol := range solutions {
		for edge, q := range sol.EdgeFlow {
			if node.Kind(edge.B.Kind) != node.KindUserDemand {
				continue
			}
			idx := edge.B.InternalIndex - 1
			for k, p := range e.Cat.UserDemand.Priorities[idx] {
				if p == sol.Priority {
					e.Cat.UserDemand.Allocated[idx][k] = q
				}
			}
			e.Records = append(e.Records, Record{
				Time:         t,
				SubnetworkID: m.Graph.SubnetworkID,
				UserNodeID:   edge.B.ExternalID,
				Priority:     sol.Priority,
				Demand:       e.demandOf(sol.Priority, edge.B, t),
				Allocated:    q,
			})
		}
	}
}
