// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/hydrocore/ribasim/allocation"
	"github.com/hydrocore/ribasim/config"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// buildAllocationEngine groups nodes by subnetwork_id, builds one
// allocation.Model per subnetwork plus a main-network model over every
// node that carries no subnetwork_id, and assembles them into an
// allocation.Engine.
func buildAllocationEngine(g *graph.Graph, cat *node.Catalogue, subnetworkOf map[graph.NodeID]int32, cfg *config.Config) (*allocation.Engine, error) {
	objective, err := parseObjective(cfg.Allocation.ObjectiveType)
	if err != nil {
		return nil, err
	}

	members := map[int32]map[graph.NodeID]bool{}
	mainMembers := map[graph.NodeID]bool{}
	for _, id := range g.Nodes() {
		if sub, ok := subnetworkOf[id]; ok {
			if members[sub] == nil {
				members[sub] = map[graph.NodeID]bool{}
			}
			members[sub][id] = true
		} else {
			mainMembers[id] = true
		}
	}

	mainGraph, err := allocation.Build(g, cat, 0, mainMembers)
	if err != nil {
		return nil, chk.Err("engine: building main allocation graph: %v", err)
	}
	main := allocation.NewModel(mainGraph, cat, objective, cfg.Allocation.Timestep)

	var ids []int32
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var subs []*allocation.Model
	for _, id := range ids {
		ag, err := allocation.Build(g, cat, id, members[id])
		if err != nil {
			return nil, chk.Err("engine: building allocation graph for subnetwork %d: %v", id, err)
		}
		subs = append(subs, allocation.NewModel(ag, cat, objective, cfg.Allocation.Timestep))
	}

	return &allocation.Engine{
		Cat:         cat,
		Main:        main,
		Subnetworks: subs,
		DtAlloc:     cfg.Allocation.Timestep,
	}, nil
}

func parseObjective(s string) (allocation.ObjectiveKind, error) {
	switch s {
	case "", "quadratic_absolute":
		return allocation.QuadraticAbsolute, nil
	case "quadratic_relative":
		return allocation.QuadraticRelative, nil
	case "linear_absolute":
		return allocation.LinearAbsolute, nil
	case "linear_relative":
		return allocation.LinearRelative, nil
	default:
		return 0, chk.Err("engine: unknown allocation objective_type %q", s)
	}
}
