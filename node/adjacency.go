// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hydrocore/ribasim/graph"
)

// allowedFlowDst is the closed (kind_src, kind_dst) adjacency table for flow
// edges,
var allowedFlowDst = map[Kind]map[Kind]bool{
	KindBasin: set(KindLinearResistance, KindManningResistance, KindTabulatedRatingCurve,
		KindPump, KindOutlet, KindUserDemand),
	KindLinearResistance:     set(KindBasin, KindLevelBoundary),
	KindManningResistance:    set(KindBasin, KindLevelBoundary),
	KindTabulatedRatingCurve: set(KindBasin, KindFractionalFlow, KindTerminal, KindLevelBoundary),
	KindFractionalFlow:       set(KindBasin, KindTerminal, KindLevelBoundary, KindUserDemand),
	KindLevelBoundary:        set(KindLinearResistance, KindManningResistance, KindTabulatedRatingCurve, KindPump, KindOutlet),
	KindFlowBoundary:         set(KindBasin, KindLevelBoundary),
	KindPump:                 set(KindBasin, KindFractionalFlow, KindTerminal, KindLevelBoundary),
	KindOutlet:               set(KindBasin, KindFractionalFlow, KindTerminal, KindLevelBoundary),
	KindUserDemand:           set(KindBasin, KindLevelBoundary, KindTerminal),
}

func set(ks ...Kind) map[Kind]bool {
	m := make(map[Kind]bool, len(ks))
	for _, k := range ks {
		m[k] = true
	}
	return m
}

// degreeBound describes an in/out flow-degree requirement for a kind.
type degreeBound struct {
	exactlyOneIn, exactlyOneOut bool
	atLeastOneOut               bool
	zeroIn, zeroOut             bool
}

var degreeBounds = map[Kind]degreeBound{
	KindPump:                 {exactlyOneIn: true, atLeastOneOut: true},
	KindOutlet:               {exactlyOneIn: true, atLeastOneOut: true},
	KindLinearResistance:     {exactlyOneIn: true, atLeastOneOut: true},
	KindManningResistance:    {exactlyOneIn: true, atLeastOneOut: true},
	KindTabulatedRatingCurve: {exactlyOneIn: true, atLeastOneOut: true},
	KindFractionalFlow:       {exactlyOneIn: true, exactlyOneOut: true},
	KindUserDemand:           {exactlyOneIn: true, atLeastOneOut: true},
	KindFlowBoundary:         {zeroIn: true},
	KindTerminal:             {zeroOut: true},
}

// ValidateAdjacency checks every flow edge against the closed adjacency
// table and every node against its in/out flow-degree bound. All violations
// are collected.
func ValidateAdjacency(g *graph.Graph, kindOf func(graph.NodeID) Kind) []error {
	var errs []error
	for _, e := range g.Edges() {
		if e.Kind != graph.EdgeFlow {
			continue
		}
		sk, dk := kindOf(e.Src), kindOf(e.Dst)
		allowed := allowedFlowDst[sk]
		if allowed == nil || !allowed[dk] {
			errs = append(errs, chk.Err("edge-kind adjacency violation: flow edge %d: %s -> %s is not permitted", e.ID, sk, dk))
		}
	}
	for _, id := range g.Nodes() {
		k := kindOf(id)
		b, ok := degreeBounds[k]
		if !ok {
			continue
		}
		nIn := len(g.InNeighbors(id, graph.EdgeFlow))
		nOut := len(g.OutNeighbors(id, graph.EdgeFlow))
		if b.exactlyOneIn && nIn != 1 {
			errs = append(errs, &graph.DegreeViolation{Node: id, Kind: graph.EdgeFlow, Want: "exactly one in-neighbor", Got: nIn})
		}
		if b.exactlyOneOut && nOut != 1 {
			errs = append(errs, &graph.DegreeViolation{Node: id, Kind: graph.EdgeFlow, Want: "exactly one out-neighbor", Got: nOut})
		}
		if b.atLeastOneOut && nOut < 1 {
			errs = append(errs, &graph.DegreeViolation{Node: id, Kind: graph.EdgeFlow, Want: "at least one out-neighbor", Got: nOut})
		}
		if b.zeroIn && nIn != 0 {
			errs = append(errs, &graph.DegreeViolation{Node: id, Kind: graph.EdgeFlow, Want: "zero in-neighbors", Got: nIn})
		}
		if b.zeroOut && nOut != 0 {
			errs = append(errs, &graph.DegreeViolation{Node: id, Kind: graph.EdgeFlow, Want: "zero out-neighbors", Got: nOut})
		}
	}
	return errs
}
