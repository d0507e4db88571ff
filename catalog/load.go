// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// Load reads every Node and Edge row from src and builds the Graph and
// Catalogue, plus a subnetwork membership map for every node whose Node
// row carries a non-null subnetwork_id (consumed by the allocation
// engine's per-subnetwork graph construction). Per-kind static/time table
// ingestion is left to the per-kind loaders in kindLoaders, which Load runs
// in the order they were appended.
func Load(src Catalog) (*graph.Graph, *node.Catalogue, map[graph.NodeID]int32, error) {
	nodes, err := src.Nodes()
	if err != nil {
		return nil, nil, nil, err
	}
	edges, err := src.Edges()
	if err != nil {
		return nil, nil, nil, err
	}

	g := graph.New()
	cat := node.NewCatalogue()
	counts := map[string]int{}
	ids := make(map[int32]graph.NodeID, len(nodes))
	subnetworks := make(map[graph.NodeID]int32)

	var errs MultiError
	for _, n := range nodes {
		kind, ok := kindByName[n.NodeType]
		if !ok {
			errs = append(errs, chk.Err("catalog: node %d has unknown node_type %q", n.FID, n.NodeType))
			continue
		}
		counts[n.NodeType]++
		id := node.ID(kind, n.FID, counts[n.NodeType])
		ids[n.FID] = id
		g.InsertNode(id)
		cat.Register(id)
		if n.SubnetworkID != nil {
			subnetworks[id] = *n.SubnetworkID
		}
	}
	if len(errs) > 0 {
		return nil, nil, nil, errs
	}

	allocateTables(cat, counts)

	for _, e := range edges {
		src, ok1 := ids[e.FromNodeID]
		dst, ok2 := ids[e.ToNodeID]
		if !ok1 || !ok2 {
			errs = append(errs, chk.Err("catalog: edge %d references an unknown node (%d -> %d)", e.FID, e.FromNodeID, e.ToNodeID))
			continue
		}
		kind := graph.EdgeFlow
		if e.EdgeType == "control" {
			kind = graph.EdgeControl
		}
		g.InsertEdge(e.FID, src, dst, kind)
	}
	if len(errs) > 0 {
		return nil, nil, nil, errs
	}

	if violations := node.ValidateAdjacency(g, cat.KindOf); len(violations) > 0 {
		errs = append(errs, violations...)
		return nil, nil, nil, errs
	}

	for _, loader := range kindLoaders {
		if err := loader(src, cat, ids); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, nil, nil, errs
	}

	if err := validateFractionalFlows(g, cat); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, nil, nil, errs
	}

	return g, cat, subnetworks, nil
}

// validateFractionalFlows groups every active FractionalFlow node by its
// unique flow predecessor and checks that the fractions leaving that
// predecessor sum to 1, catching a bad split at load time rather than
// letting it silently skew mass balance at every RHS evaluation.
func validateFractionalFlows(g *graph.Graph, cat *node.Catalogue) error {
	tbl := cat.FractionalFlow
	byPredecessor := map[graph.NodeID][]float64{}
	for i := range tbl.ExternalID {
		if !tbl.Active[i] {
			continue
		}
		id := node.ID(node.KindFractionalFlow, tbl.ExternalID[i], i+1)
		pred, err := g.UniqueFlowInNeighbor(id)
		if err != nil {
			continue
		}
		byPredecessor[pred] = append(byPredecessor[pred], tbl.Fraction[i])
	}
	var errs MultiError
	for pred, fractions := range byPredecessor {
		if err := node.ValidateFractionSum(fractions); err != nil {
			errs = append(errs, chk.Err("catalog: fractional flow successors of node %d: %v", pred.ExternalID, err))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// kindByName maps a Node table's node_type string to a node.Kind, the
// Catalog-facing analogue of fem's keycodes lookup.
var kindByName = map[string]node.Kind{
	"Basin":                 node.KindBasin,
	"LinearResistance":      node.KindLinearResistance,
	"ManningResistance":     node.KindManningResistance,
	"TabulatedRatingCurve":  node.KindTabulatedRatingCurve,
	"FractionalFlow":        node.KindFractionalFlow,
	"LevelBoundary":         node.KindLevelBoundary,
	"FlowBoundary":          node.KindFlowBoundary,
	"Pump":                  node.KindPump,
	"Outlet":                node.KindOutlet,
	"Terminal":              node.KindTerminal,
	"PidControl":            node.KindPidControl,
	"DiscreteControl":       node.KindDiscreteControl,
	"UserDemand":            node.KindUserDemand,
	"LevelDemand":           node.KindLevelDemand,
	"FlowDemand":            node.KindFlowDemand,
}

// allocateTables grows every per-kind table in cat to the count of nodes of
// that kind discovered in the Node table, replacing the zero-size
// placeholders NewCatalogue allocated.
func allocateTables(cat *node.Catalogue, counts map[string]int) {
	cat.Basin = node.NewBasins(counts["Basin"])
	cat.LinearResistance = node.NewLinearResistances(counts["LinearResistance"])
	cat.ManningResistance = node.NewManningResistances(counts["ManningResistance"])
	cat.TabulatedRatingCurve = node.NewTabulatedRatingCurves(counts["TabulatedRatingCurve"])
	cat.FractionalFlow = node.NewFractionalFlows(counts["FractionalFlow"])
	cat.LevelBoundary = node.NewLevelBoundaries(counts["LevelBoundary"])
	cat.FlowBoundary = node.NewFlowBoundaries(counts["FlowBoundary"])
	cat.Pump = node.NewPumps(counts["Pump"])
	cat.Outlet = node.NewOutlets(counts["Outlet"])
	cat.Terminal = node.NewTerminals(counts["Terminal"])
	cat.PidControl = node.NewPidControls(counts["PidControl"])
	cat.DiscreteControl = node.NewDiscreteControls(counts["DiscreteControl"])
	cat.UserDemand = node.NewUserDemands(counts["UserDemand"])
	cat.LevelDemand = node.NewLevelDemands(counts["LevelDemand"])
	cat.FlowDemand = node.NewFlowDemands(counts["FlowDemand"])
}

// kindLoader fills in one per-kind table's static/time parameters from the
// catalog's {Kind}Static/{Kind}Time rows.
type kindLoader func(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error

// kindLoaders is an ordered slice filled by init() in loaders.go, which
// keeps Load free of a type switch over every node kind.
var kindLoaders []kindLoader
