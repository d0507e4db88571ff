// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/hydrocore/ribasim/graph"

// Catalogue aggregates every per-kind table. It is built
// once by the catalog loader and is immutable in structure thereafter: only
// the scalar interior fields of each per-kind table mutate during a run.
type Catalogue struct {
	Basin                 *Basins
	LinearResistance      *LinearResistances
	ManningResistance     *ManningResistances
	TabulatedRatingCurve  *TabulatedRatingCurves
	FractionalFlow        *FractionalFlows
	LevelBoundary         *LevelBoundaries
	FlowBoundary          *FlowBoundaries
	Pump                  *Pumps
	Outlet                *Outlets
	Terminal              *Terminals
	PidControl            *PidControls
	DiscreteControl       *DiscreteControls
	UserDemand            *UserDemands
	LevelDemand           *LevelDemands
	FlowDemand            *FlowDemands

	kindOf map[graph.NodeID]Kind
}

// NewCatalogue returns an empty Catalogue with every per-kind table
// allocated to size 0; catalog.Load replaces each table with one sized to
// that kind's node count once all NodeIDs are known.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		Basin:                NewBasins(0),
		LinearResistance:     NewLinearResistances(0),
		ManningResistance:    NewManningResistances(0),
		TabulatedRatingCurve: NewTabulatedRatingCurves(0),
		FractionalFlow:       NewFractionalFlows(0),
		LevelBoundary:        NewLevelBoundaries(0),
		FlowBoundary:         NewFlowBoundaries(0),
		Pump:                 NewPumps(0),
		Outlet:               NewOutlets(0),
		Terminal:             NewTerminals(0),
		PidControl:           NewPidControls(0),
		DiscreteControl:      NewDiscreteControls(0),
		UserDemand:           NewUserDemands(0),
		LevelDemand:          NewLevelDemands(0),
		FlowDemand:           NewFlowDemands(0),
		kindOf:               make(map[graph.NodeID]Kind),
	}
}

// Register records the kind of a constructed NodeID so KindOf can answer
// graph-validation and dispatch queries in O(1).
func (c *Catalogue) Register(id graph.NodeID) {
	c.kindOf[id] = Kind(id.Kind)
}

// KindOf returns the kind of id; used as the kindOf callback of
// ValidateAdjacency and by flow-law dispatch.
func (c *Catalogue) KindOf(id graph.NodeID) Kind {
	return c.kindOf[id]
}

// NumBasins, NumPid are the two counts the state vector layout needs.
func (c *Catalogue) NumBasins() int { return len(c.Basin.ExternalID) }
func (c *Catalogue) NumPid() int    { return len(c.PidControl.ExternalID) }

// ApplyControlState looks up id's control_mapping entry for state in its
// per-kind table and applies it atomically: active flags overwritten,
// scalar parameters assigned, and interpolant parameters replaced. It
// reports whether an entry for state was found and applied; a node whose
// kind has no control mapping, or whose mapping has no entry for state, is
// left untouched, matching nodes not named by a particular control state.
func (c *Catalogue) ApplyControlState(id graph.NodeID, state string) bool {
	idx := id.InternalIndex - 1
	switch Kind(id.Kind) {
	case KindLinearResistance:
		return applyMapping(c.LinearResistance.ControlMapping, idx, state, func(v bool) { c.LinearResistance.Active[idx] = v })
	case KindManningResistance:
		return applyMapping(c.ManningResistance.ControlMapping, idx, state, func(v bool) { c.ManningResistance.Active[idx] = v })
	case KindTabulatedRatingCurve:
		return applyMapping(c.TabulatedRatingCurve.ControlMapping, idx, state, func(v bool) { c.TabulatedRatingCurve.Active[idx] = v })
	case KindFractionalFlow:
		return applyMapping(c.FractionalFlow.ControlMapping, idx, state, func(v bool) { c.FractionalFlow.Active[idx] = v })
	case KindPump:
		return applyMapping(c.Pump.ControlMapping, idx, state, func(v bool) { c.Pump.Active[idx] = v })
	case KindOutlet:
		return applyMapping(c.Outlet.ControlMapping, idx, state, func(v bool) { c.Outlet.Active[idx] = v })
	case KindPidControl:
		return applyMapping(c.PidControl.ControlMapping, idx, state, func(v bool) { c.PidControl.Active[idx] = v })
	default:
		return false
	}
}

// applyMapping is the shared lookup-and-apply step ApplyControlState uses
// for every per-kind ControlMapping table.
func applyMapping(mapping []map[string]ScalarUpdate, idx int, state string, setActive func(bool)) bool {
	if idx < 0 || idx >= len(mapping) || mapping[idx] == nil {
		return false
	}
	update, ok := mapping[idx][state]
	if !ok {
		return false
	}
	update.Apply(setActive)
	return true
}
