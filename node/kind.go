// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node implements the node catalogue: one record-of-arrays per
// node kind, each with static parameters, optional time-series
// interpolants, and a control-state -> parameter map.
package node

import "github.com/hydrocore/ribasim/graph"

// Kind enumerates the node kinds the catalogue supports.
type Kind int

const (
	KindBasin Kind = iota
	KindLinearResistance
	KindManningResistance
	KindTabulatedRatingCurve
	KindFractionalFlow
	KindLevelBoundary
	KindFlowBoundary
	KindPump
	KindOutlet
	KindTerminal
	KindPidControl
	KindDiscreteControl
	KindUserDemand
	KindLevelDemand
	KindFlowDemand
	numKinds
)

var kindNames = [numKinds]string{
	KindBasin:                "Basin",
	KindLinearResistance:     "LinearResistance",
	KindManningResistance:    "ManningResistance",
	KindTabulatedRatingCurve: "TabulatedRatingCurve",
	KindFractionalFlow:       "FractionalFlow",
	KindLevelBoundary:        "LevelBoundary",
	KindFlowBoundary:         "FlowBoundary",
	KindPump:                 "Pump",
	KindOutlet:               "Outlet",
	KindTerminal:             "Terminal",
	KindPidControl:           "PidControl",
	KindDiscreteControl:      "DiscreteControl",
	KindUserDemand:           "UserDemand",
	KindLevelDemand:          "LevelDemand",
	KindFlowDemand:           "FlowDemand",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// GKind converts a node.Kind to the graph package's lightweight Kind alias,
// used when constructing graph.NodeID values.
func (k Kind) GKind() graph.Kind { return graph.Kind(k) }

// ID returns a graph.NodeID for this kind.
func ID(k Kind, externalID int32, internalIndex int) graph.NodeID {
	return graph.NodeID{Kind: k.GKind(), ExternalID: externalID, InternalIndex: internalIndex}
}

// isFlowConstraining reports whether a node kind imposes a hard single-value
// flow law (as opposed to being a passive junction). Validation does not
// call it, and the allocation graph reduction uses its own chainDirection
// over the same four kinds.
func isFlowConstraining(k Kind) bool {
	switch k {
	case KindPump, KindOutlet, KindTabulatedRatingCurve, KindFractionalFlow:
		return true
	}
	return false
}
