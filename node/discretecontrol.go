// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/hydrocore/ribasim/graph"

// VariableSource identifies what a DiscreteControl sub-variable observes:
// the level of a Basin or boundary, or the flow on an edge.
type VariableSource int

const (
	SourceLevel VariableSource = iota
	SourceFlow
)

// SubVariable is one weighted term of a compound variable.
type SubVariable struct {
	Source    VariableSource
	Listen    graph.NodeID // for SourceLevel: a Basin or boundary
	EdgeID    int32        // for SourceFlow
	Weight    float64
	LookAhead float64 // seconds; 0 for no look-ahead
}

// CompoundVariable is a weighted sum of SubVariables with a strictly
// increasing list of GreaterThan thresholds.
type CompoundVariable struct {
	SubVariables []SubVariable
	GreaterThan  []float64
}

// DiscreteControls is the record-of-arrays table for KindDiscreteControl.
// TruthState is a flat bit vector of length Σ_k |thresholds_k| across all
// CompoundVariables; LogicMapping maps a concrete truth-state string (e.g.
// "TFT") to a control-state label.
type DiscreteControls struct {
	ExternalID       []int32
	Active           []bool
	CompoundVars     [][]CompoundVariable
	TruthState       [][]bool
	LogicMapping     []map[string]string
	CurrentState     []string
	ControlledNodes  [][]graph.NodeID
}

// NewDiscreteControls allocates a table of size n.
func NewDiscreteControls(n int) *DiscreteControls {
	t := &DiscreteControls{
		ExternalID:      make([]int32, n),
		Active:          make([]bool, n),
		CompoundVars:    make([][]CompoundVariable, n),
		TruthState:      make([][]bool, n),
		LogicMapping:    make([]map[string]string, n),
		CurrentState:    make([]string, n),
		ControlledNodes: make([][]graph.NodeID, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// TruthStateString renders the current bit vector as a "T"/"F" string, the
// key format used by LogicMapping.
func TruthStateString(bits []bool) string {
	b := make([]byte, len(bits))
	for i, v := range bits {
		if v {
			b[i] = 'T'
		} else {
			b[i] = 'F'
		}
	}
	return string(b)
}

// Event is one appended record of a DiscreteControl transition:
// (t, control_node_id, truth_state_string, control_state).
type Event struct {
	Time          float64
	ControlNodeID int32
	TruthState    string
	ControlState  string
}
