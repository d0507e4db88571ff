// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/hydrocore/ribasim/graph"

// LevelDemands is the record-of-arrays table for KindLevelDemand: a
// non-physical node that attaches a priority and target level band to one
// or more basins, consumed only by the allocation engine's F_basin_in/out
// variables.
type LevelDemands struct {
	ExternalID []int32
	Active     []bool
	MinLevel   []Interpolant
	MaxLevel   []Interpolant
	Priority   []int
	Basins     [][]graph.NodeID // basins this demand applies to
}

// NewLevelDemands allocates a table of size n.
func NewLevelDemands(n int) *LevelDemands {
	t := &LevelDemands{
		ExternalID: make([]int32, n),
		Active:     make([]bool, n),
		MinLevel:   make([]Interpolant, n),
		MaxLevel:   make([]Interpolant, n),
		Priority:   make([]int, n),
		Basins:     make([][]graph.NodeID, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}
