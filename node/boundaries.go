// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/cpmech/gosl/chk"

// LevelBoundaries is the record-of-arrays table for KindLevelBoundary: acts
// as an infinite basin at level(t), carrying no storage state.
type LevelBoundaries struct {
	ExternalID []int32
	Active     []bool
	Level      []Interpolant
}

// NewLevelBoundaries allocates a table of size n.
func NewLevelBoundaries(n int) *LevelBoundaries {
	t := &LevelBoundaries{
		ExternalID: make([]int32, n),
		Active:     make([]bool, n),
		Level:      make([]Interpolant, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// FlowBoundaries is the record-of-arrays table for KindFlowBoundary:
// imposes q = rate(t) >= 0 on its outgoing edges.
type FlowBoundaries struct {
	ExternalID []int32
	Active     []bool
	Rate       []Interpolant
}

// NewFlowBoundaries allocates a table of size n.
func NewFlowBoundaries(n int) *FlowBoundaries {
	t := &FlowBoundaries{
		ExternalID: make([]int32, n),
		Active:     make([]bool, n),
		Rate:       make([]Interpolant, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// ValidateNonNegativeRate checks an entire sampled rate table for negative
// segments; a FlowBoundary interpolant with any negative sample fails
// validation.
func ValidateNonNegativeRate(externalID int32, samples []float64) error {
	for _, v := range samples {
		if v < 0 {
			return chk.Err("flow boundary %d: rate interpolant has a negative segment (%g)", externalID, v)
		}
	}
	return nil
}
