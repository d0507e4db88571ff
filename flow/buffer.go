// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

// Buffer is the edge-indexed flow buffer: one flow rate per
// flow edge, zeroed at the start of every RHS evaluation, plus a handful of
// named "self-edge" channels used to report basin vertical fluxes under a
// null edge_id.
type Buffer struct {
	Q         []float64 // [nFlowEdges]
	SelfEdge  []float64 // [nBasin], vertical-flux total per basin
}

// NewBuffer allocates a Buffer sized for nFlowEdges edges and nBasin basins.
func NewBuffer(nFlowEdges, nBasin int) *Buffer {
	return &Buffer{Q: make([]float64, nFlowEdges), SelfEdge: make([]float64, nBasin)}
}

// Zero clears both channels at the start of a RHS evaluation.
func (b *Buffer) Zero() {
	for i := range b.Q {
		b.Q[i] = 0
	}
	for i := range b.SelfEdge {
		b.SelfEdge[i] = 0
	}
}
