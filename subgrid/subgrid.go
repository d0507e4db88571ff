// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package subgrid samples basin water levels onto a finer-resolution
// reporting grid. Each subgrid element
// belongs to one basin and carries its own static level(basin_level)
// rating table, since a single basin's water surface often maps onto
// several distinct sub-areas (a floodplain cell, a side channel) whose
// local bed elevation differs from the basin's own profile.
package subgrid

import (
	"github.com/cpmech/gosl/chk"

	"github.com/hydrocore/ribasim/interp"
)

// Element is one row of the static subgrid table: a subgrid ID tied to a
// basin index, mapping the basin's current level through a piecewise-linear
// rating curve.
type Element struct {
	ExternalID int32
	BasinIndex int // 0-based index into node.Catalogue.Basin
	Rating     *interp.PiecewiseLinear
}

// Table is the full set of subgrid elements loaded from the catalog, in the
// order New receives them.
type Table struct {
	Elements []Element
}

// New builds a Table from parallel arrays: one (externalID, basinIndex,
// basinLevels, subgridLevels) tuple per element. An empty level table for
// an element is a schema error, since every element needs a rating curve
// to be sampled.
func New(externalIDs []int32, basinIndices []int, basinLevels, subgridLevels [][]float64) (*Table, error) {
	if len(externalIDs) != len(basinIndices) || len(externalIDs) != len(basinLevels) || len(externalIDs) != len(subgridLevels) {
		return nil, chk.Err("subgrid: mismatched input array lengths")
	}
	t := &Table{Elements: make([]Element, len(externalIDs))}
	for i := range externalIDs {
		rating, err := interp.New(basinLevels[i], subgridLevels[i])
		if err != nil {
			return nil, chk.Err("subgrid: element %d: %v", externalIDs[i], err)
		}
		t.Elements[i] = Element{
			ExternalID: externalIDs[i],
			BasinIndex: basinIndices[i],
			Rating:     rating,
		}
	}
	return t, nil
}

// Sample evaluates every element's rating curve against the given basin
// level table (indexed the same way as node.Catalogue.Basin), returning one
// subgrid level per element in table order.
func (t *Table) Sample(basinLevel []float64) []float64 {
	out := make([]float64, len(t.Elements))
	for i, e := range t.Elements {
		out[i] = e.Rating.At(basinLevel[e.BasinIndex])
	}
	return out
}

// Len reports the number of subgrid elements.
func (t *Table) Len() int { return len(t.Elements) }
