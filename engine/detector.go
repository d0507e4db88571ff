// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/hydrocore/ribasim/control"
	"github.com/hydrocore/ribasim/flow"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
	"github.com/hydrocore/ribasim/rhs"
	"github.com/hydrocore/ribasim/state"
)

// detectorState evaluates every DiscreteControl's CompoundVariables at the
// start and end of an accepted integrator step and reports sign changes
// against their thresholds, driving the zero-crossing logic that feeds
// DiscreteControl transitions.
type detectorState struct {
	cat       *node.Catalogue
	system    *rhs.System
	edgeIndex map[int32]int // external edge id -> flow.Buffer.Q index
}

func newDetectorState(g *graph.Graph, cat *node.Catalogue, system *rhs.System) *detectorState {
	idx := make(map[int32]int)
	for _, e := range g.Edges() {
		if e.Kind == graph.EdgeFlow {
			idx[e.ID] = e.FlowIndex
		}
	}
	return &detectorState{cat: cat, system: system, edgeIndex: idx}
}

// check compares every (control, variable, threshold) value at prev/tPrev
// against its value at cur/tNow and flips every crossed threshold via ctrl.
// The basin level/area cache is recomputed from prev, then from cur, so
// the comparison reflects the two state-vector endpoints of the accepted
// step rather than whatever intermediate stage value the integrator last
// called Eval with; cur is left as the live cache afterward. A reached
// truth state with no logic-mapping entry is fatal and aborts the check
// immediately.
func (d *detectorState) check(prev, cur *state.Vector, tPrev, tNow float64, ctrl *control.Controller) error {
	tbl := d.cat.DiscreteControl

	d.refreshFrom(prev)
	before := make([]float64, 0)
	for i := range tbl.ExternalID {
		for _, cv := range tbl.CompoundVars[i] {
			before = append(before, d.evaluate(cv, tPrev))
		}
	}

	d.refreshFrom(cur)
	k := 0
	for i := range tbl.ExternalID {
		active := tbl.Active[i]
		for v, cv := range tbl.CompoundVars[i] {
			after := d.evaluate(cv, tNow)
			if active {
				for th, threshold := range cv.GreaterThan {
					wasAbove := before[k] > threshold
					isAbove := after > threshold
					if wasAbove != isAbove {
						if err := ctrl.Flip(i, v, th, tNow); err != nil {
							return err
						}
					}
				}
			}
			k++
		}
	}
	return nil
}

func (d *detectorState) refreshFrom(sv *state.Vector) {
	for i := 0; i < d.cat.NumBasins(); i++ {
		d.cat.Basin.RefreshLevelArea(i, sv.Storage(i))
	}
}

// evaluate computes a CompoundVariable's weighted sum of sub-variable
// values at time t. Flow sub-variables read the RHS
// system's flow buffer as of the most recent Eval call rather than the
// look-ahead time, since the buffer only ever holds the current instant's
// rates.
func (d *detectorState) evaluate(cv node.CompoundVariable, t float64) float64 {
	var total float64
	for _, sub := range cv.SubVariables {
		switch sub.Source {
		case node.SourceLevel:
			total += sub.Weight * flow.Head(d.cat, sub.Listen, t+sub.LookAhead)
		case node.SourceFlow:
			if idx, ok := d.edgeIndex[sub.EdgeID]; ok {
				total += sub.Weight * d.system.Buf.Q[idx]
			}
		}
	}
	return total
}
