// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/output"
)

// appendBasinRows writes one basin.arrow row per basin at t.
func (m *Model) appendBasinRows(t float64) {
	b := m.Cat.Basin
	for i := range b.ExternalID {
		m.writer.Basin = append(m.writer.Basin, output.BasinRow{
			Time:          t,
			NodeID:        b.ExternalID[i],
			Storage:       m.State.Storage(i),
			Level:         b.CurrentLevel[i],
			Precipitation: b.Forcing[i].Precipitation,
			Evaporation:   b.Forcing[i].PotentialEvap,
			Drainage:      b.Forcing[i].Drainage,
			Infiltration:  b.Forcing[i].Infiltration,
		})
	}
}

// appendFlowRows writes one flow.arrow row per flow edge at t, plus a
// null-edge_id self-edge row per basin reporting its vertical-flux total.
func (m *Model) appendFlowRows(t float64) {
	for _, e := range m.Graph.Edges() {
		if e.Kind != graph.EdgeFlow {
			continue
		}
		id := e.ID
		m.writer.Flow = append(m.writer.Flow, output.FlowRow{
			Time:       t,
			EdgeID:     &id,
			FromNodeID: e.Src.ExternalID,
			ToNodeID:   e.Dst.ExternalID,
			FlowRate:   m.RHS.Buf.Q[e.FlowIndex],
		})
	}
	for i, id := range m.Cat.Basin.ExternalID {
		m.writer.Flow = append(m.writer.Flow, output.FlowRow{
			Time:       t,
			EdgeID:     nil,
			FromNodeID: id,
			ToNodeID:   id,
			FlowRate:   m.RHS.Buf.SelfEdge[i],
		})
	}
}

// appendSubgridRows writes one subgrid_level.arrow row per subgrid element
// at t, sampling each element's rating curve against its basin's current
// level.
func (m *Model) appendSubgridRows(t float64) {
	if m.subgrid == nil {
		return
	}
	levels := m.subgrid.Sample(m.Cat.Basin.CurrentLevel)
	for i, e := range m.subgrid.Elements {
		m.writer.SubgridLevel = append(m.writer.SubgridLevel, output.SubgridLevelRow{
			Time:         t,
			SubgridID:    e.ExternalID,
			SubgridLevel: levels[i],
		})
	}
}

// appendControlRows writes one control.arrow row per DiscreteControl
// transition event recorded since the last sample, draining the
// controller's event log.
func (m *Model) appendControlRows(t float64) {
	for _, ev := range m.controller.Events {
		m.writer.Control = append(m.writer.Control, output.ControlRow{
			Time:          ev.Time,
			ControlNodeID: ev.ControlNodeID,
			TruthState:    ev.TruthState,
			ControlState:  ev.ControlState,
		})
	}
	m.controller.Events = m.controller.Events[:0]
}
