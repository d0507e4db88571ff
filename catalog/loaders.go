// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/interp"
	"github.com/hydrocore/ribasim/node"
)

// init registers one kindLoader per node kind with a static or time table:
// each loader claims responsibility for exactly one per-kind table and the
// Load orchestrator never needs a type switch.
func init() {
	kindLoaders = append(kindLoaders,
		loadBasin,
		loadLinearResistance,
		loadManningResistance,
		loadTabulatedRatingCurve,
		loadFractionalFlow,
		loadBoundaries,
		loadPump,
		loadOutlet,
		loadPidControl,
		loadUserDemand,
	)
}

// internalIndex returns the 0-based InternalIndex of the graph.NodeID that
// nodeID was assigned during Load, or -1 if it is unknown.
func internalIndex(ids map[int32]graph.NodeID, nodeID int64) int {
	id, ok := ids[int32(nodeID)]
	if !ok {
		return -1
	}
	return id.InternalIndex - 1
}

func f64(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	}
	return 0
}

func i64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int32:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

func b(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	}
	return true
}

// loadBasin ingests BasinProfile rows (node_id, level, area) grouped per
// node into a node.Profile, and BasinTime forcing rows.
func loadBasin(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("BasinProfile")
	if err != nil {
		return err
	}
	levels := map[int]([]float64){}
	areas := map[int]([]float64){}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		levels[i] = append(levels[i], f64(r["level"]))
		areas[i] = append(areas[i], f64(r["area"]))
	}
	var errs MultiError
	for i := range cat.Basin.ExternalID {
		if len(levels[i]) == 0 {
			continue
		}
		profile, err := node.NewProfile(levels[i], areas[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cat.Basin.Profile[i] = profile
		cat.Basin.BottomLevel[i] = profile.Level[0]
	}
	if len(errs) > 0 {
		return errs
	}

	timeRows, err := src.TimeRows("Basin")
	if err != nil {
		return err
	}
	times := map[int][]float64{}
	precip := map[int][]float64{}
	evap := map[int][]float64{}
	drain := map[int][]float64{}
	infil := map[int][]float64{}
	urban := map[int][]float64{}
	for _, r := range timeRows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		times[i] = append(times[i], f64(r["time"]))
		precip[i] = append(precip[i], f64(r["precipitation"]))
		evap[i] = append(evap[i], f64(r["potential_evaporation"]))
		drain[i] = append(drain[i], f64(r["drainage"]))
		infil[i] = append(infil[i], f64(r["infiltration"]))
		urban[i] = append(urban[i], f64(r["urban_runoff"]))
	}
	for i, ts := range times {
		pItp, err1 := interp.New(ts, precip[i])
		eItp, err2 := interp.New(ts, evap[i])
		dItp, err3 := interp.New(ts, drain[i])
		nItp, err4 := interp.New(ts, infil[i])
		uItp, err5 := interp.New(ts, urban[i])
		if err := firstErr(err1, err2, err3, err4, err5); err != nil {
			errs = append(errs, err)
			continue
		}
		cat.Basin.SetForcingInterpolants(i, pItp, eItp, dItp, nItp, uItp)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// loadLinearResistance ingests LinearResistanceStatic (node_id, resistance,
// max_flow_rate, active?).
func loadLinearResistance(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("LinearResistance")
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		cat.LinearResistance.Resistance[i] = f64(r["resistance"])
		if v, ok := r["max_flow_rate"]; ok && v != nil {
			cat.LinearResistance.MaxFlow[i] = f64(v)
		}
		if v, ok := r["active"]; ok {
			cat.LinearResistance.Active[i] = b(v)
		}
	}
	return nil
}

// loadManningResistance ingests ManningResistanceStatic (node_id, length,
// manning_n, profile_width, profile_slope).
func loadManningResistance(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("ManningResistance")
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		cat.ManningResistance.Length[i] = f64(r["length"])
		cat.ManningResistance.ManningN[i] = f64(r["manning_n"])
		cat.ManningResistance.ProfileW[i] = f64(r["profile_width"])
		cat.ManningResistance.ProfileSlope[i] = f64(r["profile_slope"])
		cat.ManningResistance.BottomA[i] = f64(r["bottom_a"])
		cat.ManningResistance.BottomB[i] = f64(r["bottom_b"])
	}
	return nil
}

// loadTabulatedRatingCurve ingests TabulatedRatingCurveStatic (node_id,
// level, discharge, active?, control_state?), grouping rows by node into a
// single interp.TabulatedRatingCurve per node, and TabulatedRatingCurveTime
// (node_id, time, level, discharge) for scheduled curve swaps: rows sharing
// (node_id, time) form one curve, installed wholesale at its time by the
// rating-curve update callback.
func loadTabulatedRatingCurve(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("TabulatedRatingCurve")
	if err != nil {
		return err
	}
	levels := map[int][]float64{}
	discharges := map[int][]float64{}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		levels[i] = append(levels[i], f64(r["level"]))
		discharges[i] = append(discharges[i], f64(r["discharge"]))
	}
	var errs MultiError
	for i := range cat.TabulatedRatingCurve.ExternalID {
		if len(levels[i]) == 0 {
			continue
		}
		curve, err := interp.NewRatingCurve(levels[i], discharges[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cat.TabulatedRatingCurve.Table[i] = interp.NewHandle(curve)
	}
	if len(errs) > 0 {
		return errs
	}

	timeRows, err := src.TimeRows("TabulatedRatingCurve")
	if err != nil {
		return err
	}
	type key struct {
		i int
		t float64
	}
	timeLevels := map[key][]float64{}
	timeDischarges := map[key][]float64{}
	times := map[int][]float64{}
	for _, r := range timeRows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		t := f64(r["time"])
		k := key{i, t}
		if len(timeLevels[k]) == 0 && len(timeDischarges[k]) == 0 {
			times[i] = append(times[i], t)
		}
		timeLevels[k] = append(timeLevels[k], f64(r["level"]))
		timeDischarges[k] = append(timeDischarges[k], f64(r["discharge"]))
	}
	for i, ts := range times {
		sort.Float64s(ts)
		for _, t := range ts {
			k := key{i, t}
			curve, err := interp.NewRatingCurve(timeLevels[k], timeDischarges[k])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			cat.TabulatedRatingCurve.TimeTable[i] = append(cat.TabulatedRatingCurve.TimeTable[i], node.ScheduledCurve{Time: t, Curve: curve})
		}
		if cat.TabulatedRatingCurve.Table[i] == nil && len(cat.TabulatedRatingCurve.TimeTable[i]) > 0 {
			cat.TabulatedRatingCurve.Table[i] = interp.NewHandle(cat.TabulatedRatingCurve.TimeTable[i][0].Curve)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// loadFractionalFlow ingests FractionalFlowStatic (node_id, fraction).
func loadFractionalFlow(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("FractionalFlow")
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		cat.FractionalFlow.Fraction[i] = f64(r["fraction"])
	}
	return nil
}

// loadBoundaries ingests LevelBoundaryTime (node_id, time, level) and
// FlowBoundaryTime (node_id, time, flow_rate).
func loadBoundaries(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	lbRows, err := src.TimeRows("LevelBoundary")
	if err != nil {
		return err
	}
	fbRows, err := src.TimeRows("FlowBoundary")
	if err != nil {
		return err
	}
	if err := groupAndBuild(lbRows, ids, "level", func(i int, fn interp.Func) { cat.LevelBoundary.Level[i] = fn }); err != nil {
		return err
	}
	if err := groupAndBuild(fbRows, ids, "flow_rate", func(i int, fn interp.Func) { cat.FlowBoundary.Rate[i] = fn }); err != nil {
		return err
	}
	return nil
}

// groupAndBuild groups time rows by node_id and builds a
// interp.PiecewiseLinear over column valueCol, calling assign with each
// node's interpolant.
func groupAndBuild(rows []map[string]any, ids map[int32]graph.NodeID, valueCol string, assign func(i int, fn interp.Func)) error {
	times := map[int][]float64{}
	values := map[int][]float64{}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		times[i] = append(times[i], f64(r["time"]))
		values[i] = append(values[i], f64(r[valueCol]))
	}
	var errs MultiError
	for i, ts := range times {
		itp, err := interp.New(ts, values[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		assign(i, itp)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// loadPump ingests PumpStatic (node_id, flow_rate, min_flow_rate,
// max_flow_rate, active?).
func loadPump(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("Pump")
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		cat.Pump.FlowRate[i] = f64(r["flow_rate"])
		if v, ok := r["min_flow_rate"]; ok && v != nil {
			cat.Pump.MinFlowRate[i] = f64(v)
		}
		if v, ok := r["max_flow_rate"]; ok && v != nil {
			cat.Pump.MaxFlowRate[i] = f64(v)
		}
		if v, ok := r["active"]; ok {
			cat.Pump.Active[i] = b(v)
		}
	}
	return nil
}

// loadOutlet ingests OutletStatic (node_id, flow_rate, min_flow_rate,
// max_flow_rate, min_crest_level, min_upstream_level, active?).
func loadOutlet(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("Outlet")
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		cat.Outlet.FlowRate[i] = f64(r["flow_rate"])
		if v, ok := r["min_flow_rate"]; ok && v != nil {
			cat.Outlet.MinFlowRate[i] = f64(v)
		}
		if v, ok := r["max_flow_rate"]; ok && v != nil {
			cat.Outlet.MaxFlowRate[i] = f64(v)
		}
		if v, ok := r["min_crest_level"]; ok && v != nil {
			cat.Outlet.MinCrestLevel[i] = f64(v)
		}
		if v, ok := r["min_upstream_level"]; ok && v != nil {
			cat.Outlet.MinUpstreamLvl[i] = f64(v)
		}
		if v, ok := r["active"]; ok {
			cat.Outlet.Active[i] = b(v)
		}
	}
	return nil
}

// loadPidControl ingests PidControlStatic (node_id, listen_node_id, target,
// proportional, integral, derivative, active?), resolving listen_node_id
// through the Node ids and the controlled node from the PidControl's
// outgoing control edge in the Edge table.
func loadPidControl(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("PidControl")
	if err != nil {
		return err
	}
	edges, err := src.Edges()
	if err != nil {
		return err
	}
	controlledOf := map[int32]graph.NodeID{}
	for _, e := range edges {
		if e.EdgeType == "control" {
			if dst, ok := ids[e.ToNodeID]; ok {
				controlledOf[e.FromNodeID] = dst
			}
		}
	}
	var errs MultiError
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		listenID, ok := ids[int32(i64(r["listen_node_id"]))]
		if !ok {
			errs = append(errs, chk.Err("catalog: PidControl node %d has unknown listen_node_id", i64(r["node_id"])))
			continue
		}
		if node.Kind(listenID.Kind) != node.KindBasin {
			errs = append(errs, chk.Err("catalog: PidControl node %d's listen node is not a Basin", i64(r["node_id"])))
			continue
		}
		cat.PidControl.Listen[i] = listenID
		cat.PidControl.Controlled[i] = controlledOf[int32(i64(r["node_id"]))]
		cat.PidControl.Target[i] = interp.Constant(f64(r["target"]))
		cat.PidControl.Proportional[i] = f64(r["proportional"])
		cat.PidControl.Integral[i] = f64(r["integral"])
		cat.PidControl.Derivative[i] = f64(r["derivative"])
		if v, ok := r["active"]; ok {
			cat.PidControl.Active[i] = b(v)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// loadUserDemand ingests UserDemandStatic (node_id, priority, demand,
// return_factor, min_level, active?), sorted by (node_id, priority) so each
// node's priorities are appended in ascending order.
func loadUserDemand(src Catalog, cat *node.Catalogue, ids map[int32]graph.NodeID) error {
	rows, err := src.StaticRows("UserDemand")
	if err != nil {
		return err
	}
	for _, r := range rows {
		i := internalIndex(ids, i64(r["node_id"]))
		if i < 0 {
			continue
		}
		p := int(i64(r["priority"]))
		cat.UserDemand.Priorities[i] = append(cat.UserDemand.Priorities[i], p)
		cat.UserDemand.DemandItp[i] = append(cat.UserDemand.DemandItp[i], interp.Constant(f64(r["demand"])))
		cat.UserDemand.Allocated[i] = append(cat.UserDemand.Allocated[i], 0)
		cat.UserDemand.ReturnFactor[i] = f64(r["return_factor"])
		cat.UserDemand.MinLevel[i] = f64(r["min_level"])
		if v, ok := r["active"]; ok {
			cat.UserDemand.Active[i] = b(v)
		}
	}
	return nil
}
