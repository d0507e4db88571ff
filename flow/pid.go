// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// PidInputs bundles the quantities PidRate needs beyond the catalogue: the
// listen basin's area and current dS/dt (as already assembled by the flow
// formulators before PID ran), and the target's rate of change, all
// evaluated at the current instant.
type PidInputs struct {
	Error        float64 // e(t) = target(t) - level(listen)
	Integral     float64 // current PID integral state
	ListenArea   float64
	DListenDt    float64 // dS_listen/dt from the flow-buffer assembly so far
	DTargetDt    float64
	IsOutlet     bool
}

// PidRate evaluates the controlled flow rate:
//
//	factor = storageFactor for Outlet, 1 for Pump
//	D = 1 - Kd*factor/A when Kd != 0, else 1
//	q = factor * (Kp*e/D + Ki*∫e/D + Kd*(dTarget/dt - dS_listen/dt/A)/D)
//
// clamped by the caller to the controlled node's [min,max] flow rate.
func PidRate(kp, ki, kd float64, in PidInputs, storageFactor float64) float64 {
	factor := storageFactor
	if !in.IsOutlet {
		factor = 1
	}
	d := 1.0
	if kd != 0 && in.ListenArea != 0 {
		d = 1 - kd*factor/in.ListenArea
	}
	var derivTerm float64
	if in.ListenArea != 0 {
		derivTerm = kd * (in.DTargetDt - in.DListenDt/in.ListenArea) / d
	}
	return factor * (kp*in.Error/d + ki*in.Integral/d + derivTerm)
}

// PidResult is what Evaluate returns for one PidControl node: the
// controlled and listen nodes and the clamped rate, so the RHS assembler
// can correct du for the listen and controlled basins directly.
type PidResult struct {
	ControlledID graph.NodeID
	ListenID     graph.NodeID
	Rate         float64
}

// Evaluate computes the PidResult of PidControl i: it applies PidRate,
// clamps to the controlled node's bounds and writes the result into the
// controlled Pump/Outlet's FlowRate slot. For an Outlet the factor is the
// listen basin's low-storage reduction, reduction(storage,10), alone; no
// reduction on the Outlet's level difference is applied. It does not
// itself know about the state vector's integral values or write du — the
// rhs package supplies Integral/DListenDt/DTargetDt per node and performs
// the state mutation.
func Evaluate(cat *node.Catalogue, i int, in PidInputs) PidResult {
	tbl := cat.PidControl
	controlled := tbl.Controlled[i]
	in.IsOutlet = node.Kind(controlled.Kind) == node.KindOutlet
	storageFactor := Reduction(Storage(cat, tbl.Listen[i]), 10.0)
	rate := PidRate(tbl.Proportional[i], tbl.Integral[i], tbl.Derivative[i], in, storageFactor)
	var lo, hi float64
	switch node.Kind(controlled.Kind) {
	case node.KindPump:
		lo, hi = cat.Pump.MinFlowRate[controlled.InternalIndex-1], cat.Pump.MaxFlowRate[controlled.InternalIndex-1]
	case node.KindOutlet:
		lo, hi = cat.Outlet.MinFlowRate[controlled.InternalIndex-1], cat.Outlet.MaxFlowRate[controlled.InternalIndex-1]
	}
	rate = Clamp(rate, lo, hi)
	switch node.Kind(controlled.Kind) {
	case node.KindPump:
		cat.Pump.FlowRate[controlled.InternalIndex-1] = rate
	case node.KindOutlet:
		cat.Outlet.FlowRate[controlled.InternalIndex-1] = rate
	}
	return PidResult{ControlledID: controlled, ListenID: tbl.Listen[i], Rate: rate}
}
