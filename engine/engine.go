// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine wires every other package into the programmatic control
// surface: initialize/update_until/get_value_ptr/finalize. Model owns the
// graph, catalogue, state vector, RHS system, scheduler, controller,
// allocation engine and output writer, and drives them forward with
// gosl/ode.Solver integrating a sparse ODE system between scheduled
// callback times.
package engine

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/ode"

	"github.com/hydrocore/ribasim/allocation"
	"github.com/hydrocore/ribasim/catalog"
	"github.com/hydrocore/ribasim/config"
	"github.com/hydrocore/ribasim/control"
	"github.com/hydrocore/ribasim/coupling"
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/logging"
	"github.com/hydrocore/ribasim/node"
	"github.com/hydrocore/ribasim/output"
	"github.com/hydrocore/ribasim/rhs"
	"github.com/hydrocore/ribasim/schedule"
	"github.com/hydrocore/ribasim/state"
	"github.com/hydrocore/ribasim/subgrid"
)

// Model is the live simulation: the construction-time-immutable graph and
// catalogue, built once and never restructured, plus the mutable pieces
// that advance with time.
type Model struct {
	Config *config.Config
	Graph  *graph.Graph
	Cat    *node.Catalogue
	State  *state.Vector
	RHS    *rhs.System

	schedule   *schedule.Scheduler
	detector   *detectorState
	controller *control.Controller
	alloc      *allocation.Engine
	writer     *output.Writer
	log        *logging.Logger
	exchange   *coupling.Exchange
	subgrid    *subgrid.Table

	solver  ode.Solver
	current float64
	start   float64
	end     float64
}

// New opens the catalog named in cfg, builds every component and returns
// an initialized Model (the "initialize(config) → Model" entry point).
func New(cfg *config.Config) (*Model, error) {
	src, err := catalog.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	g, cat, subnetworkOf, err := catalog.Load(src)
	if err != nil {
		src.Close()
		return nil, err
	}

	sv := state.New(cat.NumBasins(), cat.NumPid())
	if err := initializeStorage(sv, cat); err != nil {
		return nil, err
	}
	for i := range cat.PidControl.ExternalID {
		sv.SetIntegral(i, 0)
	}

	system := rhs.NewSystem(g, cat)

	ctrl, err := control.NewController(cat)
	if err != nil {
		return nil, err
	}

	sg, err := catalog.LoadSubgrid(src, cat)
	if err != nil {
		src.Close()
		return nil, err
	}
	if err := src.Close(); err != nil {
		return nil, err
	}

	m := &Model{
		Config:     cfg,
		Graph:      g,
		Cat:        cat,
		State:      sv,
		RHS:        system,
		schedule:   schedule.New(),
		controller: ctrl,
		writer:     output.New(cfg.ResultsDir),
		log:        logging.New(logging.ParseLevel(cfg.Logging.Verbosity), cfg.Logging.Timing),
		subgrid:    sg,
		start:      0,
		current:    0,
	}
	m.end = cfg.EndTime.Sub(cfg.StartTime).Seconds()
	m.detector = newDetectorState(g, cat, system)
	m.scheduleRatingCurveUpdates()

	if cfg.Allocation.UseAllocation {
		m.alloc, err = buildAllocationEngine(g, cat, subnetworkOf, cfg)
		if err != nil {
			return nil, err
		}
		m.schedule.Every(0, cfg.Allocation.Timestep, schedule.RankAllocation, func(t float64) {
			if err := m.alloc.Run(t); err != nil {
				m.log.Errorf("allocation solve at t=%g: %v\n", t, err)
			}
		})
	}

	m.scheduleOutput()
	return m, nil
}

// initializeStorage converts every basin's initial level into the packed
// storage state via its profile.
func initializeStorage(sv *state.Vector, cat *node.Catalogue) error {
	for i, profile := range cat.Basin.Profile {
		if profile == nil {
			continue
		}
		level := cat.Basin.CurrentLevel[i]
		if level == 0 {
			level = profile.Level[0]
		}
		if level < profile.Level[0] {
			return chk.Err("engine: basin %d initial level %g is below its profile bottom %g", cat.Basin.ExternalID[i], level, profile.Level[0])
		}
		sv.SetStorage(i, profile.LevelToStorage(level))
		cat.Basin.CurrentLevel[i] = level
		cat.Basin.CurrentArea[i] = profile.LevelToArea(level)
	}
	return nil
}

// scheduleRatingCurveUpdates arranges a RankRatingCurve callback at every
// distinct time named in any TabulatedRatingCurve's schedule, installing
// the most-recent-row curve into Table[i] wholesale rather than
// interpolating between two curves.
func (m *Model) scheduleRatingCurveUpdates() {
	tbl := m.Cat.TabulatedRatingCurve
	seen := map[float64]bool{}
	var times []float64
	for i := range tbl.ExternalID {
		for _, sc := range tbl.TimeTable[i] {
			if !seen[sc.Time] {
				seen[sc.Time] = true
				times = append(times, sc.Time)
			}
		}
	}
	if len(times) == 0 {
		return
	}
	m.schedule.AtEach(times, schedule.RankRatingCurve, func(t float64) {
		for i := range tbl.ExternalID {
			tbl.ApplyScheduledCurves(i, t)
		}
	})
}

// scheduleOutput arranges periodic Output-rank callbacks at every saveat
// instant, either at fixed intervals or at the explicit time list the
// solver config gives.
func (m *Model) scheduleOutput() {
	if len(m.Config.Solver.SaveatTimes) > 0 {
		m.schedule.AtEach(m.Config.Solver.SaveatTimes, schedule.RankOutput, m.sample)
		return
	}
	every := m.Config.Solver.Saveat
	if every <= 0 {
		every = m.end - m.start
		if every <= 0 {
			every = 1
		}
	}
	m.schedule.Every(m.start, every, schedule.RankOutput, m.sample)
}

// UpdateUntil advances the simulation to target, failing if target is
// before the current time.
func (m *Model) UpdateUntil(target float64) error {
	if target < m.current {
		return chk.Err("engine: update_until(%g) is before current time %g", target, m.current)
	}

	m.solver.Init(m.algorithm(), len(m.State.Y), m.fcn(), m.jac(), nil, nil)
	m.solver.SetTol(m.Config.Solver.Abstol, m.Config.Solver.Reltol)
	m.solver.Distr = false

	// Callbacks due at the current instant (the t=start firings of
	// allocation and output) run before the first step; RunDue only pops
	// the head of the queue, so an unfired entry here would block every
	// later callback.
	m.schedule.RunDue(m.current)

	for m.current < target {
		next := target
		if t, ok := m.schedule.NextTime(); ok && t > m.current && t < next {
			next = t
		}
		prev := m.State.Clone()
		tPrev := m.current
		dt := m.Config.Solver.Dt
		if dt <= 0 {
			dt = next - m.current
		}
		if err := m.solver.Solve(m.State.Y, m.current, next, dt, false); err != nil {
			return chk.Err("engine: integrator failed between t=%g and t=%g: %v", m.current, next, err)
		}
		if err := checkNonNegativeStorage(m.State, m.Cat); err != nil {
			return err
		}
		m.current = next
		m.schedule.RunDue(m.current)
		if err := m.detector.check(prev, m.State, tPrev, m.current, m.controller); err != nil {
			return err
		}
	}
	return nil
}

// checkNonNegativeStorage fails with a fatal runtime error reporting the
// offending basin and time if any basin's storage went negative beyond the
// solver's tolerance.
func checkNonNegativeStorage(sv *state.Vector, cat *node.Catalogue) error {
	for i := 0; i < cat.NumBasins(); i++ {
		if sv.Storage(i) < -1e-6 {
			return chk.Err("engine: basin %d storage went negative (%g)", cat.Basin.ExternalID[i], sv.Storage(i))
		}
	}
	return nil
}

func (m *Model) algorithm() string {
	if m.Config.Solver.Algorithm != "" {
		return m.Config.Solver.Algorithm
	}
	return "Radau5"
}

func (m *Model) fcn() func(f []float64, dx, x float64, y []float64) error {
	return func(f []float64, dx, x float64, y []float64) error {
		m.RHS.Eval(f, y, x)
		return nil
	}
}

func (m *Model) jac() func(dfdy *la.Triplet, dx, x float64, y []float64) error {
	if !m.Config.Solver.Sparse {
		return nil
	}
	return func(dfdy *la.Triplet, dx, x float64, y []float64) error {
		proto := m.RHS.JacobianPrototype()
		*dfdy = *proto
		return nil
	}
}

// sample appends one row per basin/edge/control/allocation table at t, the
// Output-rank callback every saveat instant invokes.
func (m *Model) sample(t float64) {
	m.appendBasinRows(t)
	m.appendFlowRows(t)
	m.appendControlRows(t)
	m.appendSubgridRows(t)
	if m.alloc != nil {
		for _, r := range m.alloc.Records {
			m.writer.Allocation = append(m.writer.Allocation, output.AllocationRow{
				Time: r.Time, SubnetworkID: r.SubnetworkID, NodeID: r.UserNodeID, Priority: r.Priority,
				Demand: r.Demand, Allocated: r.Allocated, Realized: r.Abstracted,
			})
		}
		m.alloc.Records = m.alloc.Records[:0]
	}
}

// SetCoupling wires an external groundwater adapter in for the given
// basins, running every period seconds at RankForcing so its written-back
// drainage/infiltration are visible before the next RHS evaluation.
func (m *Model) SetCoupling(ex *coupling.Exchange, period float64) {
	m.exchange = ex
	m.schedule.Every(m.start, period, schedule.RankForcing, func(t float64) {
		read := func(i int) float64 { return m.State.Storage(i) }
		write := func(i int, drainage, infiltration float64) {
			m.Cat.Basin.Forcing[i].Drainage = drainage
			m.Cat.Basin.Forcing[i].Infiltration = infiltration
		}
		if err := ex.Run(read, write); err != nil {
			m.log.Errorf("external coupling exchange at t=%g: %v\n", t, err)
		}
	})
}

// GetStartTime, GetEndTime, GetCurrentTime, GetTimeUnits are the remaining
// control-surface getters
func (m *Model) GetStartTime() float64   { return m.start }
func (m *Model) GetEndTime() float64     { return m.end }
func (m *Model) GetCurrentTime() float64 { return m.current }
func (m *Model) GetTimeUnits() string    { return "s" }

// Finalize flushes every result file.
func (m *Model) Finalize() error {
	return m.writer.Close()
}
