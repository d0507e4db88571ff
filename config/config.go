// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config decodes the TOML input file into a Config: one flat
// struct per top-level block, with a path override table keyed by node
// kind for the cases where a per-kind static/time table is sourced from a
// columnar file instead of the database.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cpmech/gosl/chk"
)

// Config is the root of the TOML input file.
type Config struct {
	StartTime time.Time `toml:"starttime"`
	EndTime   time.Time `toml:"endtime"`

	InputDir   string `toml:"input_dir"`
	ResultsDir string `toml:"results_dir"`
	Database   string `toml:"database"`

	Allocation AllocationData         `toml:"allocation"`
	Solver     SolverData             `toml:"solver"`
	Logging    LoggingData            `toml:"logging"`
	Results    ResultsData            `toml:"results"`
	NodeTables map[string]TableSource `toml:"-"` // populated from per-kind TOML sections after decode
}

// AllocationData configures the allocation engine.
type AllocationData struct {
	UseAllocation bool    `toml:"use_allocation"`
	Timestep      float64 `toml:"timestep"`       // seconds between allocation solves
	ObjectiveType string  `toml:"objective_type"` // quadratic_absolute | quadratic_relative | linear_absolute | linear_relative
}

// SolverData configures the ODE integration.
type SolverData struct {
	Algorithm   string    `toml:"algorithm"`
	Autodiff    bool      `toml:"autodiff"`
	Saveat      float64   `toml:"saveat"` // seconds; SaveatTimes used instead when non-empty
	SaveatTimes []float64 `toml:"saveat_times"`
	Dt          float64   `toml:"dt"` // 0 means adaptive stepping
	Abstol      float64   `toml:"abstol"`
	Reltol      float64   `toml:"reltol"`
	MaxIters    int       `toml:"maxiters"`
	Sparse      bool      `toml:"sparse"`
}

// LoggingData configures the logging package's verbosity gate.
type LoggingData struct {
	Verbosity string `toml:"verbosity"` // debug | info | warn | error
	Timing    bool   `toml:"timing"`
}

// ResultsData configures the output writers in package output.
type ResultsData struct {
	Compression      bool   `toml:"compression"`
	CompressionLevel int    `toml:"compression_level"`
	Outstate         string `toml:"outstate"` // optional; empty means no state snapshot written
}

// TableSource overrides a node kind's static and/or time table with a
// columnar file instead of reading it from the database.
type TableSource struct {
	Static string `toml:"static"`
	Time   string `toml:"time"`
}

// nodeKinds lists every TOML table name that, if present alongside the
// fixed top-level blocks, is collected into Config.NodeTables rather than
// causing a decode error. Kept in sync with node.Kind's registry.
var nodeKinds = []string{
	"Basin", "LinearResistance", "ManningResistance", "TabulatedRatingCurve",
	"FractionalFlow", "LevelBoundary", "FlowBoundary", "Pump", "Outlet",
	"Terminal", "PidControl", "DiscreteControl", "UserDemand", "LevelDemand",
	"FlowDemand",
}

// Load reads and decodes path into a Config, then lifts any per-node-kind
// table-source blocks out of the raw TOML tree into NodeTables.
func Load(path string) (*Config, error) {
	var raw map[string]toml.Primitive
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, chk.Err("config: decoding %q: %v", path, err)
	}

	cfg := &Config{NodeTables: map[string]TableSource{}}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, chk.Err("config: decoding %q: %v", path, err)
	}

	for _, kind := range nodeKinds {
		prim, ok := raw[kind]
		if !ok {
			continue
		}
		var src TableSource
		if err := md.PrimitiveDecode(prim, &src); err != nil {
			return nil, chk.Err("config: decoding [%s] table source: %v", kind, err)
		}
		cfg.NodeTables[kind] = src
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the cross-field constraints that must hold before the
// catalog is even opened.
func (c *Config) validate() error {
	if !c.EndTime.After(c.StartTime) {
		return chk.Err("config: endtime (%v) must be after starttime (%v)", c.EndTime, c.StartTime)
	}
	switch c.Allocation.ObjectiveType {
	case "", "quadratic_absolute", "quadratic_relative", "linear_absolute", "linear_relative":
	default:
		return chk.Err("config: allocation.objective_type %q is not one of quadratic_absolute|quadratic_relative|linear_absolute|linear_relative", c.Allocation.ObjectiveType)
	}
	switch c.Logging.Verbosity {
	case "", "debug", "info", "warn", "error":
	default:
		return chk.Err("config: logging.verbosity %q is not one of debug|info|warn|error", c.Logging.Verbosity)
	}
	if c.Database == "" {
		return chk.Err("config: database path is required")
	}
	return nil
}
