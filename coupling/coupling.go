// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coupling defines the two-entry-point contract an external
// groundwater model (e.g. MODFLOW) implements to exchange data with the
// core periodically: basin storages are written out via
// Ingest, and drainage/infiltration parameters computed by the adapter are
// written back via Extract. Sign convention is positive-into-model for
// both drainage and infiltration; adapters with the opposite convention
// must negate at the boundary.
package coupling

import "github.com/cpmech/gosl/chk"

// Adapter is implemented by an external model. Errors are propagated, not
// recovered.
type Adapter interface {
	// Ingest receives the current storage of every coupled basin, indexed
	// the same way as the Exchange's basin list.
	Ingest(basinStorage []float64) error

	// Extract fills drainage and infiltration with the adapter's computed
	// values for the same basins, positive-into-model.
	Extract(drainage, infiltration []float64) error
}

// Exchange drives one Adapter over a fixed set of basins, invoked by a
// periodic callback registered on the schedule.Scheduler at schedule.RankForcing
// (it must run before the RHS reads drainage/infiltration for the step).
type Exchange struct {
	Adapter Adapter
	Basins  []int // internal indices into node.Basins the adapter couples to

	storage, drainage, infiltration []float64
}

// NewExchange allocates the per-call scratch buffers for len(basins) basins.
func NewExchange(adapter Adapter, basins []int) *Exchange {
	n := len(basins)
	return &Exchange{
		Adapter:      adapter,
		Basins:       basins,
		storage:      make([]float64, n),
		drainage:     make([]float64, n),
		infiltration: make([]float64, n),
	}
}

// Run reads storage from read, runs one ingest/extract round trip, and
// writes the returned drainage/infiltration back through write. Both
// callbacks receive the basin index stored in e.Basins, not the position
// within e.Basins.
func (e *Exchange) Run(read func(i int) float64, write func(i int, drainage, infiltration float64)) error {
	for k, i := range e.Basins {
		e.storage[k] = read(i)
	}
	if err := e.Adapter.Ingest(e.storage); err != nil {
		return chk.Err("coupling: ingest failed: %v", err)
	}
	if err := e.Adapter.Extract(e.drainage, e.infiltration); err != nil {
		return chk.Err("coupling: extract failed: %v", err)
	}
	for k, i := range e.Basins {
		write(i, e.drainage[k], e.infiltration[k])
	}
	return nil
}
