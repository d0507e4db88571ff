// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "github.com/cpmech/gosl/chk"

// ValueHandle is a stable-length slice over one of the Model's arrays, or
// over a snapshot copy of one (see GetValuePtr), the Go analogue's "get_value_ptr(model, name) ... returns
// a stable-length handle valid until finalize". Index order matches the
// node kind's table order (ExternalID order), fixed at initialize.
type ValueHandle struct {
	values []float64
}

// Len reports the handle's fixed length.
func (h *ValueHandle) Len() int { return len(h.values) }

// At reads element i.
func (h *ValueHandle) At(i int) float64 { return h.values[i] }

// Set writes element i. It reaches the model directly only for the live
// handles (basin.storage, basin.level); a basin.infiltration or
// basin.drainage handle takes effect once passed to CommitForcingHandle.
func (h *ValueHandle) Set(i int, v float64) { h.values[i] = v }

// GetValuePtr returns the handle for one of the seven supported names.
// basin.storage is backed directly by the packed state vector so writes
// through it are visible to the integrator on the next step, and
// basin.level is backed directly by the basins' CurrentLevel cache; every
// other name returns a snapshot copy taken at the call.
// basin.infiltration/basin.drainage writes are applied through
// CommitForcingHandle.
func (m *Model) GetValuePtr(name string) (*ValueHandle, error) {
	switch name {
	case "basin.storage":
		return &ValueHandle{values: m.State.Y[:m.Cat.NumBasins()]}, nil
	case "basin.level":
		return &ValueHandle{values: m.Cat.Basin.CurrentLevel}, nil
	case "basin.infiltration":
		return m.basinForcingHandle(infiltrationField), nil
	case "basin.drainage":
		return m.basinForcingHandle(drainageField), nil
	case "basin.subgrid_level":
		return &ValueHandle{values: m.subgridLevels()}, nil
	case "user_demand.demand":
		return &ValueHandle{values: m.userDemandDemands()}, nil
	case "user_demand.realized":
		return &ValueHandle{values: m.userDemandRealized()}, nil
	default:
		return nil, chk.Err("engine: get_value_ptr: unknown name %q", name)
	}
}

type forcingField int

const (
	infiltrationField forcingField = iota
	drainageField
)

// basinForcingHandle copies the requested forcing scalar out of every
// basin's Forcing record into a flat slice; a struct-of-arrays table with
// interleaved struct elements has no single contiguous scalar column to
// alias, so the round trip goes through CommitForcingHandle instead of a
// live pointer.
func (m *Model) basinForcingHandle(which forcingField) *ValueHandle {
	n := m.Cat.NumBasins()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		switch which {
		case infiltrationField:
			out[i] = m.Cat.Basin.Forcing[i].Infiltration
		case drainageField:
			out[i] = m.Cat.Basin.Forcing[i].Drainage
		}
	}
	return &ValueHandle{values: out}
}

// CommitForcingHandle writes a basin.infiltration or basin.drainage handle
// back into the catalogue, the second half of a get_value_ptr round trip.
func (m *Model) CommitForcingHandle(which string, h *ValueHandle) error {
	n := m.Cat.NumBasins()
	if h.Len() != n {
		return chk.Err("engine: commit %s: handle length %d does not match basin count %d", which, h.Len(), n)
	}
	for i := 0; i < n; i++ {
		switch which {
		case "basin.infiltration":
			m.Cat.Basin.Forcing[i].Infiltration = h.At(i)
		case "basin.drainage":
			m.Cat.Basin.Forcing[i].Drainage = h.At(i)
		default:
			return chk.Err("engine: commit: unknown writable name %q", which)
		}
	}
	return nil
}

func (m *Model) subgridLevels() []float64 {
	if m.subgrid == nil || m.subgrid.Len() == 0 {
		out := make([]float64, m.Cat.NumBasins())
		copy(out, m.Cat.Basin.CurrentLevel)
		return out
	}
	return m.subgrid.Sample(m.Cat.Basin.CurrentLevel)
}

func (m *Model) userDemandDemands() []float64 {
	ud := m.Cat.UserDemand
	out := make([]float64, len(ud.ExternalID))
	for i := range ud.ExternalID {
		var total float64
		for _, itp := range ud.DemandItp[i] {
			total += itp.At(m.current)
		}
		out[i] = total
	}
	return out
}

func (m *Model) userDemandRealized() []float64 {
	out := make([]float64, len(m.Cat.UserDemand.ExternalID))
	copy(out, m.Cat.UserDemand.Realized)
	return out
}
