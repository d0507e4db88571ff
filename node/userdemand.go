// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

// UserDemands is the record-of-arrays table for KindUserDemand:
// per priority p a demand curve d_p(t); the ODE's effective
// abstraction is min(allocated_p, d_p(t)) summed over p, damped by a
// low-storage factor on the source basin and a smooth factor on
// (source_level - min_level); return flow = return_factor * abstraction.
type UserDemands struct {
	ExternalID   []int32
	Active       []bool
	Priorities   [][]int          // ascending priority numbers this user has a demand at
	DemandItp    [][]Interpolant  // demand_itp[user][priorityIdx](t)
	Allocated    [][]float64      // allocated[user][priorityIdx], written by allocation
	ReturnFactor []float64
	MinLevel     []float64

	// Realized is what get_value_ptr("user_demand.realized") reports. No
	// code in the module writes it, so it keeps the zeros NewUserDemands
	// allocates; the abstraction achieved is not accumulated into it.
	Realized []float64
}

// NewUserDemands allocates a table of size n.
func NewUserDemands(n int) *UserDemands {
	t := &UserDemands{
		ExternalID:   make([]int32, n),
		Active:       make([]bool, n),
		Priorities:   make([][]int, n),
		DemandItp:    make([][]Interpolant, n),
		Allocated:    make([][]float64, n),
		ReturnFactor: make([]float64, n),
		MinLevel:     make([]float64, n),
		Realized:     make([]float64, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// EffectiveAbstraction sums min(allocated_p, demand_p(t)) over every
// priority this user has, before basin/level damping is applied.
func (t *UserDemands) EffectiveAbstraction(i int, time float64) float64 {
	total := 0.0
	for p := range t.Priorities[i] {
		d := t.DemandItp[i][p].At(time)
		a := t.Allocated[i][p]
		if a < d {
			total += a
		} else {
			total += d
		}
	}
	return total
}
