// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/cpmech/gosl/chk"

// FractionalFlows is the record-of-arrays table for KindFractionalFlow.
// Flow law: conservatively re-scales the inflow from its
// unique predecessor, q_out = fraction * q_in.
type FractionalFlows struct {
	ExternalID []int32
	Active     []bool
	Fraction   []float64

	ControlMapping []map[string]ScalarUpdate
}

// NewFractionalFlows allocates a table of size n.
func NewFractionalFlows(n int) *FractionalFlows {
	t := &FractionalFlows{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		Fraction:       make([]float64, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// ValidateFractionSum checks that the fractions leaving a shared
// predecessor sum to 1 +/- 1e-6 for a given control state.
func ValidateFractionSum(fractions []float64) error {
	sum := 0.0
	for _, f := range fractions {
		if f < 0 {
			return chk.Err("fractional flow: negative fraction %g", f)
		}
		sum += f
	}
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return chk.Err("fractional flow: fractions leaving a predecessor must sum to 1 +/- 1e-6, got %g", sum)
	}
	return nil
}
