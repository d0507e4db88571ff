// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

// ScalarUpdate is a pre-built update descriptor for a control state: rather
// than holding a smart pointer into a node field, it closes over the array
// slot to assign and applies the change atomically when the control state
// changes. Apply writes Value into the array slot it closes over.
type ScalarUpdate struct {
	Active           *bool   // nil if the active flag is not changed by this state
	Assign           []func(value float64)
	Values           []float64
	InterpolantSwaps []func()
}

// Apply performs the atomic parameter update associated with a control
// state: overwrite the active flag (if set), assign each scalar, and swap
// each interpolant handle. All three happen in the order
// describes for a DiscreteControl transition.
func (u ScalarUpdate) Apply(setActive func(bool)) {
	if u.Active != nil {
		setActive(*u.Active)
	}
	for i, fn := range u.Assign {
		fn(u.Values[i])
	}
	for _, swap := range u.InterpolantSwaps {
		swap()
	}
}
