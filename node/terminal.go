// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

// Terminals is the record-of-arrays table for KindTerminal: a pure sink
// with no parameters or state, carrying only identity.
type Terminals struct {
	ExternalID []int32
	Active     []bool
}

// NewTerminals allocates a table of size n.
func NewTerminals(n int) *Terminals {
	t := &Terminals{
		ExternalID: make([]int32, n),
		Active:     make([]bool, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}
