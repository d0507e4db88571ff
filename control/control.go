// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package control implements DiscreteControl transition semantics:
// truth-state bit flips on a zero crossing, logic-mapping lookup
// with wildcard expansion, and atomic application of the pre-built
// ScalarUpdate descriptors to every controlled node.
package control

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/hydrocore/ribasim/node"
)

// ExpandWildcards expands every `*` in a logic-mapping key into all 2^k
// concrete T/F combinations for the k wildcard positions it contains,
// validating that no other character outside {T,F,*} appears and that no
// two expansions of (possibly different) keys disagree on the same
// concrete truth state.
func ExpandWildcards(mapping map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(mapping))
	for key, state := range mapping {
		wild := make([]int, 0)
		for i := 0; i < len(key); i++ {
			switch key[i] {
			case 'T', 'F':
			case '*':
				wild = append(wild, i)
			default:
				return nil, chk.Err("control: logic mapping key %q has invalid character %q, only T, F and * are allowed", key, string(key[i]))
			}
		}
		for _, concrete := range expand(key, wild) {
			if prev, ok := out[concrete]; ok && prev != state {
				return nil, chk.Err("control: truth state %q maps to both %q and %q after wildcard expansion", concrete, prev, state)
			}
			out[concrete] = state
		}
	}
	return out, nil
}

// expand enumerates every T/F assignment of the wildcard positions in key.
func expand(key string, wild []int) []string {
	if len(wild) == 0 {
		return []string{key}
	}
	n := 1 << uint(len(wild))
	out := make([]string, 0, n)
	buf := []byte(key)
	for mask := 0; mask < n; mask++ {
		for bit, pos := range wild {
			if mask&(1<<uint(bit)) != 0 {
				buf[pos] = 'T'
			} else {
				buf[pos] = 'F'
			}
		}
		out = append(out, string(buf))
	}
	sort.Strings(out)
	return out
}

// Controller evaluates DiscreteControl transitions against a catalogue and
// appends transition records to an in-memory event log.
type Controller struct {
	Cat    *node.Catalogue
	Events []node.Event

	expanded []map[string]string // one per DiscreteControl, built by NewController
}

// NewController returns a Controller over cat, expanding every
// DiscreteControl's logic mapping up front so a fatal duplicate surfaces
// before the run starts rather than mid-simulation.
func NewController(cat *node.Catalogue) (*Controller, error) {
	tbl := cat.DiscreteControl
	expanded := make([]map[string]string, len(tbl.ExternalID))
	for i, m := range tbl.LogicMapping {
		exp, err := ExpandWildcards(m)
		if err != nil {
			return nil, chk.Err("control: discrete control %d: %v", tbl.ExternalID[i], err)
		}
		expanded[i] = exp
	}
	return &Controller{Cat: cat, expanded: expanded}, nil
}

// Flip flips bit (variableIndex, thresholdIndex) of DiscreteControl i's flat
// truth state, evaluates the new control state, and — if it differs from
// the current one — applies every controlled node's ScalarUpdate for that
// state and appends an Event.
func (c *Controller) Flip(i, variableIndex, thresholdIndex int, t float64) error {
	tbl := c.Cat.DiscreteControl
	flat := flatIndex(tbl.CompoundVars[i], variableIndex, thresholdIndex)
	bits := tbl.TruthState[i]
	bits[flat] = !bits[flat]

	key := node.TruthStateString(bits)
	state, ok := c.expanded[i][key]
	if !ok {
		return chk.Err("control: discrete control %d has no logic mapping entry for truth state %q", tbl.ExternalID[i], key)
	}
	if state == tbl.CurrentState[i] {
		return nil
	}
	tbl.CurrentState[i] = state
	for _, id := range tbl.ControlledNodes[i] {
		c.Cat.ApplyControlState(id, state)
	}
	c.Events = append(c.Events, node.Event{
		Time:          t,
		ControlNodeID: tbl.ExternalID[i],
		TruthState:    key,
		ControlState:  state,
	})
	return nil
}

// flatIndex maps a (compound-variable, threshold) pair to its position in
// the flat Σ_k |thresholds_k| truth-state bit vector.
func flatIndex(vars []node.CompoundVariable, variableIndex, thresholdIndex int) int {
	off := 0
	for v := 0; v < variableIndex; v++ {
		off += len(vars[v].GreaterThan)
	}
	return off + thresholdIndex
}
