// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

func ratingCurveController(t *testing.T, mapping map[string]string) (*Controller, graph.NodeID) {
	t.Helper()
	cat := node.NewCatalogue()
	cat.DiscreteControl = node.NewDiscreteControls(1)
	cat.DiscreteControl.CompoundVars[0] = []node.CompoundVariable{{GreaterThan: []float64{0.5}}}
	cat.DiscreteControl.TruthState[0] = []bool{false}
	cat.DiscreteControl.LogicMapping[0] = mapping
	cat.DiscreteControl.CurrentState[0] = "high"
	ratingCurve := node.ID(node.KindTabulatedRatingCurve, 10, 1)
	cat.DiscreteControl.ControlledNodes[0] = []graph.NodeID{ratingCurve}
	cat.TabulatedRatingCurve = node.NewTabulatedRatingCurves(1)
	cat.TabulatedRatingCurve.ControlMapping[0] = map[string]node.ScalarUpdate{}

	ctrl, err := NewController(cat)
	require.NoError(t, err)
	return ctrl, ratingCurve
}

func TestFlipAppliesControlStateAndRecordsEvent(t *testing.T) {
	ctrl, _ := ratingCurveController(t, map[string]string{"F": "high", "T": "low"})
	require.NoError(t, ctrl.Flip(0, 0, 0, 5.0))

	require.Len(t, ctrl.Events, 1)
	assert.Equal(t, "low", ctrl.Events[0].ControlState)
	assert.Equal(t, "T", ctrl.Events[0].TruthState)
	assert.Equal(t, 5.0, ctrl.Events[0].Time)
	assert.Equal(t, "low", ctrl.Cat.DiscreteControl.CurrentState[0])
}

// TestFlipFailsFatallyOnMissingMapping confirms a reached truth state with
// no logic-mapping entry surfaces as an error rather than being silently
// absorbed: callers must propagate this rather than continue with a stale
// control state.
func TestFlipFailsFatallyOnMissingMapping(t *testing.T) {
	ctrl, _ := ratingCurveController(t, map[string]string{"F": "high"})
	err := ctrl.Flip(0, 0, 0, 5.0)
	require.Error(t, err)
	assert.Empty(t, ctrl.Events, "no event should be recorded for a fatal transition")
}

func TestExpandWildcardsRejectsConflictingExpansions(t *testing.T) {
	_, err := ExpandWildcards(map[string]string{"T*": "a", "TT": "b"})
	require.Error(t, err)
}

func TestExpandWildcardsRejectsInvalidCharacter(t *testing.T) {
	_, err := ExpandWildcards(map[string]string{"TX": "a"})
	require.Error(t, err)
}

func TestExpandWildcardsExpandsAllCombinations(t *testing.T) {
	out, err := ExpandWildcards(map[string]string{"*T": "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", out["FT"])
	assert.Equal(t, "a", out["TT"])
}
