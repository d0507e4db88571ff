// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocore/ribasim/interp"
)

func TestApplyScheduledCurvesInstallsMostRecentRow(t *testing.T) {
	low, err := interp.NewRatingCurve([]float64{0, 1}, []float64{0, 1})
	require.NoError(t, err)
	high, err := interp.NewRatingCurve([]float64{0, 2}, []float64{0, 10})
	require.NoError(t, err)

	tbl := NewTabulatedRatingCurves(1)
	tbl.Table[0] = interp.NewHandle(low)
	tbl.TimeTable[0] = []ScheduledCurve{
		{Time: 0, Curve: low},
		{Time: 100, Curve: high},
	}

	assert.False(t, tbl.ApplyScheduledCurves(0, -1), "no row is due before the first scheduled time")
	assert.Equal(t, 1.0, tbl.Table[0].At(1))

	assert.True(t, tbl.ApplyScheduledCurves(0, 50))
	assert.Equal(t, 1.0, tbl.Table[0].At(1), "t=50 is still before the second row")

	assert.True(t, tbl.ApplyScheduledCurves(0, 100))
	assert.Equal(t, 5.0, tbl.Table[0].At(1), "t=100 must install the second row wholesale, not blend toward it")

	assert.True(t, tbl.ApplyScheduledCurves(0, 1000))
	assert.Equal(t, 5.0, tbl.Table[0].At(1), "the most recent row stays installed past its own time")
}
