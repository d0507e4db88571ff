// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPiecewiseLinearInterpolates(t *testing.T) {
	p, err := New([]float64{0, 10, 20}, []float64{0, 100, 100})
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.At(5))
	assert.Equal(t, 100.0, p.At(15))
}

func TestPiecewiseLinearClampsOutsideRange(t *testing.T) {
	p, err := New([]float64{0, 10}, []float64{5, 15})
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.At(-100))
	assert.Equal(t, 15.0, p.At(100))
}

func TestPiecewiseLinearRejectsNonIncreasingTimes(t *testing.T) {
	_, err := New([]float64{0, 5, 5}, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestPiecewiseLinearPanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		New([]float64{0, 1}, []float64{1})
	})
}

func TestMostRecentRowBefore(t *testing.T) {
	times := []float64{0, 10, 20}
	assert.Equal(t, -1, MostRecentRowBefore(times, -1))
	assert.Equal(t, 0, MostRecentRowBefore(times, 5))
	assert.Equal(t, 1, MostRecentRowBefore(times, 10))
	assert.Equal(t, 2, MostRecentRowBefore(times, 25))
}

func TestHandleSwap(t *testing.T) {
	h := NewHandle(Constant(1))
	assert.Equal(t, 1.0, h.At(0))
	h.Set(Constant(2))
	assert.Equal(t, 2.0, h.At(0))
}

func TestRatingCurveExtrapolatesWithTopSlope(t *testing.T) {
	c, err := NewRatingCurve([]float64{0, 1, 2}, []float64{0, 10, 30})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.At(-5))
	assert.Equal(t, 50.0, c.At(3))
}

func TestRatingCurveRejectsDecreasingLevels(t *testing.T) {
	_, err := NewRatingCurve([]float64{0, 1, 1}, []float64{0, 1, 2})
	require.Error(t, err)
}
