// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDueFiresInRankOrderAtASharedInstant(t *testing.T) {
	s := New()
	var order []string
	s.At(10, RankOutput, func(float64) { order = append(order, "output") })
	s.At(10, RankAllocation, func(float64) { order = append(order, "allocation") })
	s.At(10, RankDiscreteControl, func(float64) { order = append(order, "control") })
	s.At(10, RankForcing, func(float64) { order = append(order, "forcing") })
	s.At(10, RankRatingCurve, func(float64) { order = append(order, "ratingcurve") })

	s.RunDue(10)
	assert.Equal(t, []string{"forcing", "ratingcurve", "allocation", "control", "output"}, order)
}

func TestRunDueOnlyFiresExactlyDueCallbacks(t *testing.T) {
	s := New()
	fired := 0
	s.At(5, RankOutput, func(float64) { fired++ })
	s.At(10, RankOutput, func(float64) { fired++ })

	s.RunDue(5)
	assert.Equal(t, 1, fired)
	s.RunDue(10)
	assert.Equal(t, 2, fired)
}

func TestEveryReArmsAfterFiring(t *testing.T) {
	s := New()
	var times []float64
	s.Every(0, 10, RankOutput, func(t float64) { times = append(times, t) })

	s.RunDue(0)
	next, ok := s.NextTime()
	require.True(t, ok)
	assert.Equal(t, 10.0, next)

	s.RunDue(10)
	assert.Equal(t, []float64{0, 10}, times)
}

func TestAtEachSchedulesEveryTimestamp(t *testing.T) {
	s := New()
	var fired []float64
	s.AtEach([]float64{1, 2, 3}, RankRatingCurve, func(t float64) { fired = append(fired, t) })

	s.RunDue(1)
	s.RunDue(2)
	s.RunDue(3)
	assert.Equal(t, []float64{1, 2, 3}, fired)
}

func TestNextTimeReportsEmptyQueue(t *testing.T) {
	s := New()
	_, ok := s.NextTime()
	assert.False(t, ok)
}
