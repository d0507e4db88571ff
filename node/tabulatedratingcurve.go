// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "github.com/hydrocore/ribasim/interp"

// TabulatedRatingCurves is the record-of-arrays table for
// KindTabulatedRatingCurve. Flow law: q = table(h_upstream)
// times a low-storage reduction factor; the table may be replaced wholesale
// by the rating-curve update callback.
type TabulatedRatingCurves struct {
	ExternalID []int32
	Active     []bool
	Table      []*interp.Handle // wraps *interp.TabulatedRatingCurve

	// TimeTable holds, per node, the (time, curve) schedule driving the
	// rating-curve update callback; empty if the table is static.
	TimeTable [][]ScheduledCurve

	ControlMapping []map[string]ScalarUpdate
}

// ScheduledCurve is one pre-scheduled rating-curve replacement.
type ScheduledCurve struct {
	Time  float64
	Curve *interp.TabulatedRatingCurve
}

// NewTabulatedRatingCurves allocates a table of size n.
func NewTabulatedRatingCurves(n int) *TabulatedRatingCurves {
	t := &TabulatedRatingCurves{
		ExternalID:     make([]int32, n),
		Active:         make([]bool, n),
		Table:          make([]*interp.Handle, n),
		TimeTable:      make([][]ScheduledCurve, n),
		ControlMapping: make([]map[string]ScalarUpdate, n),
	}
	for i := range t.Active {
		t.Active[i] = true
	}
	return t
}

// ApplyScheduledCurves installs the most recent scheduled curve at or
// before t0 into Table[i] (TimeTable[i] is kept sorted by Time ascending
// by the loader), replacing whatever curve is currently wrapped; returns
// true if a row was due. Called by the rating-curve update callback.
func (t *TabulatedRatingCurves) ApplyScheduledCurves(i int, t0 float64) bool {
	rows := t.TimeTable[i]
	if len(rows) == 0 {
		return false
	}
	times := make([]float64, len(rows))
	for k, sc := range rows {
		times[k] = sc.Time
	}
	idx := interp.MostRecentRowBefore(times, t0)
	if idx < 0 {
		return false
	}
	t.Table[i].Set(rows[idx].Curve)
	return true
}
