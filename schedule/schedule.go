// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedule implements the network's callback stream as an explicit
// scheduler: a min-priority queue of pre-scheduled time callbacks (forcing,
// rating-curve, allocation, output) plus a hook for the continuous
// zero-crossing events DiscreteControl evaluates between integrator steps.
// It is single-threaded and cooperative: a callback runs to completion
// before the next is popped, rather than hiding control flow in goroutines
// or channels.
package schedule

import (
	"container/heap"

	"github.com/cpmech/gosl/chk"
)

// Callback is invoked at its scheduled instant. Handlers are atomic with
// respect to the integrator state: they may mutate UserDemand.allocated,
// node active flags, static parameters and interpolants, but must leave
// state-vector length and graph topology unchanged.
type Callback func(t float64)

// entry is one item of the min-priority queue, ordered by Time then by a
// fixed kind rank so Forcing/RatingCurve always run before Allocation,
// Allocation before DiscreteControl, DiscreteControl before Output at a
// shared instant.
type entry struct {
	Time     float64
	Rank     int
	Fn       Callback
	Periodic bool
	Period   float64
	index    int // heap bookkeeping
}

// Kind ranks, in the order they must run at a shared instant.
const (
	RankForcing = iota
	RankRatingCurve
	RankAllocation
	RankDiscreteControl
	RankOutput
)

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Rank < h[j].Rank
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler holds the pending callback queue and drives it forward in
// lockstep with the integrator's accepted steps.
type Scheduler struct {
	queue entryHeap
}

// New returns an empty Scheduler.
func New() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.queue)
	return s
}

// At schedules fn to run exactly once at time t.
func (s *Scheduler) At(t float64, rank int, fn Callback) {
	heap.Push(&s.queue, &entry{Time: t, Rank: rank, Fn: fn})
}

// AtEach schedules fn once at every timestamp in times, typically the
// distinct timestamps found in a forcing or rating-curve time table.
func (s *Scheduler) AtEach(times []float64, rank int, fn Callback) {
	for _, t := range times {
		s.At(t, rank, fn)
	}
}

// Every schedules fn to run periodically with period every, starting at
// first, re-arming itself after each firing (allocation and output
// callbacks use this).
func (s *Scheduler) Every(first, every float64, rank int, fn Callback) {
	if every <= 0 {
		chk.Panic("schedule: periodic callback must have a positive period, got %g", every)
	}
	heap.Push(&s.queue, &entry{Time: first, Rank: rank, Fn: fn, Periodic: true, Period: every})
}

// NextTime returns the time of the next pending callback and whether the
// queue is non-empty; the integrator uses this to cap its next step so it
// never steps over a scheduled instant.
func (s *Scheduler) NextTime() (float64, bool) {
	if len(s.queue) == 0 {
		return 0, false
	}
	return s.queue[0].Time, true
}

// RunDue pops and runs every callback scheduled at exactly t, in rank
// order, re-arming periodic ones. The integrator calls this once it has
// accepted a step landing on t: callbacks are atomic with respect to the
// integrator state, so this only ever runs between steps.
func (s *Scheduler) RunDue(t float64) {
	for len(s.queue) > 0 && s.queue[0].Time == t {
		e := heap.Pop(&s.queue).(*entry)
		e.Fn(t)
		if e.Periodic {
			e.Time = t + e.Period
			heap.Push(&s.queue, e)
		}
	}
}

// ZeroCrossing is the signature DiscreteControl's continuous-event
// detector satisfies: given the state at the start and end of an accepted
// step, it returns the (sub-variable, threshold) pairs whose value crossed
// zero, used by the control package to flip truth-state bits between the
// Forcing/RatingCurve/Allocation pass and the Output pass of the same
// instant.
type ZeroCrossing func(tPrev, tNow float64) []Crossing

// Crossing identifies one threshold crossing event.
type Crossing struct {
	ControlIndex   int
	VariableIndex  int
	ThresholdIndex int
}

// Detector wraps a ZeroCrossing function so it can be invoked from the
// integrator loop without the scheduler needing to know about
// node.DiscreteControls.
type Detector struct {
	Detect ZeroCrossing
}
