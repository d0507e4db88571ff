// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Profile is the invertible, strictly-increasing storage<->level
// piecewise-linear function triple (level, area, storage).
// Storage is the integral of area over level, so it is derived from the
// level/area samples rather than read directly from the catalog.
type Profile struct {
	Level   []float64
	Area    []float64
	Storage []float64
}

// NewProfile builds a Profile from (level, area) samples, integrating area
// to obtain the storage table. Area must be non-negative and monotone
// non-decreasing near the top; levels must be strictly
// increasing.
func NewProfile(level, area []float64) (*Profile, error) {
	n := len(level)
	if n < 2 || n != len(area) {
		return nil, chk.Err("basin profile: need matching level/area arrays of length >= 2, got %d/%d", n, len(area))
	}
	storage := make([]float64, n)
	for i := 1; i < n; i++ {
		if level[i] <= level[i-1] {
			return nil, chk.Err("basin profile: repeated level at index %d: %g <= %g", i, level[i], level[i-1])
		}
		if area[i] < 0 {
			return nil, chk.Err("basin profile: negative area at index %d: %g", i, area[i])
		}
		dh := level[i] - level[i-1]
		storage[i] = storage[i-1] + 0.5*(area[i-1]+area[i])*dh
	}
	return &Profile{Level: level, Area: area, Storage: storage}, nil
}

// LevelToArea samples area(h) by linear interpolation, clamped at the ends.
func (p *Profile) LevelToArea(h float64) float64 {
	return interpPair(p.Level, p.Area, h)
}

// LevelToStorage samples S(h).
func (p *Profile) LevelToStorage(h float64) float64 {
	return interpPair(p.Level, p.Storage, h)
}

// StorageToLevel inverts S(h); fatal if s is below the bottom storage
//.
func (p *Profile) StorageToLevel(s float64) float64 {
	n := len(p.Storage)
	if s < p.Storage[0]-1e-9 {
		chk.Panic("basin profile: storage %g is below the bottom storage %g", s, p.Storage[0])
	}
	if s <= p.Storage[0] {
		return p.Level[0]
	}
	if s >= p.Storage[n-1] {
		// extrapolate linearly using the top area, since storage can exceed
		// the last tabulated value during simulation (no hard ceiling).
		topArea := p.Area[n-1]
		if topArea <= 0 {
			return p.Level[n-1]
		}
		return p.Level[n-1] + (s-p.Storage[n-1])/topArea
	}
	i := sort.Search(n, func(i int) bool { return p.Storage[i] >= s })
	s0, s1 := p.Storage[i-1], p.Storage[i]
	h0, h1 := p.Level[i-1], p.Level[i]
	frac := (s - s0) / (s1 - s0)
	return h0 + frac*(h1-h0)
}

func interpPair(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.Search(n, func(i int) bool { return xs[i] >= x })
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}

// Forcing holds the current per-basin vertical-flux inputs, refreshed from
// the BasinTime interpolants by RefreshForcing on every RHS evaluation.
type Forcing struct {
	Precipitation      float64 // m/s, over the fixed top area
	PotentialEvap      float64 // m/s, damped by reduction(depth, 0.1)
	Drainage           float64 // m3/s
	Infiltration       float64 // m3/s, damped by reduction(depth, 0.1)
	UrbanRunoff        float64 // m3/s
}

// Basins is the record-of-arrays table for KindBasin, indexed 1..N.
type Basins struct {
	ExternalID []int32
	Active     []bool
	Profile    []*Profile
	Forcing    []Forcing
	ForcingItp []basinForcingItp // time tables backing Forcing, nil if constant

	// caches refreshed every RHS evaluation
	CurrentLevel []float64
	CurrentArea  []float64

	// optional cumulative integrals for reporting
	CumInflow, CumOutflow                     []float64
	CumPrecipitation, CumEvaporation          []float64
	CumDrainage, CumInfiltration              []float64

	// BottomLevel caches Profile[i].Level[0] for fast validation.
	BottomLevel []float64
}

// basinForcingItp holds the optional time-series interpolants driving a
// basin's Forcing; nil fields mean that scalar stays at its last set value.
type basinForcingItp struct {
	Precipitation, PotentialEvap, Drainage, Infiltration, UrbanRunoff Interpolant
}

// Interpolant is the minimal sampling contract basin forcing tables and
// other time-varying node parameters need; see package interp for the
// concrete implementations (PiecewiseLinear, Constant, Handle).
type Interpolant interface {
	At(t float64) float64
}

// NewBasins allocates a Basins table of size n.
func NewBasins(n int) *Basins {
	b := &Basins{
		ExternalID:       make([]int32, n),
		Active:           make([]bool, n),
		Profile:          make([]*Profile, n),
		Forcing:          make([]Forcing, n),
		ForcingItp:       make([]basinForcingItp, n),
		CurrentLevel:     make([]float64, n),
		CurrentArea:      make([]float64, n),
		CumInflow:        make([]float64, n),
		CumOutflow:       make([]float64, n),
		CumPrecipitation: make([]float64, n),
		CumEvaporation:   make([]float64, n),
		CumDrainage:      make([]float64, n),
		CumInfiltration:  make([]float64, n),
		BottomLevel:      make([]float64, n),
	}
	for i := range b.Active {
		b.Active[i] = true
	}
	return b
}

// SetForcingInterpolants wires the optional time tables for basin index i
// (0-based). A nil argument leaves that scalar constant at its last set
// value.
func (b *Basins) SetForcingInterpolants(i int, precip, evap, drain, infil, urban Interpolant) {
	b.ForcingItp[i] = basinForcingItp{precip, evap, drain, infil, urban}
}

// RefreshForcing samples every wired forcing interpolant at time t into
// Forcing[i]. rhs.System.Eval calls it on every evaluation, so forcing is
// linearly interpolated between BasinTime rows; it does not hold the most
// recent row's value until the next row's time.
func (b *Basins) RefreshForcing(i int, t float64) {
	itp := b.ForcingItp[i]
	f := &b.Forcing[i]
	if itp.Precipitation != nil {
		f.Precipitation = itp.Precipitation.At(t)
	}
	if itp.PotentialEvap != nil {
		f.PotentialEvap = itp.PotentialEvap.At(t)
	}
	if itp.Drainage != nil {
		f.Drainage = itp.Drainage.At(t)
	}
	if itp.Infiltration != nil {
		f.Infiltration = itp.Infiltration.At(t)
	}
	if itp.UrbanRunoff != nil {
		f.UrbanRunoff = itp.UrbanRunoff.At(t)
	}
}

// RefreshLevelArea recomputes CurrentLevel/CurrentArea from storage via the
// basin profile.
func (b *Basins) RefreshLevelArea(i int, storage float64) {
	p := b.Profile[i]
	h := p.StorageToLevel(storage)
	b.CurrentLevel[i] = h
	b.CurrentArea[i] = p.LevelToArea(h)
}

// VerticalFlux computes the net vertical flux (m3/s, positive into the
// basin) for basin i given its current depth above bottom:
// precipitation over the fixed top area, evaporation damped by
// the current area and a low-depth ramp, drainage, infiltration damped by
// the low-depth ramp.
func (b *Basins) VerticalFlux(i int, reduction func(x, t float64) float64) (net float64) {
	f := b.Forcing[i]
	depth := b.CurrentLevel[i] - b.BottomLevel[i]
	topArea := b.Profile[i].Area[len(b.Profile[i].Area)-1]
	damp := reduction(math.Max(depth, 0), 0.1)
	precipFlux := f.Precipitation * topArea
	evapFlux := f.PotentialEvap * b.CurrentArea[i] * damp
	infilFlux := f.Infiltration * damp
	net = precipFlux - evapFlux + f.Drainage - infilFlux + f.UrbanRunoff
	b.CumPrecipitation[i] += precipFlux
	b.CumEvaporation[i] += evapFlux
	b.CumDrainage[i] += f.Drainage
	b.CumInfiltration[i] += infilFlux
	return
}
