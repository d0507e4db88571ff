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

// fullReduction stands in for the low-depth damping ramp; unused here since
// the only forcing term under test (precipitation) isn't damped by depth.
func fullReduction(float64, float64) float64 { return 1 }

// TestVerticalFluxAccumulatesPrecipitationOverFixedTopArea drives a single
// basin with no edges through an hour of constant precipitation, then an
// hour of none, stepping VerticalFlux forward by forward Euler at dt=1s (the
// flux here doesn't depend on storage, so the step size doesn't bias the
// integral). A flat area=[1000,1000] profile means the fixed top area
// and current area coincide.
func TestVerticalFluxAccumulatesPrecipitationOverFixedTopArea(t *testing.T) {
	profile, err := NewProfile([]float64{0, 1}, []float64{1000, 1000})
	require.NoError(t, err)

	b := NewBasins(1)
	b.Profile[0] = profile
	b.BottomLevel[0] = profile.Level[0]
	b.SetForcingInterpolants(0, interp.Constant(0.001), nil, nil, nil, nil)

	storage := 0.0
	const dt = 1.0
	for step := 0; step < 3600; step++ {
		tNow := float64(step) * dt
		b.RefreshForcing(0, tNow)
		b.RefreshLevelArea(0, storage)
		net := b.VerticalFlux(0, fullReduction)
		storage += net * dt
	}

	assert.InDelta(t, 3600.0, storage, 1e-3)
	b.RefreshLevelArea(0, storage)
	assert.InDelta(t, 3.6, b.CurrentLevel[0], 1e-6)

	// precipitation stops; storage must stay flat from here on.
	b.SetForcingInterpolants(0, interp.Constant(0), nil, nil, nil, nil)
	b.RefreshForcing(0, 3600)
	b.RefreshLevelArea(0, storage)
	net := b.VerticalFlux(0, fullReduction)
	assert.InDelta(t, 0.0, net, 1e-9)
}
