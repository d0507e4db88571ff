// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"github.com/hydrocore/ribasim/graph"
	"github.com/hydrocore/ribasim/node"
)

// Head returns the current level at id, whichever kind id is: a Basin's
// cached current level, or a LevelBoundary's time-sampled level. Any other
// kind is a programmer error (flow laws only ever look up head at a Basin
// or LevelBoundary endpoint).
func Head(cat *node.Catalogue, id graph.NodeID, t float64) float64 {
	switch node.Kind(id.Kind) {
	case node.KindBasin:
		return cat.Basin.CurrentLevel[id.InternalIndex-1]
	case node.KindLevelBoundary:
		return cat.LevelBoundary.Level[id.InternalIndex-1].At(t)
	default:
		return 0
	}
}

// Storage returns the current storage at id if it is a Basin, else +Inf
// (boundaries never limit flow by storage).
func Storage(cat *node.Catalogue, id graph.NodeID) float64 {
	if node.Kind(id.Kind) == node.KindBasin {
		i := id.InternalIndex - 1
		return cat.Basin.Profile[i].LevelToStorage(cat.Basin.CurrentLevel[i])
	}
	return 1e18
}
