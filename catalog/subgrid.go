// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"github.com/cpmech/gosl/chk"

	"github.com/hydrocore/ribasim/node"
	"github.com/hydrocore/ribasim/subgrid"
)

// LoadSubgrid reads the BasinSubgrid static table (subgrid_id, node_id,
// basin_level, subgrid_level rows, one group per subgrid element) and
// builds a subgrid.Table against the already-loaded basin catalogue. It is
// not one of the kindLoaders Load runs automatically since a subgrid
// element is not itself a graph node, just a static rating attached to one.
func LoadSubgrid(src Catalog, cat *node.Catalogue) (*subgrid.Table, error) {
	rows, err := src.StaticRows("BasinSubgrid")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return subgrid.New(nil, nil, nil, nil)
	}

	basinIndexByExternalID := make(map[int32]int, len(cat.Basin.ExternalID))
	for i, id := range cat.Basin.ExternalID {
		basinIndexByExternalID[id] = i
	}

	order := make([]int32, 0)
	basinLevels := map[int32][]float64{}
	subgridLevels := map[int32][]float64{}
	basinIndexOf := map[int32]int{}
	seen := map[int32]bool{}
	var errs MultiError
	for _, r := range rows {
		subgridID := int32(i64(r["subgrid_id"]))
		nodeID := int32(i64(r["node_id"]))
		bi, ok := basinIndexByExternalID[nodeID]
		if !ok {
			errs = append(errs, chk.Err("catalog: BasinSubgrid element %d references node_id %d, which is not a Basin", subgridID, nodeID))
			continue
		}
		if !seen[subgridID] {
			seen[subgridID] = true
			order = append(order, subgridID)
			basinIndexOf[subgridID] = bi
		}
		basinLevels[subgridID] = append(basinLevels[subgridID], f64(r["basin_level"]))
		subgridLevels[subgridID] = append(subgridLevels[subgridID], f64(r["subgrid_level"]))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	ids := make([]int32, len(order))
	basinIndices := make([]int, len(order))
	levelsArg := make([][]float64, len(order))
	subgridArg := make([][]float64, len(order))
	for i, id := range order {
		ids[i] = id
		basinIndices[i] = basinIndexOf[id]
		levelsArg[i] = basinLevels[id]
		subgridArg[i] = subgridLevels[id]
	}
	return subgrid.New(ids, basinIndices, levelsArg, subgridArg)
}
