// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortRowsOrdersByPrimaryThenSecondaryColumn(t *testing.T) {
	rows := []map[string]any{
		{"node_id": int64(1), "level": 2.0},
		{"node_id": int64(1), "level": 0.0},
		{"node_id": int64(2), "level": 1.0},
		{"node_id": int64(1), "level": 1.0},
	}
	sortRows(rows, "node_id", "level")

	assert.Equal(t, []map[string]any{
		{"node_id": int64(1), "level": 0.0},
		{"node_id": int64(1), "level": 1.0},
		{"node_id": int64(1), "level": 2.0},
		{"node_id": int64(2), "level": 1.0},
	}, rows)
}

func TestSortRowsHandlesMissingSecondaryColumn(t *testing.T) {
	rows := []map[string]any{
		{"node_id": int64(2)},
		{"node_id": int64(1)},
	}
	sortRows(rows, "node_id", "priority")
	assert.Equal(t, int64(1), rows[0]["node_id"])
	assert.Equal(t, int64(2), rows[1]["node_id"])
}

func TestSortRowsTimeThenNodeID(t *testing.T) {
	rows := []map[string]any{
		{"node_id": int64(2), "time": 10.0},
		{"node_id": int64(1), "time": 5.0},
		{"node_id": int64(1), "time": 0.0},
	}
	sortRows(rows, "time", "node_id")
	assert.Equal(t, 0.0, rows[0]["time"])
	assert.Equal(t, 5.0, rows[1]["time"])
	assert.Equal(t, 10.0, rows[2]["time"])
}
