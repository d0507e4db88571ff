// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package catalog implements the read-only Catalog adapter:
// it produces node records, edges, and per-kind static/time tables from the
// on-disk input store, and validates schema rules before anything
// downstream ever sees a malformed row. The default backing store
// is a SQLite database opened through modernc.org/sqlite (pure Go, no
// cgo), handed to the engine as a read-only adapter.
package catalog

import (
	"database/sql"
	"sort"

	"github.com/cpmech/gosl/chk"
	_ "modernc.org/sqlite"
)

// NodeRecord is one row of the Node table.
type NodeRecord struct {
	FID          int32
	NodeType     string
	SubnetworkID *int32
}

// EdgeRecord is one row of the Edge table.
type EdgeRecord struct {
	FID          int32
	FromNodeType string
	FromNodeID   int32
	ToNodeType   string
	ToNodeID     int32
	EdgeType     string // "flow" | "control"
	SubnetworkID *int32
}

// Catalog is the read-only interface the rest of the module consumes; the
// core never imports database/sql directly outside this package.
type Catalog interface {
	Nodes() ([]NodeRecord, error)
	Edges() ([]EdgeRecord, error)
	StaticRows(kind string) ([]map[string]any, error)
	TimeRows(kind string) ([]map[string]any, error)
	Close() error
}

// SQLiteCatalog is the default Catalog backed by a SQLite database opened
// read-only.
type SQLiteCatalog struct {
	db *sql.DB
}

// Open opens path as a read-only SQLite catalog.
func Open(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, chk.Err("catalog: opening %q: %v", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, chk.Err("catalog: connecting to %q: %v", path, err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) Close() error { return c.db.Close() }

// Nodes reads the Node table, sorted by fid (node_id).
func (c *SQLiteCatalog) Nodes() ([]NodeRecord, error) {
	rows, err := c.db.Query(`SELECT fid, node_type, subnetwork_id FROM Node ORDER BY fid`)
	if err != nil {
		return nil, chk.Err("catalog: reading Node table: %v", err)
	}
	defer rows.Close()
	var out []NodeRecord
	for rows.Next() {
		var r NodeRecord
		var sub sql.NullInt64
		if err := rows.Scan(&r.FID, &r.NodeType, &sub); err != nil {
			return nil, chk.Err("catalog: scanning Node row: %v", err)
		}
		if sub.Valid {
			v := int32(sub.Int64)
			r.SubnetworkID = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Edges reads the Edge table, sorted by fid.
func (c *SQLiteCatalog) Edges() ([]EdgeRecord, error) {
	rows, err := c.db.Query(`SELECT fid, from_node_type, from_node_id, to_node_type, to_node_id, edge_type, subnetwork_id FROM Edge ORDER BY fid`)
	if err != nil {
		return nil, chk.Err("catalog: reading Edge table: %v", err)
	}
	defer rows.Close()
	var out []EdgeRecord
	for rows.Next() {
		var r EdgeRecord
		var sub sql.NullInt64
		if err := rows.Scan(&r.FID, &r.FromNodeType, &r.FromNodeID, &r.ToNodeType, &r.ToNodeID, &r.EdgeType, &sub); err != nil {
			return nil, chk.Err("catalog: scanning Edge row: %v", err)
		}
		if sub.Valid {
			v := int32(sub.Int64)
			r.SubnetworkID = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// staticSecondarySort names, per kind, the column profile/priority rows
// must additionally be ordered by after node_id: BasinProfile and
// TabulatedRatingCurve rows must climb in level for their interpolants'
// strictly-increasing-level invariant, UserDemand rows are grouped
// ascending by priority so Priorities[i]/DemandItp[i] are built in
// ascending-priority order.
var staticSecondarySort = map[string]string{
	"BasinProfile":         "level",
	"TabulatedRatingCurve": "level",
	"UserDemand":           "priority",
}

// StaticRows reads every row of `{kind}Static` as a column-name-keyed map,
// sorted by node_id, then by the kind's secondary column (level or
// priority) when one applies.
func (c *SQLiteCatalog) StaticRows(kind string) ([]map[string]any, error) {
	rows, err := c.genericRows(kind + "Static")
	if err != nil {
		return nil, err
	}
	keys := []string{"node_id"}
	if sec := staticSecondarySort[kind]; sec != "" {
		keys = append(keys, sec)
	}
	sortRows(rows, keys...)
	return rows, nil
}

// TimeRows reads every row of `{kind}Time`, sorted by (time, node_id) so
// every node's rows come out climbing in time, which loaders rely on when
// grouping rows per node into a single interpolant.
func (c *SQLiteCatalog) TimeRows(kind string) ([]map[string]any, error) {
	rows, err := c.genericRows(kind + "Time")
	if err != nil {
		return nil, err
	}
	sortRows(rows, "time", "node_id")
	return rows, nil
}

func (c *SQLiteCatalog) genericRows(table string) ([]map[string]any, error) {
	rows, err := c.db.Query(`SELECT * FROM ` + table)
	if err != nil {
		return nil, chk.Err("catalog: reading %s: %v", table, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, chk.Err("catalog: columns of %s: %v", table, err)
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, chk.Err("catalog: scanning %s row: %v", table, err)
		}
		m := make(map[string]any, len(cols))
		for i, name := range cols {
			m[name] = vals[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// sortRows stably sorts rows by each named column in turn, a row missing a
// column simply falling through to the next key; used to apply a
// multi-column ORDER BY after the fact since genericRows reads every
// `{kind}{Static,Time}` table with a plain SELECT *.
func sortRows(rows []map[string]any, keys ...string) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			vi, oki := rows[i][k]
			vj, okj := rows[j][k]
			if !oki || !okj || vi == nil || vj == nil {
				continue
			}
			a, b := asFloat64(vi), asFloat64(vj)
			if a != b {
				return a < b
			}
		}
		return false
	})
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	default:
		return 0
	}
}
