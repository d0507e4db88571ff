// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package output accumulates simulation results in memory and flushes each
// table to its own Arrow IPC file through github.com/apache/arrow/go/arrow
// on Close. Six tables are kept, one per output file: basin, flow, control,
// allocation, allocation_flow and subgrid_level.
package output

import (
	"os"

	"github.com/apache/arrow/go/arrow"
	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/ipc"
	"github.com/apache/arrow/go/arrow/memory"
	"github.com/cpmech/gosl/chk"
)

// BasinRow is one row of basin.arrow.
type BasinRow struct {
	Time          float64
	NodeID        int32
	Storage       float64
	Level         float64
	InflowRate    float64
	OutflowRate   float64
	Precipitation float64
	Evaporation   float64
	Drainage      float64
	Infiltration  float64
	BalanceError  float64
	RelativeError float64
}

// FlowRow is one row of flow.arrow; EdgeID is nil for the self-edges used
// to report a basin's vertical-flux total.
type FlowRow struct {
	Time       float64
	EdgeID     *int32
	FromNodeID int32
	ToNodeID   int32
	FlowRate   float64
}

// ControlRow is one row of control.arrow.
type ControlRow struct {
	Time          float64
	ControlNodeID int32
	TruthState    string
	ControlState  string
}

// AllocationRow is one row of allocation.arrow.
type AllocationRow struct {
	Time         float64
	SubnetworkID int32
	NodeID       int32
	Priority     int
	Demand       float64
	Allocated    float64
	Realized     float64
}

// AllocationFlowRow is one row of allocation_flow.arrow.
type AllocationFlowRow struct {
	Time                 float64
	EdgeID               int32
	FromNodeID, ToNodeID int32
	SubnetworkID         int32
	Priority             int
	FlowRate             float64
	OptimizationType     string
}

// SubgridLevelRow is one row of subgrid_level.arrow.
type SubgridLevelRow struct {
	Time         float64
	SubgridID    int32
	SubgridLevel float64
}

// Writer buffers every output row in memory and flushes each table to its
// own Arrow IPC file under dir on Close.
type Writer struct {
	dir string

	Basin          []BasinRow
	Flow           []FlowRow
	Control        []ControlRow
	Allocation     []AllocationRow
	AllocationFlow []AllocationFlowRow
	SubgridLevel   []SubgridLevelRow
}

// New returns a Writer that will flush into dir.
func New(dir string) *Writer {
	return &Writer{dir: dir}
}

// Close flushes every non-empty table and reports the first write error
// encountered, continuing to attempt the remaining tables regardless
//.
func (w *Writer) Close() error {
	var first error
	record := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	record(writeBasin(w.dir, w.Basin))
	record(writeFlow(w.dir, w.Flow))
	record(writeControl(w.dir, w.Control))
	record(writeAllocation(w.dir, w.Allocation))
	record(writeAllocationFlow(w.dir, w.AllocationFlow))
	record(writeSubgridLevel(w.dir, w.SubgridLevel))
	return first
}

func writeBasin(dir string, rows []BasinRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "storage", Type: arrow.PrimitiveTypes.Float64},
		{Name: "level", Type: arrow.PrimitiveTypes.Float64},
		{Name: "inflow_rate", Type: arrow.PrimitiveTypes.Float64},
		{Name: "outflow_rate", Type: arrow.PrimitiveTypes.Float64},
		{Name: "precipitation", Type: arrow.PrimitiveTypes.Float64},
		{Name: "evaporation", Type: arrow.PrimitiveTypes.Float64},
		{Name: "drainage", Type: arrow.PrimitiveTypes.Float64},
		{Name: "infiltration", Type: arrow.PrimitiveTypes.Float64},
		{Name: "balance_error", Type: arrow.PrimitiveTypes.Float64},
		{Name: "relative_error", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.Float64Builder).Append(r.Time)
		b.Field(1).(*array.Int32Builder).Append(r.NodeID)
		b.Field(2).(*array.Float64Builder).Append(r.Storage)
		b.Field(3).(*array.Float64Builder).Append(r.Level)
		b.Field(4).(*array.Float64Builder).Append(r.InflowRate)
		b.Field(5).(*array.Float64Builder).Append(r.OutflowRate)
		b.Field(6).(*array.Float64Builder).Append(r.Precipitation)
		b.Field(7).(*array.Float64Builder).Append(r.Evaporation)
		b.Field(8).(*array.Float64Builder).Append(r.Drainage)
		b.Field(9).(*array.Float64Builder).Append(r.Infiltration)
		b.Field(10).(*array.Float64Builder).Append(r.BalanceError)
		b.Field(11).(*array.Float64Builder).Append(r.RelativeError)
	}
	return flush(dir, "basin.arrow", schema, b.NewRecord())
}

func writeFlow(dir string, rows []FlowRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "edge_id", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "from_node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "to_node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "flow_rate", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.Float64Builder).Append(r.Time)
		eb := b.Field(1).(*array.Int32Builder)
		if r.EdgeID == nil {
			eb.AppendNull()
		} else {
			eb.Append(*r.EdgeID)
		}
		b.Field(2).(*array.Int32Builder).Append(r.FromNodeID)
		b.Field(3).(*array.Int32Builder).Append(r.ToNodeID)
		b.Field(4).(*array.Float64Builder).Append(r.FlowRate)
	}
	return flush(dir, "flow.arrow", schema, b.NewRecord())
}

func writeControl(dir string, rows []ControlRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "control_node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "truth_state", Type: arrow.BinaryTypes.String},
		{Name: "control_state", Type: arrow.BinaryTypes.String},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.Float64Builder).Append(r.Time)
		b.Field(1).(*array.Int32Builder).Append(r.ControlNodeID)
		b.Field(2).(*array.StringBuilder).Append(r.TruthState)
		b.Field(3).(*array.StringBuilder).Append(r.ControlState)
	}
	return flush(dir, "control.arrow", schema, b.NewRecord())
}

func writeAllocation(dir string, rows []AllocationRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "subnetwork_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "priority", Type: arrow.PrimitiveTypes.Int32},
		{Name: "demand", Type: arrow.PrimitiveTypes.Float64},
		{Name: "allocated", Type: arrow.PrimitiveTypes.Float64},
		{Name: "realized", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.Float64Builder).Append(r.Time)
		b.Field(1).(*array.Int32Builder).Append(r.SubnetworkID)
		b.Field(2).(*array.Int32Builder).Append(r.NodeID)
		b.Field(3).(*array.Int32Builder).Append(int32(r.Priority))
		b.Field(4).(*array.Float64Builder).Append(r.Demand)
		b.Field(5).(*array.Float64Builder).Append(r.Allocated)
		b.Field(6).(*array.Float64Builder).Append(r.Realized)
	}
	return flush(dir, "allocation.arrow", schema, b.NewRecord())
}

func writeAllocationFlow(dir string, rows []AllocationFlowRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "edge_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "from_node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "to_node_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "subnetwork_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "priority", Type: arrow.PrimitiveTypes.Int32},
		{Name: "flow_rate", Type: arrow.PrimitiveTypes.Float64},
		{Name: "optimization_type", Type: arrow.BinaryTypes.String},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.Float64Builder).Append(r.Time)
		b.Field(1).(*array.Int32Builder).Append(r.EdgeID)
		b.Field(2).(*array.Int32Builder).Append(r.FromNodeID)
		b.Field(3).(*array.Int32Builder).Append(r.ToNodeID)
		b.Field(4).(*array.Int32Builder).Append(r.SubnetworkID)
		b.Field(5).(*array.Int32Builder).Append(int32(r.Priority))
		b.Field(6).(*array.Float64Builder).Append(r.FlowRate)
		b.Field(7).(*array.StringBuilder).Append(r.OptimizationType)
	}
	return flush(dir, "allocation_flow.arrow", schema, b.NewRecord())
}

func writeSubgridLevel(dir string, rows []SubgridLevelRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "subgrid_id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "subgrid_level", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.Float64Builder).Append(r.Time)
		b.Field(1).(*array.Int32Builder).Append(r.SubgridID)
		b.Field(2).(*array.Float64Builder).Append(r.SubgridLevel)
	}
	return flush(dir, "subgrid_level.arrow", schema, b.NewRecord())
}

func flush(dir, name string, schema *arrow.Schema, rec arrow.Record) error {
	defer rec.Release()
	f, err := os.Create(dir + "/" + name)
	if err != nil {
		return chk.Err("output: creating %s: %v", name, err)
	}
	defer f.Close()
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	if err != nil {
		return chk.Err("output: opening arrow writer for %s: %v", name, err)
	}
	defer w.Close()
	if err := w.Write(rec); err != nil {
		return chk.Err("output: writing %s: %v", name, err)
	}
	return nil
}
