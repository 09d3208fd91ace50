// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memsource is the simplest source.Table: every column is a plain
// Go slice held in memory. It is the fixture used by tabflow's own tests
// and a reasonable starting point for small in-process analyses.
package memsource

import (
	"fmt"

	"github.com/tabflow/tabflow/source"
	"github.com/tabflow/tabflow/tf"
)

// Table is an in-memory columnar table. Build one with New and add columns
// with the typed Add*Column methods before handing it to an engine.
type Table struct {
	name    string
	numRows int64
	order   []string
	cols    map[string]column
}

type column struct {
	typ  source.ColumnType
	data interface{} // []int8, []int32, []int64, []bool, []byte, []float32, []float64, [][]float32, [][]float64
}

// New creates an empty table with the given name and row count. Every
// column added afterward must have exactly numRows entries.
func New(name string, numRows int64) *Table {
	return &Table{name: name, numRows: numRows, cols: make(map[string]column)}
}

func (t *Table) addColumn(name string, typ source.ColumnType, data interface{}, n int) {
	if int64(n) != t.numRows {
		panic(fmt.Sprintf("memsource: column %q has %d rows, table has %d", name, n, t.numRows))
	}
	if _, exists := t.cols[name]; !exists {
		t.order = append(t.order, name)
	}
	t.cols[name] = column{typ: typ, data: data}
}

func (t *Table) AddInt64Column(name string, data []int64)     { t.addColumn(name, source.TypeInt64, data, len(data)) }
func (t *Table) AddInt32Column(name string, data []int32)     { t.addColumn(name, source.TypeInt32, data, len(data)) }
func (t *Table) AddInt8Column(name string, data []int8)       { t.addColumn(name, source.TypeInt8, data, len(data)) }
func (t *Table) AddBoolColumn(name string, data []bool)       { t.addColumn(name, source.TypeBool, data, len(data)) }
func (t *Table) AddByteColumn(name string, data []byte)       { t.addColumn(name, source.TypeByte, data, len(data)) }
func (t *Table) AddFloat32Column(name string, data []float32) { t.addColumn(name, source.TypeFloat32, data, len(data)) }
func (t *Table) AddFloat64Column(name string, data []float64) { t.addColumn(name, source.TypeFloat64, data, len(data)) }
func (t *Table) AddVectorFloat64Column(name string, data [][]float64) {
	t.addColumn(name, source.TypeVectorFloat64, data, len(data))
}
func (t *Table) AddVectorFloat32Column(name string, data [][]float32) {
	t.addColumn(name, source.TypeVectorFloat32, data, len(data))
}

func (t *Table) Name() string       { return t.name }
func (t *Table) NumRows() int64     { return t.numRows }

func (t *Table) Schema() []source.ColumnInfo {
	infos := make([]source.ColumnInfo, 0, len(t.order))
	for _, name := range t.order {
		infos = append(infos, source.ColumnInfo{Name: name, Type: t.cols[name].typ})
	}
	return infos
}

// Partition splits the row space into nSlots contiguous ranges of roughly
// equal size, the last absorbing any remainder.
func (t *Table) Partition(nSlots int) []source.RowRange {
	if nSlots < 1 {
		nSlots = 1
	}
	ranges := make([]source.RowRange, 0, nSlots)
	chunk := t.numRows / int64(nSlots)
	if chunk == 0 {
		chunk = 1
	}
	var start int64
	for i := 0; i < nSlots && start < t.numRows; i++ {
		end := start + chunk
		if i == nSlots-1 || end > t.numRows {
			end = t.numRows
		}
		ranges = append(ranges, source.RowRange{Start: start, End: end})
		start = end
	}
	return ranges
}

func (t *Table) Cursor(slot int, column string) (source.Cursor, error) {
	col, ok := t.cols[column]
	if !ok {
		return nil, &source.ColumnNotFoundError{Column: column}
	}
	return &cursor{col: col}, nil
}

// cursor is intentionally stateless across slots: reading a plain Go slice
// by index needs no per-slot resources, unlike a real storage engine's
// cursor which would hold a decompression buffer or file handle per slot.
type cursor struct {
	col column
	row int64
}

func (c *cursor) Seek(row int64) error {
	c.row = row
	return nil
}

func (c *cursor) Value() (interface{}, error) {
	switch d := c.col.data.(type) {
	case []int8:
		return d[c.row], nil
	case []int32:
		return d[c.row], nil
	case []int64:
		return d[c.row], nil
	case []bool:
		return d[c.row], nil
	case []byte:
		return d[c.row], nil
	case []float32:
		return d[c.row], nil
	case []float64:
		return d[c.row], nil
	case [][]float64:
		return tf.NewArrayView(d[c.row]), nil
	case [][]float32:
		return tf.NewArrayView(d[c.row]), nil
	default:
		return nil, fmt.Errorf("memsource: unsupported column storage %T", d)
	}
}

var _ source.Table = (*Table)(nil)
