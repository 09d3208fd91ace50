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

package node

import "github.com/tabflow/tabflow/source"

// Expr computes a derived column's value for one (slot, row).
type Expr func(slot int, row int64) (interface{}, error)

// DerivedColumn registers a new, named column visible to every node booked
// downstream of it on the same chain. Its expression is assumed pure: re-evaluating it for the same
// (slot, row) would return an identical value, so the engine only ever
// evaluates it once per row and hands every consumer the same cached
// value.
type DerivedColumn struct {
	Name string
	Type source.ColumnType
	Eval Expr

	lastRow []int64
	cache   []interface{}
}

// NewDerivedColumn constructs a DerivedColumn ready for InitSlots.
func NewDerivedColumn(name string, typ source.ColumnType, eval Expr) *DerivedColumn {
	return &DerivedColumn{Name: name, Type: typ, Eval: eval}
}

// InitSlots allocates per-slot evaluation state.
func (d *DerivedColumn) InitSlots(nSlots int) {
	d.lastRow = make([]int64, nSlots)
	d.cache = make([]interface{}, nSlots)
	for i := range d.lastRow {
		d.lastRow[i] = -1
	}
}

// Value returns this column's value at (slot, row), evaluating the
// expression only on the first request for a new row on that slot.
func (d *DerivedColumn) Value(slot int, row int64) (interface{}, error) {
	if d.lastRow[slot] == row {
		return d.cache[slot], nil
	}
	v, err := d.Eval(slot, row)
	if err != nil {
		return nil, err
	}
	d.lastRow[slot] = row
	d.cache[slot] = v
	return v, nil
}
