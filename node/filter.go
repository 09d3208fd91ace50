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

// Package node holds the graph vertices shared by every DataFrame chain:
// Filter and DerivedColumn, the two memoizing node kinds, and the Action
// interface the engine drives during a row pass.
package node

import "github.com/tabflow/tabflow/tf"

// Eval is a predicate bound to its declared input columns at booking time;
// slot identifies the calling worker and row is the absolute row index.
type Eval func(slot int, row int64) (bool, error)

// Filter gates downstream DerivedColumns and Actions. Each Filter holds at
// most one parent Filter; checking is recursive upstream and memoizes per
// (slot, row) so a chain of N filters shared by M actions evaluates each
// predicate at most once per row, not N*M times.
type Filter struct {
	Name   string
	Parent *Filter
	Eval   Eval

	lastRow  []int64
	lastResult []tf.TriState
	accepted []uint64
	rejected []uint64
}

// NewFilter constructs a Filter ready for InitSlots.
func NewFilter(name string, parent *Filter, eval Eval) *Filter {
	return &Filter{Name: name, Parent: parent, Eval: eval}
}

// InitSlots allocates per-slot memoization state. Called once before a row
// pass begins; any prior state is discarded.
func (f *Filter) InitSlots(nSlots int) {
	f.lastRow = make([]int64, nSlots)
	f.lastResult = make([]tf.TriState, nSlots)
	f.accepted = make([]uint64, nSlots)
	f.rejected = make([]uint64, nSlots)
	for i := range f.lastRow {
		f.lastRow[i] = -1
	}
}

// CheckFilters implements the §4.2 contract: memoized self-check after a
// memoized, recursive check of the parent chain. Returns false without
// invoking this filter's own predicate if an ancestor already rejected the
// row.
func (f *Filter) CheckFilters(slot int, row int64) (bool, error) {
	if f.lastRow[slot] == row {
		return f.lastResult[slot].Bool(), nil
	}

	if f.Parent != nil {
		ok, err := f.Parent.CheckFilters(slot, row)
		if err != nil {
			return false, err
		}
		if !ok {
			f.lastRow[slot] = row
			f.lastResult[slot] = tf.False
			return false, nil
		}
	}

	ok, err := f.Eval(slot, row)
	if err != nil {
		return false, err
	}

	f.lastRow[slot] = row
	f.lastResult[slot] = tf.FromBool(ok)
	if ok {
		f.accepted[slot]++
	} else {
		f.rejected[slot]++
	}
	return ok, nil
}

// Accepted returns the number of rows this filter itself accepted on the
// given slot (after its own predicate ran, not counting ancestor
// rejections it never got to evaluate).
func (f *Filter) Accepted(slot int) uint64 { return f.accepted[slot] }

// Rejected returns the number of rows this filter itself rejected on the
// given slot.
func (f *Filter) Rejected(slot int) uint64 { return f.rejected[slot] }

// NumSlots reports how many slots this filter was initialized for.
func (f *Filter) NumSlots() int { return len(f.accepted) }
