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

// Package source defines the contract the engine consumes from an input
// table provider: schema discovery, row partitioning across slots, and
// per-slot typed cursors. The engine never opens storage itself -- it only
// ever talks to a Table.
package source

import "fmt"

// ColumnType is one of the element types a provider can report for a
// column. The type dispatcher (see the root tabflow package) accepts only a
// subset of them: int8, int32, float64, vector<float64> and
// vector<float32>.
type ColumnType int

const (
	TypeUnknown ColumnType = iota
	TypeInt8
	TypeInt32
	TypeInt64
	TypeBool
	TypeByte
	TypeFloat32
	TypeFloat64
	TypeVectorFloat64
	TypeVectorFloat32
	// TypeRecord marks a derived column whose value is a user-defined
	// record type opaque to the engine; it is never inferred, only
	// recorded at Define time.
	TypeRecord
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeBool:
		return "bool"
	case TypeByte:
		return "byte"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeVectorFloat64:
		return "vector<float64>"
	case TypeVectorFloat32:
		return "vector<float32>"
	case TypeRecord:
		return "record"
	default:
		return "unknown"
	}
}

// ColumnInfo names one physical column and its element type.
type ColumnInfo struct {
	Name string
	Type ColumnType
}

// RowRange is a disjoint, contiguous span of row indices assigned to one
// slot. Ranges are opaque to the engine beyond [Start, End).
type RowRange struct {
	Start, End int64
}

// Len returns the number of rows in the range.
func (r RowRange) Len() int64 { return r.End - r.Start }

// Cursor positions to a row and yields that row's boxed value for one
// column on one slot. Implementations for array-valued columns return a
// tf.ArrayView[T] from Value; implementations that cannot guarantee a
// contiguous backing buffer for the requested row must implement
// NonContiguityChecker rather than silently returning a copy.
type Cursor interface {
	// Seek positions the cursor at the given row, absolute row index
	// (not offset within a range). Implementations typically require
	// non-decreasing row arguments per the engine's per-slot ascending
	// iteration order.
	Seek(row int64) error
	// Value returns the current row's value: a scalar (int8, int32,
	// int64, bool, byte, float32, float64) or a tf.ArrayView[float32]
	// / tf.ArrayView[float64] for array columns.
	Value() (interface{}, error)
}

// NonContiguityChecker is optionally implemented by a Cursor whose backing
// storage for array columns may not be contiguous for every row. When
// present and Contiguous() returns false for the current row, callers must
// fail with tf.ErrNonContiguousArray rather than read Value().
type NonContiguityChecker interface {
	Contiguous() bool
}

// CursorCloser is optionally implemented by a Cursor that holds a resource
// scoped to one Run pass -- an open transaction, a file handle, a
// decompression buffer. The engine calls Close once per cursor at the end
// of every Run, success or failure, so a provider can safely open such a
// resource in Table.Cursor without leaking it across repeated runs.
type CursorCloser interface {
	Close() error
}

// Table is the engine's view of an opened input table: schema, row count,
// row partitioning, and per-slot cursor construction.
type Table interface {
	// Name identifies the table, used in error messages and logging.
	Name() string
	// NumRows returns the total row count.
	NumRows() int64
	// Schema lists every physical column and its element type, in a
	// stable order (used as the candidate default-column list when the
	// caller never set one explicitly).
	Schema() []ColumnInfo
	// Partition splits [0, NumRows()) into nSlots disjoint, contiguous,
	// ascending ranges. Implementations may return fewer than nSlots
	// ranges for very small tables; the engine allocates slot state for
	// nSlots regardless.
	Partition(nSlots int) []RowRange
	// Cursor returns a fresh typed cursor for the named column, scoped
	// to one slot. Called once per (slot, column) at the start of Run.
	Cursor(slot int, column string) (Cursor, error)
}

// ColumnNotFoundError is returned by Cursor/Schema lookups when a provider
// has no such physical column. The engine reports a Cursor failure,
// including this one, as tf.ErrSourceUnavailable.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}
