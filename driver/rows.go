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

package driver

import (
	"database/sql/driver"
	"io"
)

// Rows iterates the zipped TakeAny results of a query's columns. Every
// column's slice was taken in the same engine Run, so they are the same
// length and already aligned by row.
type Rows struct {
	names   []string
	columns [][]interface{}
	pos     int
}

// Columns returns the chain's column names, in booking order.
func (r *Rows) Columns() []string { return r.names }

// Close releases the buffered results.
func (r *Rows) Close() error {
	r.columns = nil
	return nil
}

// Next populates dest with the next buffered row, returning io.EOF once
// every row taken has been consumed.
func (r *Rows) Next(dest []driver.Value) error {
	if len(r.columns) == 0 || r.pos >= len(r.columns[0]) {
		return io.EOF
	}
	for i, col := range r.columns {
		dest[i] = col[r.pos]
	}
	r.pos++
	return nil
}
