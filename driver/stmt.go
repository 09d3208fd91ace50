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
	"context"
	"database/sql/driver"

	"github.com/tabflow/tabflow"
)

// Stmt runs one registered Chain. Chains take no runtime arguments --
// every Filter/Define in a chain is fixed at booking time -- so NumInput
// is always 0 and every Exec/Query variant ignores the args it's handed.
type Stmt struct {
	conn  *Conn
	name  string
	chain Chain
}

// Close does nothing.
func (s *Stmt) Close() error { return nil }

// NumInput reports that chains take no bound parameters.
func (s *Stmt) NumInput() int { return 0 }

// Exec runs the chain's Count and reports it as RowsAffected, the way a
// caller driving this chain for its side effects (it was booked with
// Foreach actions) would check how many rows were touched.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.exec()
}

// ExecContext is Exec; the chain ignores ctx since tabflow.Engine.Run
// takes none.
func (s *Stmt) ExecContext(_ context.Context, _ []driver.NamedValue) (driver.Result, error) {
	return s.exec()
}

// Query runs the chain's columns via TakeAny and streams the results.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.query()
}

// QueryContext is Query; see ExecContext.
func (s *Stmt) QueryContext(_ context.Context, _ []driver.NamedValue) (driver.Rows, error) {
	return s.query()
}

func (s *Stmt) exec() (driver.Result, error) {
	h, err := s.chain.DataFrame.Count()
	if err != nil {
		return nil, err
	}
	count, err := h.Get()
	if err != nil {
		return nil, err
	}
	return &Result{rowsAffected: int64(count)}, nil
}

func (s *Stmt) query() (driver.Rows, error) {
	handles := make([]*tabflow.ResultHandle[[]interface{}], len(s.chain.Columns))
	for i, col := range s.chain.Columns {
		h, err := tabflow.TakeAny(s.chain.DataFrame, col)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}

	columns := make([][]interface{}, len(handles))
	for i, h := range handles {
		vals, err := h.Get()
		if err != nil {
			return nil, err
		}
		columns[i] = vals
	}

	return &Rows{names: s.chain.Columns, columns: columns}, nil
}
