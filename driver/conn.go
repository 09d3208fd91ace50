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
	"fmt"

	"github.com/sirupsen/logrus"
)

// Conn is a connection to one open Catalog.
type Conn struct {
	open   *openCatalog
	caller string
}

// Prepare resolves name against the connection's Catalog and returns a
// statement bound to the chain it names. There is no query grammar to
// validate -- an unknown name fails immediately rather than at Query time.
func (c *Conn) Prepare(name string) (driver.Stmt, error) {
	chain, ok := c.open.catalog.Chains[name]
	if !ok {
		return nil, fmt.Errorf("driver: no chain named %q registered", name)
	}
	logrus.WithFields(logrus.Fields{"caller": c.caller, "chain": name}).Debug("driver: prepared chain")
	return &Stmt{conn: c, name: name, chain: chain}, nil
}

// Close does nothing; the underlying Engine and its Catalog outlive any
// one Conn.
func (c *Conn) Close() error { return nil }

// Begin returns a no-op transaction. tabflow chains have no mutable state
// for a transaction to bound.
func (c *Conn) Begin() (driver.Tx, error) { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
