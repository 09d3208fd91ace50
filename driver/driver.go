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

// Package driver exposes a Registry of pre-booked chains as a
// database/sql/driver-compatible shim, the way a caller who already has a
// query string-shaped workflow can run a tabflow chain without importing
// the engine package directly.
package driver

import (
	"context"
	"database/sql/driver"
	"sync"

	"github.com/tabflow/tabflow"
)

// Chain is one named, fully booked computation a caller can run through
// the driver: the columns it collects, in order, via TakeAny.
type Chain struct {
	DataFrame *tabflow.DataFrame
	Columns   []string
}

// Registry resolves a DSN to the named chains available on it.
type Registry interface {
	Resolve(dsn string) (*Catalog, error)
}

// Catalog is a named set of chains plus the engine they share. Every chain
// in a Catalog should be booked against the same Engine so that querying
// more than one in sequence still pays for only one Run per query, per the
// engine's single-pass contract.
type Catalog struct {
	Engine *tabflow.Engine
	Chains map[string]Chain
}

// Driver exposes a Registry as a stdlib SQL-shaped driver. The "query
// text" Prepare receives is actually just the name of a chain registered
// in the resolved Catalog -- there is no SQL grammar here, only chain
// lookup.
type Driver struct {
	registry Registry

	mu       sync.Mutex
	catalogs map[string]*openCatalog
}

type openCatalog struct {
	catalog *Catalog
	procs   ProcessManager
}

// New returns a driver backed by the given registry.
func New(registry Registry) *Driver {
	return &Driver{registry: registry}
}

// Open returns a new connection to dsn.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector resolves dsn through the registry and returns a connector
// that can mint any number of Conns sharing that catalog's engine.
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	oc, ok := d.catalogs[dsn]
	if !ok {
		cat, err := d.registry.Resolve(dsn)
		if err != nil {
			return nil, err
		}
		oc = &openCatalog{catalog: cat, procs: &SimpleProcessManager{}}
		if d.catalogs == nil {
			d.catalogs = map[string]*openCatalog{}
		}
		d.catalogs[dsn] = oc
	}

	return &Connector{driver: d, open: oc, callers: DefaultCallerBuilder{}}, nil
}

// Connector is a fixed configuration that can open any number of
// equivalent Conns, for use by multiple goroutines, per database/sql's
// Connector contract.
type Connector struct {
	driver  *Driver
	open    *openCatalog
	callers CallerBuilder
}

// Driver returns the owning driver.
func (c *Connector) Driver() driver.Driver { return c.driver }

// Connect returns a connection labeled with a caller identity for logging;
// the engine's own authorization caller is fixed separately, at
// construction (see CallerBuilder).
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	id := c.open.procs.NextConnectionID()
	caller, err := c.callers.NewCaller(ctx, id, c)
	if err != nil {
		return nil, err
	}
	return &Conn{open: c.open, caller: caller}, nil
}
