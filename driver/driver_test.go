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

package driver_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow"
	"github.com/tabflow/tabflow/driver"
	"github.com/tabflow/tabflow/source/memsource"
)

// fixtureRegistry resolves any dsn to the same catalog: one "events" table
// with an "accepted" chain (amount > 10) and a "total" chain (unfiltered).
type fixtureRegistry struct {
	catalog *driver.Catalog
}

func (r *fixtureRegistry) Resolve(dsn string) (*driver.Catalog, error) {
	return r.catalog, nil
}

func newFixtureRegistry(t *testing.T) *fixtureRegistry {
	t.Helper()

	table := memsource.New("events", 4)
	table.AddInt32Column("amount", []int32{5, 15, 25, 3})
	table.AddInt8Column("kind", []int8{1, 1, 2, 2})

	engine := tabflow.NewDefault(table)
	root := engine.DataFrame()

	accepted, err := root.Filter("amount_gt_10", func(vals ...interface{}) (bool, error) {
		return vals[0].(int32) > 10, nil
	}, "amount")
	require.NoError(t, err)

	return &fixtureRegistry{catalog: &driver.Catalog{
		Engine: engine,
		Chains: map[string]driver.Chain{
			"accepted": {DataFrame: accepted, Columns: []string{"amount"}},
			"total":    {DataFrame: root, Columns: []string{"amount", "kind"}},
		},
	}}
}

func openFixture(t *testing.T) *sql.DB {
	t.Helper()
	drv := driver.New(newFixtureRegistry(t))
	connector, err := drv.OpenConnector(t.Name())
	require.NoError(t, err)
	return sql.OpenDB(connector)
}

func TestDriverQuery(t *testing.T) {
	req := require.New(t)
	db := openFixture(t)

	rows, err := db.Query("accepted")
	req.NoError(err)
	defer rows.Close()

	var got []int32
	for rows.Next() {
		var v int32
		req.NoError(rows.Scan(&v))
		got = append(got, v)
	}
	req.NoError(rows.Err())
	req.ElementsMatch([]int32{15, 25}, got)
}

func TestDriverQueryMultiColumn(t *testing.T) {
	req := require.New(t)
	db := openFixture(t)

	rows, err := db.Query("total")
	req.NoError(err)
	defer rows.Close()

	cols, err := rows.Columns()
	req.NoError(err)
	req.Equal([]string{"amount", "kind"}, cols)

	var n int
	for rows.Next() {
		var amount int32
		var kind int8
		req.NoError(rows.Scan(&amount, &kind))
		n++
	}
	req.NoError(rows.Err())
	req.Equal(4, n)
}

func TestDriverExecCountsRows(t *testing.T) {
	req := require.New(t)
	db := openFixture(t)

	res, err := db.Exec("accepted")
	req.NoError(err)

	n, err := res.RowsAffected()
	req.NoError(err)
	req.EqualValues(2, n)

	_, err = res.LastInsertId()
	req.Error(err)
}

func TestDriverUnknownChain(t *testing.T) {
	req := require.New(t)
	db := openFixture(t)

	_, err := db.Query("nonexistent")
	req.Error(err)
	req.Contains(err.Error(), "nonexistent")
}
