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

// Package test holds shared in-memory fixtures for tabflow's own package
// tests: small, named source.Table builders covering the scenarios §8 of
// the engine's design states literally, so every package that needs an
// "x: int rows [1,2,3,4,5]" table builds it the same way rather than each
// _test.go file inventing its own.
package test

import "github.com/tabflow/tabflow/source/memsource"

// Catalog holds a set of named fixture tables, the in-memory analogue of
// the teacher's own test.Catalog: tests look a table up by name instead of
// constructing one inline.
type Catalog struct {
	tables map[string]*memsource.Table
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*memsource.Table)}
}

// Add registers t under its own Name, for later lookup with Table.
func (c *Catalog) Add(t *memsource.Table) *Catalog {
	c.tables[t.Name()] = t
	return c
}

// Table returns the named fixture, or nil if no such table was added.
func (c *Catalog) Table(name string) *memsource.Table {
	return c.tables[name]
}

// CountFilter builds S1's fixture: column x:int32, rows [1,2,3,4,5].
func CountFilter() *memsource.Table {
	t := memsource.New("count_filter", 5)
	t.AddInt32Column("x", []int32{1, 2, 3, 4, 5})
	return t
}

// Mean builds S2's fixture: single default column v:float64, rows
// [1.0, 2.0, 3.0, 4.0].
func Mean() *memsource.Table {
	t := memsource.New("mean", 4)
	t.AddFloat64Column("v", []float64{1.0, 2.0, 3.0, 4.0})
	return t
}

// DerivedHisto builds S3's fixture: column x:int32, rows [0,1,2,3].
func DerivedHisto() *memsource.Table {
	t := memsource.New("derived_histo", 4)
	t.AddInt32Column("x", []int32{0, 1, 2, 3})
	return t
}

// WeightedReduce builds S4's fixture: column v:float64, rows
// [1.5, 2.5, 4.0].
func WeightedReduce() *memsource.Table {
	t := memsource.New("weighted_reduce", 3)
	t.AddFloat64Column("v", []float64{1.5, 2.5, 4.0})
	return t
}

// NamedFilters builds S5's fixture: column x:int32, rows [1..10].
func NamedFilters() *memsource.Table {
	t := memsource.New("named_filters", 10)
	xs := make([]int32, 10)
	for i := range xs {
		xs[i] = int32(i + 1)
	}
	t.AddInt32Column("x", xs)
	return t
}

// TakeOrder builds S6's fixture: column x:int32, rows
// [3,1,4,1,5,9,2,6].
func TakeOrder() *memsource.Table {
	t := memsource.New("take_order", 8)
	t.AddInt32Column("x", []int32{3, 1, 4, 1, 5, 9, 2, 6})
	return t
}
