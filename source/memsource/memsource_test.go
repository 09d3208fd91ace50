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

package memsource_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow/source"
	"github.com/tabflow/tabflow/source/memsource"
)

func TestSchemaOrderAndTypes(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 3)
	tbl.AddInt32Column("kind", []int32{1, 2, 3})
	tbl.AddFloat64Column("amount", []float64{1, 2, 3})

	req.Equal([]source.ColumnInfo{
		{Name: "kind", Type: source.TypeInt32},
		{Name: "amount", Type: source.TypeFloat64},
	}, tbl.Schema())
	req.Equal(int64(3), tbl.NumRows())
	req.Equal("t", tbl.Name())
}

func TestPartitionEvenSplit(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 9)
	ranges := tbl.Partition(3)
	req.Equal([]source.RowRange{{Start: 0, End: 3}, {Start: 3, End: 6}, {Start: 6, End: 9}}, ranges)
}

func TestPartitionRemainderAbsorbedByLastSlot(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 10)
	ranges := tbl.Partition(3)
	req.Len(ranges, 3)
	var total int64
	for _, r := range ranges {
		total += r.Len()
	}
	req.Equal(int64(10), total)
	req.Equal(int64(10), ranges[len(ranges)-1].End)
}

func TestPartitionMoreSlotsThanRows(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 2)
	ranges := tbl.Partition(5)
	var total int64
	for _, r := range ranges {
		total += r.Len()
	}
	req.Equal(int64(2), total)
}

func TestCursorReadsScalarColumns(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 3)
	tbl.AddInt32Column("kind", []int32{10, 20, 30})
	tbl.AddFloat64Column("amount", []float64{1.5, 2.5, 3.5})
	tbl.AddBoolColumn("flag", []bool{true, false, true})

	kindCur, err := tbl.Cursor(0, "kind")
	req.NoError(err)
	req.NoError(kindCur.Seek(1))
	v, err := kindCur.Value()
	req.NoError(err)
	req.Equal(int32(20), v)

	flagCur, err := tbl.Cursor(0, "flag")
	req.NoError(err)
	req.NoError(flagCur.Seek(2))
	v, err = flagCur.Value()
	req.NoError(err)
	req.Equal(true, v)
}

func TestCursorReadsVectorColumns(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 2)
	tbl.AddVectorFloat64Column("vec", [][]float64{{1, 2}, {3, 4, 5}})

	cur, err := tbl.Cursor(0, "vec")
	req.NoError(err)
	req.NoError(cur.Seek(1))
	v, err := cur.Value()
	req.NoError(err)
	view, ok := v.(interface{ Slice() []float64 })
	req.True(ok)
	req.Equal([]float64{3, 4, 5}, view.Slice())
}

func TestCursorUnknownColumn(t *testing.T) {
	req := require.New(t)

	tbl := memsource.New("t", 1)
	tbl.AddInt32Column("kind", []int32{1})

	_, err := tbl.Cursor(0, "nope")
	req.Error(err)
	notFound, ok := err.(*source.ColumnNotFoundError)
	req.True(ok)
	req.Equal("nope", notFound.Column)
}
