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

package node_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow/node"
	"github.com/tabflow/tabflow/source"
)

func TestDerivedColumnCachesPerRow(t *testing.T) {
	req := require.New(t)

	var calls int
	d := node.NewDerivedColumn("y", source.TypeInt32, func(slot int, row int64) (interface{}, error) {
		calls++
		return int32(row * 2), nil
	})
	d.InitSlots(1)

	v1, err := d.Value(0, 3)
	req.NoError(err)
	req.Equal(int32(6), v1)

	v2, err := d.Value(0, 3)
	req.NoError(err)
	req.Equal(int32(6), v2)

	req.Equal(1, calls)
}

// Each slot's cache is independent: the same row index in a different slot
// re-evaluates.
func TestDerivedColumnCacheIsPerSlot(t *testing.T) {
	req := require.New(t)

	var calls int
	d := node.NewDerivedColumn("y", source.TypeInt32, func(slot int, row int64) (interface{}, error) {
		calls++
		return int32(slot), nil
	})
	d.InitSlots(2)

	v0, err := d.Value(0, 5)
	req.NoError(err)
	req.Equal(int32(0), v0)

	v1, err := d.Value(1, 5)
	req.NoError(err)
	req.Equal(int32(1), v1)

	req.Equal(2, calls)
}

func TestDerivedColumnPropagatesEvalError(t *testing.T) {
	req := require.New(t)

	d := node.NewDerivedColumn("y", source.TypeInt32, func(slot int, row int64) (interface{}, error) {
		return nil, errFilterEval
	})
	d.InitSlots(1)

	_, err := d.Value(0, 0)
	req.Equal(errFilterEval, err)
}
