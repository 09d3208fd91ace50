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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow/node"
)

var errFilterEval = errors.New("predicate exploded")

func TestFilterAcceptedRejectedAccounting(t *testing.T) {
	req := require.New(t)

	f := node.NewFilter("gt2", nil, func(slot int, row int64) (bool, error) {
		return row > 2, nil
	})
	f.InitSlots(1)

	for row := int64(0); row < 5; row++ {
		_, err := f.CheckFilters(0, row)
		req.NoError(err)
	}

	req.EqualValues(5, f.Accepted(0)+f.Rejected(0))
	req.EqualValues(2, f.Accepted(0))
	req.EqualValues(3, f.Rejected(0))
}

// Memoization: re-checking the same (slot,row) must not re-invoke Eval.
func TestFilterMemoizesPerRow(t *testing.T) {
	req := require.New(t)

	var calls int
	f := node.NewFilter("f", nil, func(slot int, row int64) (bool, error) {
		calls++
		return true, nil
	})
	f.InitSlots(1)

	ok1, err := f.CheckFilters(0, 7)
	req.NoError(err)
	req.True(ok1)

	ok2, err := f.CheckFilters(0, 7)
	req.NoError(err)
	req.True(ok2)

	req.Equal(1, calls)
	req.EqualValues(1, f.Accepted(0)+f.Rejected(0))
}

// Short-circuit: a child filter's own Eval is never invoked for a row its
// parent rejected, and the child's accepted/rejected counters don't move.
func TestFilterShortCircuitsOnParentReject(t *testing.T) {
	req := require.New(t)

	parent := node.NewFilter("parent", nil, func(slot int, row int64) (bool, error) {
		return row%2 == 0, nil
	})
	var childCalls int
	child := node.NewFilter("child", parent, func(slot int, row int64) (bool, error) {
		childCalls++
		return true, nil
	})
	parent.InitSlots(1)
	child.InitSlots(1)

	for row := int64(0); row < 6; row++ {
		_, err := child.CheckFilters(0, row)
		req.NoError(err)
	}

	// parent accepts rows 0,2,4 -- only those reach child's own Eval.
	req.Equal(3, childCalls)
	req.EqualValues(3, child.Accepted(0)+child.Rejected(0))
	req.EqualValues(6, parent.Accepted(0)+parent.Rejected(0))
}

func TestFilterPropagatesEvalError(t *testing.T) {
	req := require.New(t)

	f := node.NewFilter("boom", nil, func(slot int, row int64) (bool, error) {
		return false, errFilterEval
	})
	f.InitSlots(1)

	_, err := f.CheckFilters(0, 0)
	req.Equal(errFilterEval, err)
}

func TestFilterNumSlots(t *testing.T) {
	req := require.New(t)

	f := node.NewFilter("f", nil, func(slot int, row int64) (bool, error) { return true, nil })
	f.InitSlots(4)
	req.Equal(4, f.NumSlots())
}
