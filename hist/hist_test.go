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

package hist_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow/hist"
)

func TestH1DFillAndCounts(t *testing.T) {
	req := require.New(t)

	h := hist.NewH1D(hist.Axis{Bins: 4, Min: 0, Max: 8})
	for _, x := range []float64{0, 2, 4, 6} {
		h.Fill1(x)
	}
	req.Equal([]float64{1, 1, 1, 1}, h.Counts())
	req.EqualValues(4, h.Entries())
}

func TestH1DUnderflowOverflow(t *testing.T) {
	req := require.New(t)

	h := hist.NewH1D(hist.Axis{Bins: 2, Min: 0, Max: 4})
	h.Fill1(-1)
	h.Fill1(10)
	h.Fill1(1)
	req.Equal([]float64{1, 0}, h.Counts())
	req.EqualValues(3, h.Entries())
}

func TestH1DCloneAndAdd(t *testing.T) {
	req := require.New(t)

	axis := hist.Axis{Bins: 2, Min: 0, Max: 4}
	a := hist.NewH1D(axis)
	a.Fill1(1)
	b := a.Clone()
	req.Equal([]float64{0, 0}, b.Counts())

	b.Fill1(3)
	a.Add(b)
	req.Equal([]float64{1, 1}, a.Counts())
	req.EqualValues(2, a.Entries())
}

func TestH1DWeightedFill(t *testing.T) {
	req := require.New(t)

	h := hist.NewH1D(hist.Axis{Bins: 1, Min: 0, Max: 1})
	h.Fill(0.5, 2.5)
	h.Fill(0.1, 1.5)
	req.Equal([]float64{4}, h.Counts())
}

func TestH2DFillAndAdd(t *testing.T) {
	req := require.New(t)

	x := hist.Axis{Bins: 2, Min: 0, Max: 2}
	y := hist.Axis{Bins: 2, Min: 0, Max: 2}
	h := hist.NewH2D(x, y)
	h.Fill1(0.5, 0.5)
	h.Fill1(1.5, 1.5)
	h.Fill1(1.5, 1.5)

	req.Equal(float64(1), h.Counts()[0][0])
	req.Equal(float64(2), h.Counts()[1][1])

	merged := hist.NewH2D(x, y)
	merged.Add(h)
	merged.Add(h)
	req.Equal(float64(4), merged.Counts()[1][1])
}

func TestH3DFillAndAdd(t *testing.T) {
	req := require.New(t)

	axis := hist.Axis{Bins: 2, Min: 0, Max: 2}
	h := hist.NewH3D(axis, axis, axis)
	h.Fill1(0.1, 0.1, 0.1)
	h.Fill1(1.9, 1.9, 1.9)

	req.Equal(float64(1), h.Counts()[0][0][0])
	req.Equal(float64(1), h.Counts()[1][1][1])

	clone := h.Clone()
	req.Equal(float64(0), clone.Counts()[0][0][0])
	clone.Add(h)
	req.Equal(float64(1), clone.Counts()[0][0][0])
}

func TestExtentFromBuffer(t *testing.T) {
	req := require.New(t)

	axis, ok := hist.ExtentFromBuffer(4, []float64{3, 1, 4, 1, 5})
	req.True(ok)
	req.Equal(1.0, axis.Min)
	req.Equal(5.0, axis.Max)
	req.Equal(4, axis.Bins)
}

func TestExtentFromBufferEmpty(t *testing.T) {
	req := require.New(t)

	_, ok := hist.ExtentFromBuffer(4, nil)
	req.False(ok)
}

// A buffer of one distinct value must widen so the bin that should hold
// it isn't a degenerate [x, x) range.
func TestExtentFromBufferDegenerate(t *testing.T) {
	req := require.New(t)

	axis, ok := hist.ExtentFromBuffer(1, []float64{7, 7, 7})
	req.True(ok)
	req.Equal(7.0, axis.Min)
	req.Equal(8.0, axis.Max)
}

func TestAxisHasLimits(t *testing.T) {
	req := require.New(t)

	req.True(hist.Axis{Bins: 1, Min: 0, Max: 1}.HasLimits())
	req.False(hist.Axis{Bins: 1, Min: 0, Max: 0}.HasLimits())
}
