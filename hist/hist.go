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

// Package hist implements the histogram collaborator described in the
// engine's external interfaces: fixed-bin 1D/2D/3D histograms with
// Fill/Clone/Add, plus the deferred-limits buffering mode used when an
// axis's min/max are left unset at booking time.
package hist

import "math"

// Axis describes one fixed-width binned axis. Bins is the number of bins
// between Min and Max. H1D counts values outside [Min, Max) in its
// underflow/overflow counters; H2D and H3D drop a fill that falls outside
// any of their axes.
type Axis struct {
	Bins     int
	Min, Max float64
}

// HasLimits reports whether this axis has a non-degenerate, explicit
// range. An axis with Min == Max is in "deferred limits" mode: the engine
// buffers raw values per slot and only this axis's real extrema, observed
// across the whole run, are used to fill bins during merge.
func (a Axis) HasLimits() bool { return a.Min != a.Max }

func (a Axis) width() float64 { return (a.Max - a.Min) / float64(a.Bins) }

func (a Axis) binOf(x float64) (int, bool) {
	if x < a.Min || x >= a.Max {
		return 0, false
	}
	b := int((x - a.Min) / a.width())
	if b >= a.Bins {
		b = a.Bins - 1
	}
	return b, true
}

// H1D is a one-dimensional weighted histogram.
type H1D struct {
	X          Axis
	counts     []float64
	underflow  float64
	overflow   float64
	canExtend  bool
	entries    int64
}

// NewH1D creates an empty histogram over axis x.
func NewH1D(x Axis) *H1D {
	return &H1D{X: x, counts: make([]float64, max(x.Bins, 0))}
}

// HasAxisLimits reports whether the X axis has explicit, non-degenerate
// limits (§6 of the histogram interface).
func (h *H1D) HasAxisLimits() bool { return h.X.HasLimits() }

// SetCanExtendAllAxes records that the histogram belongs to deferred-limits
// mode. The engine sets it only on the 1D histogram it builds at merge for
// an axis booked with Min == Max. The flag is carried by Clone; Fill and
// Rebin do not consult it.
func (h *H1D) SetCanExtendAllAxes(v bool) { h.canExtend = v }

// Rebin replaces the axis (used once, during merge, when extending from
// observed extrema) and resets bin storage.
func (h *H1D) Rebin(x Axis) {
	h.X = x
	h.counts = make([]float64, max(x.Bins, 0))
}

// Fill adds one entry at x with weight w (default 1 via Fill1).
func (h *H1D) Fill(x, w float64) {
	h.entries++
	if b, ok := h.X.binOf(x); ok {
		h.counts[b] += w
	} else if x < h.X.Min {
		h.underflow += w
	} else {
		h.overflow += w
	}
}

// Fill1 adds one entry at x with weight 1.
func (h *H1D) Fill1(x float64) { h.Fill(x, 1) }

// Clone returns an independent, empty-but-configured copy: same axis and
// extend flag, zeroed counts.
func (h *H1D) Clone() *H1D {
	c := NewH1D(h.X)
	c.canExtend = h.canExtend
	return c
}

// Add merges other's counts into h in place (bin-wise).
func (h *H1D) Add(other *H1D) {
	for i := range h.counts {
		h.counts[i] += other.counts[i]
	}
	h.underflow += other.underflow
	h.overflow += other.overflow
	h.entries += other.entries
}

// Counts returns the per-bin contents, in bin order.
func (h *H1D) Counts() []float64 { return h.counts }

// Entries returns the total number of Fill calls observed (including
// under/overflow).
func (h *H1D) Entries() int64 { return h.entries }

// H2D is a two-dimensional weighted histogram. 2D histograms must have
// explicit axis limits at booking time (deferred-limits mode is 1D-only,
// per §4.5).
type H2D struct {
	X, Y   Axis
	counts [][]float64
}

func NewH2D(x, y Axis) *H2D {
	counts := make([][]float64, max(x.Bins, 0))
	for i := range counts {
		counts[i] = make([]float64, max(y.Bins, 0))
	}
	return &H2D{X: x, Y: y, counts: counts}
}

func (h *H2D) HasAxisLimits() bool { return h.X.HasLimits() && h.Y.HasLimits() }

func (h *H2D) Fill(x, y, w float64) {
	bx, okx := h.X.binOf(x)
	by, oky := h.Y.binOf(y)
	if okx && oky {
		h.counts[bx][by] += w
	}
}

func (h *H2D) Fill1(x, y float64) { h.Fill(x, y, 1) }

func (h *H2D) Clone() *H2D { return NewH2D(h.X, h.Y) }

func (h *H2D) Add(other *H2D) {
	for i := range h.counts {
		for j := range h.counts[i] {
			h.counts[i][j] += other.counts[i][j]
		}
	}
}

func (h *H2D) Counts() [][]float64 { return h.counts }

// H3D is a three-dimensional weighted histogram, same limits requirement
// as H2D.
type H3D struct {
	X, Y, Z Axis
	counts  [][][]float64
}

func NewH3D(x, y, z Axis) *H3D {
	counts := make([][][]float64, max(x.Bins, 0))
	for i := range counts {
		counts[i] = make([][]float64, max(y.Bins, 0))
		for j := range counts[i] {
			counts[i][j] = make([]float64, max(z.Bins, 0))
		}
	}
	return &H3D{X: x, Y: y, Z: z, counts: counts}
}

func (h *H3D) HasAxisLimits() bool {
	return h.X.HasLimits() && h.Y.HasLimits() && h.Z.HasLimits()
}

func (h *H3D) Fill(x, y, z, w float64) {
	bx, okx := h.X.binOf(x)
	by, oky := h.Y.binOf(y)
	bz, okz := h.Z.binOf(z)
	if okx && oky && okz {
		h.counts[bx][by][bz] += w
	}
}

func (h *H3D) Fill1(x, y, z float64) { h.Fill(x, y, z, 1) }

func (h *H3D) Clone() *H3D { return NewH3D(h.X, h.Y, h.Z) }

func (h *H3D) Add(other *H3D) {
	for i := range h.counts {
		for j := range h.counts[i] {
			for k := range h.counts[i][j] {
				h.counts[i][j][k] += other.counts[i][j][k]
			}
		}
	}
}

func (h *H3D) Counts() [][][]float64 { return h.counts }

// ExtentFromBuffer computes [min, max) axis limits from a buffered slice
// of observed values, used by the engine's deferred-limits merge step for
// 1D histograms whose axis had Min == Max at booking time. Returns the
// zero Axis, false if buf is empty.
func ExtentFromBuffer(bins int, buf []float64) (Axis, bool) {
	if len(buf) == 0 {
		return Axis{}, false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range buf {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		// A single distinct value: widen slightly so the one bin
		// that should hold it isn't degenerate ([lo, lo) is empty).
		hi = lo + 1
	}
	return Axis{Bins: bins, Min: lo, Max: hi}, true
}
