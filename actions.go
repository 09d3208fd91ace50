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

package tabflow

import (
	"fmt"

	"github.com/tabflow/tabflow/hist"
	"github.com/tabflow/tabflow/node"
	"github.com/tabflow/tabflow/tf"
)

// Reduce, Take, and TakeAny are free functions rather than DataFrame
// methods: Go methods cannot introduce a type parameter the receiver
// doesn't already carry, and DataFrame itself can't be generic (one
// DataFrame hosts actions of every result type in the same chain). Each
// instantiates a generic Action implementation and books it directly.

// reduceAction folds a slot-local accumulator seeded with init through f,
// then folds every slot's partial through f again at merge, in slot-id
// order. f is assumed associative (§4.5): Reduce never promises a
// particular fold order across slots beyond that.
type reduceAction[T any] struct {
	name    string
	filter  *node.Filter
	col     string
	df      *DataFrame
	f       func(T, T) T
	init    T
	handle  *ResultHandle[T]
	partial []T
}

func (a *reduceAction[T]) Name() string                { return a.name }
func (a *reduceAction[T]) UpstreamFilter() *node.Filter { return a.filter }

func (a *reduceAction[T]) InitSlots(nSlots int) {
	a.partial = make([]T, nSlots)
	for i := range a.partial {
		a.partial[i] = a.init
	}
}

func (a *reduceAction[T]) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, []string{a.col}, slot, row)
	if err != nil {
		return err
	}
	v, ok := vals[0].(T)
	if !ok {
		return tf.ErrCannotInferType.New(a.col)
	}
	a.partial[slot] = a.f(a.partial[slot], v)
	return nil
}

func (a *reduceAction[T]) Merge() error {
	acc := a.init
	for _, p := range a.partial {
		acc = a.f(acc, p)
	}
	a.handle.set(acc)
	return nil
}

// Reduce books a fold over col (or the matching default column) with the
// given associative combining function. init seeds both the per-slot
// accumulator and the cross-slot fold; Go always has a usable zero value
// for any type parameter, so unlike a language where "default
// constructible" can fail, init here never needs the BadReduceSignature
// booking error -- it is accepted for taxonomy completeness (see
// DESIGN.md) but unreachable through this entry point.
func Reduce[T any](df *DataFrame, f func(T, T) T, col string, init T) (*ResultHandle[T], error) {
	cols, err := df.resolveFixedArity(nonEmptyCol(col), 1)
	if err != nil {
		return nil, err
	}
	if err := df.registerUses(cols); err != nil {
		return nil, err
	}
	h := newResultHandle[T](df.engine)
	a := &reduceAction[T]{filter: df.filter, col: cols[0], df: df, f: f, init: init, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

func nonEmptyCol(col string) []string {
	if col == "" {
		return nil
	}
	return []string{col}
}

// takeAction collects every value reaching it into a per-slot slice;
// merge concatenates slot partials in slot-id order (S6, invariant 5).
type takeAction[T any] struct {
	name    string
	filter  *node.Filter
	col     string
	df      *DataFrame
	handle  *ResultHandle[[]T]
	partial [][]T
}

func (a *takeAction[T]) Name() string                { return a.name }
func (a *takeAction[T]) UpstreamFilter() *node.Filter { return a.filter }

func (a *takeAction[T]) InitSlots(nSlots int) {
	a.partial = make([][]T, nSlots)
}

func (a *takeAction[T]) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, []string{a.col}, slot, row)
	if err != nil {
		return err
	}
	v, ok := vals[0].(T)
	if !ok {
		return tf.ErrCannotInferType.New(a.col)
	}
	a.partial[slot] = append(a.partial[slot], v)
	return nil
}

func (a *takeAction[T]) Merge() error {
	var out []T
	for _, p := range a.partial {
		out = append(out, p...)
	}
	a.handle.set(out)
	return nil
}

// Take books a collection of col's values into a single ordered slice,
// typed to T. The column's dynamic element type must match T exactly --
// Take does not attempt numeric widening between physical storage types,
// unlike Min/Max/Mean's unconditional float64 cast (see DESIGN.md).
func Take[T any](df *DataFrame, col string) (*ResultHandle[[]T], error) {
	cols, err := df.resolveFixedArity(nonEmptyCol(col), 1)
	if err != nil {
		return nil, err
	}
	if err := df.registerUses(cols); err != nil {
		return nil, err
	}
	h := newResultHandle[[]T](df.engine)
	a := &takeAction[T]{filter: df.filter, col: cols[0], df: df, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

// TakeAny performs the literal §4.7 runtime dispatch: the column's element
// type is resolved against the closed set at booking time and every
// collected element is handed back boxed, rather than requiring the
// caller to already know T the way Take does.
func TakeAny(df *DataFrame, col string) (*ResultHandle[[]interface{}], error) {
	cols, err := df.resolveFixedArity(nonEmptyCol(col), 1)
	if err != nil {
		return nil, err
	}
	if _, err := df.inferType(cols[0]); err != nil {
		return nil, err
	}
	if err := df.registerUses(cols); err != nil {
		return nil, err
	}
	h := newResultHandle[[]interface{}](df.engine)
	a := &takeAction[interface{}]{filter: df.filter, col: cols[0], df: df, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

// histo1DAction wraps an *hist.H1D. When the booked axis has no explicit
// limits (Min == Max), it instead buffers raw values per slot; Merge then
// derives the union extent, rebins a fresh histogram, and fills once --
// the only place in the engine where per-slot memory is traded for
// one-shot axis selection (§4.5, §9).
type histo1DAction struct {
	name     string
	filter   *node.Filter
	col      string
	wcol     string
	weighted bool
	deferred bool
	axis     hist.Axis
	df       *DataFrame
	handle   *ResultHandle[*hist.H1D]
	partial  []*hist.H1D
	buffer   [][]float64
	wbuffer  [][]float64
}

func (a *histo1DAction) Name() string                { return a.name }
func (a *histo1DAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *histo1DAction) InitSlots(nSlots int) {
	if a.deferred {
		a.buffer = make([][]float64, nSlots)
		if a.weighted {
			a.wbuffer = make([][]float64, nSlots)
		}
		return
	}
	a.partial = make([]*hist.H1D, nSlots)
	for i := range a.partial {
		a.partial[i] = hist.NewH1D(a.axis)
	}
}

func (a *histo1DAction) Eval(slot int, row int64) error {
	cols := []string{a.col}
	if a.weighted {
		cols = append(cols, a.wcol)
	}
	vals, err := a.df.gatherValues(a.df.derived, cols, slot, row)
	if err != nil {
		return err
	}
	x, err := toFloat64(vals[0])
	if err != nil {
		return err
	}
	w := 1.0
	if a.weighted {
		w, err = toFloat64(vals[1])
		if err != nil {
			return err
		}
	}
	if a.deferred {
		a.buffer[slot] = append(a.buffer[slot], x)
		if a.weighted {
			a.wbuffer[slot] = append(a.wbuffer[slot], w)
		}
		return nil
	}
	a.partial[slot].Fill(x, w)
	return nil
}

func (a *histo1DAction) Merge() error {
	if !a.deferred {
		out := hist.NewH1D(a.axis)
		for _, p := range a.partial {
			out.Add(p)
		}
		a.handle.set(out)
		return nil
	}

	var all []float64
	for _, b := range a.buffer {
		all = append(all, b...)
	}
	axis, ok := hist.ExtentFromBuffer(a.axis.Bins, all)
	if !ok {
		a.handle.set(hist.NewH1D(hist.Axis{Bins: a.axis.Bins}))
		return nil
	}
	out := hist.NewH1D(axis)
	out.SetCanExtendAllAxes(true)
	for slot, xs := range a.buffer {
		for i, x := range xs {
			w := 1.0
			if a.weighted {
				w = a.wbuffer[slot][i]
			}
			out.Fill(x, w)
		}
	}
	a.handle.set(out)
	return nil
}

// Histo1D books a one-dimensional histogram over col. An axis with
// Min == Max enables deferred-limits mode (§4.5): wcol, if non-empty,
// names a weight column; otherwise every fill has weight 1.
func Histo1D(df *DataFrame, axis hist.Axis, col string, wcol ...string) (*ResultHandle[*hist.H1D], error) {
	if len(wcol) > 1 {
		return nil, fmt.Errorf("Histo1D: at most one weight column, got %d", len(wcol))
	}
	cols, err := df.resolveFixedArity(nonEmptyCol(col), 1)
	if err != nil {
		return nil, err
	}
	if _, err := df.inferScalarType(cols[0]); err != nil {
		return nil, err
	}
	uses := append([]string{}, cols...)
	weighted := len(wcol) == 1 && wcol[0] != ""
	if weighted {
		uses = append(uses, wcol[0])
	}
	if err := df.registerUses(uses); err != nil {
		return nil, err
	}
	h := newResultHandle[*hist.H1D](df.engine)
	a := &histo1DAction{
		filter:   df.filter,
		col:      cols[0],
		df:       df,
		handle:   h,
		axis:     axis,
		deferred: !axis.HasLimits(),
		weighted: weighted,
	}
	if weighted {
		a.wcol = wcol[0]
	}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

// histo2DAction and histo3DAction always have explicit axis limits --
// §4.5 restricts deferred-limits mode to 1D, so booking fails fast via
// HistogramNeedsAxisLimits otherwise.
type histo2DAction struct {
	name     string
	filter   *node.Filter
	colX     string
	colY     string
	wcol     string
	weighted bool
	df       *DataFrame
	handle   *ResultHandle[*hist.H2D]
	model    hist.Axis
	modelY   hist.Axis
	partial  []*hist.H2D
}

func (a *histo2DAction) Name() string                { return a.name }
func (a *histo2DAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *histo2DAction) InitSlots(nSlots int) {
	a.partial = make([]*hist.H2D, nSlots)
	for i := range a.partial {
		a.partial[i] = hist.NewH2D(a.model, a.modelY)
	}
}

func (a *histo2DAction) Eval(slot int, row int64) error {
	cols := []string{a.colX, a.colY}
	if a.weighted {
		cols = append(cols, a.wcol)
	}
	vals, err := a.df.gatherValues(a.df.derived, cols, slot, row)
	if err != nil {
		return err
	}
	x, err := toFloat64(vals[0])
	if err != nil {
		return err
	}
	y, err := toFloat64(vals[1])
	if err != nil {
		return err
	}
	w := 1.0
	if a.weighted {
		w, err = toFloat64(vals[2])
		if err != nil {
			return err
		}
	}
	a.partial[slot].Fill(x, y, w)
	return nil
}

func (a *histo2DAction) Merge() error {
	out := hist.NewH2D(a.model, a.modelY)
	for _, p := range a.partial {
		out.Add(p)
	}
	a.handle.set(out)
	return nil
}

// Histo2D books a two-dimensional histogram over colX, colY.
func Histo2D(df *DataFrame, x, y hist.Axis, colX, colY string, wcol ...string) (*ResultHandle[*hist.H2D], error) {
	if !x.HasLimits() || !y.HasLimits() {
		return nil, tf.ErrHistogramNeedsAxisLimits.New(2)
	}
	if len(wcol) > 1 {
		return nil, fmt.Errorf("Histo2D: at most one weight column, got %d", len(wcol))
	}
	cols, err := df.resolveFixedArity([]string{colX, colY}, 2)
	if err != nil {
		return nil, err
	}
	if _, err := df.inferScalarType(cols[0]); err != nil {
		return nil, err
	}
	if _, err := df.inferScalarType(cols[1]); err != nil {
		return nil, err
	}
	uses := append([]string{}, cols...)
	weighted := len(wcol) == 1 && wcol[0] != ""
	if weighted {
		uses = append(uses, wcol[0])
	}
	if err := df.registerUses(uses); err != nil {
		return nil, err
	}
	h := newResultHandle[*hist.H2D](df.engine)
	a := &histo2DAction{filter: df.filter, colX: cols[0], colY: cols[1], df: df, handle: h, model: x, modelY: y, weighted: weighted}
	if weighted {
		a.wcol = wcol[0]
	}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

type histo3DAction struct {
	name     string
	filter   *node.Filter
	colX     string
	colY     string
	colZ     string
	wcol     string
	weighted bool
	df       *DataFrame
	x, y, z  hist.Axis
	handle   *ResultHandle[*hist.H3D]
	partial  []*hist.H3D
}

func (a *histo3DAction) Name() string                { return a.name }
func (a *histo3DAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *histo3DAction) InitSlots(nSlots int) {
	a.partial = make([]*hist.H3D, nSlots)
	for i := range a.partial {
		a.partial[i] = hist.NewH3D(a.x, a.y, a.z)
	}
}

func (a *histo3DAction) Eval(slot int, row int64) error {
	cols := []string{a.colX, a.colY, a.colZ}
	if a.weighted {
		cols = append(cols, a.wcol)
	}
	vals, err := a.df.gatherValues(a.df.derived, cols, slot, row)
	if err != nil {
		return err
	}
	x, err := toFloat64(vals[0])
	if err != nil {
		return err
	}
	y, err := toFloat64(vals[1])
	if err != nil {
		return err
	}
	z, err := toFloat64(vals[2])
	if err != nil {
		return err
	}
	w := 1.0
	if a.weighted {
		w, err = toFloat64(vals[3])
		if err != nil {
			return err
		}
	}
	a.partial[slot].Fill(x, y, z, w)
	return nil
}

func (a *histo3DAction) Merge() error {
	out := hist.NewH3D(a.x, a.y, a.z)
	for _, p := range a.partial {
		out.Add(p)
	}
	a.handle.set(out)
	return nil
}

// Histo3D books a three-dimensional histogram over colX, colY, colZ.
func Histo3D(df *DataFrame, x, y, z hist.Axis, colX, colY, colZ string, wcol ...string) (*ResultHandle[*hist.H3D], error) {
	if !x.HasLimits() || !y.HasLimits() || !z.HasLimits() {
		return nil, tf.ErrHistogramNeedsAxisLimits.New(3)
	}
	if len(wcol) > 1 {
		return nil, fmt.Errorf("Histo3D: at most one weight column, got %d", len(wcol))
	}
	cols, err := df.resolveFixedArity([]string{colX, colY, colZ}, 3)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if _, err := df.inferScalarType(c); err != nil {
			return nil, err
		}
	}
	uses := append([]string{}, cols...)
	weighted := len(wcol) == 1 && wcol[0] != ""
	if weighted {
		uses = append(uses, wcol[0])
	}
	if err := df.registerUses(uses); err != nil {
		return nil, err
	}
	h := newResultHandle[*hist.H3D](df.engine)
	a := &histo3DAction{filter: df.filter, colX: cols[0], colY: cols[1], colZ: cols[2], df: df, handle: h, x: x, y: y, z: z, weighted: weighted}
	if weighted {
		a.wcol = wcol[0]
	}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}
