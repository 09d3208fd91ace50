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
	"math"

	"github.com/spf13/cast"

	"github.com/tabflow/tabflow/node"
	"github.com/tabflow/tabflow/report"
	"github.com/tabflow/tabflow/source"
	"github.com/tabflow/tabflow/tf"
)

// PredicateFunc is a Filter's user callable. It receives one value per
// declared input column, in declared order.
type PredicateFunc func(vals ...interface{}) (bool, error)

// DefineFunc is a Define's user expression.
type DefineFunc func(vals ...interface{}) (interface{}, error)

// ForeachFunc is invoked once per row that reaches a Foreach action.
type ForeachFunc func(vals ...interface{}) error

// ForeachSlotFunc is invoked once per row that reaches a ForeachSlot
// action, with the worker's slot index, so the callback can maintain its
// own slot-local accumulation without synchronization.
type ForeachSlotFunc func(slot int, vals ...interface{}) error

// DataFrame is a chain builder: an immutable position in the computation
// graph, carrying the current upstream Filter (nil at the source) and the
// set of derived columns visible from here. Every booking call returns a
// new DataFrame rather than mutating the receiver, so branching off the
// same parent never leaks one branch's derived columns into a sibling's.
type DataFrame struct {
	engine  *Engine
	filter  *node.Filter
	derived map[string]*node.DerivedColumn
}

func copyDerivedMap(m map[string]*node.DerivedColumn) map[string]*node.DerivedColumn {
	out := make(map[string]*node.DerivedColumn, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// resolveVariadic implements §4.8's policy for variadic-arity callables
// (Filter, Define, Foreach, ForeachSlot): an explicit, non-empty column
// list is used as given; an empty one substitutes the engine's entire
// default column list rather than a truncation, since a variadic
// callable's arity isn't fixed ahead of booking.
func (df *DataFrame) resolveVariadic(explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	return df.engine.defaultCols
}

// resolveFixedArity implements §4.8 for fixed-arity typed actions (Min,
// Max, Mean, Reduce, Take, Histo1D/2D/3D): either every column is given
// explicitly, or none are, in which case the first k default columns are
// substituted positionally. A partially-specified list is a booking error
// rather than a silent partial default.
func (df *DataFrame) resolveFixedArity(explicit []string, k int) ([]string, error) {
	if len(explicit) == k {
		return explicit, nil
	}
	if len(explicit) == 0 {
		if len(df.engine.defaultCols) < k {
			return nil, tf.ErrInsufficientDefaults.New(k, len(df.engine.defaultCols))
		}
		return df.engine.defaultCols[:k], nil
	}
	return nil, tf.ErrInsufficientDefaults.New(k, len(explicit))
}

// registerUses validates every column name against the visible derived
// set and the engine's physical schema, and tells the engine to open a
// cursor for each physical name referenced.
func (df *DataFrame) registerUses(cols []string) error {
	for _, c := range cols {
		if _, ok := df.derived[c]; ok {
			continue
		}
		if _, ok := df.engine.physicalCols[c]; !ok {
			return tf.ErrUnknownColumn.New(c)
		}
		df.engine.useColumn(c)
	}
	return nil
}

// gatherValues implements §4.4: a derived name delegates to its
// DerivedColumn's memoized value, everything else reads through the
// slot's physical cursor.
func (df *DataFrame) gatherValues(derived map[string]*node.DerivedColumn, cols []string, slot int, row int64) ([]interface{}, error) {
	vals := make([]interface{}, len(cols))
	for i, c := range cols {
		if d, ok := derived[c]; ok {
			v, err := d.Value(slot, row)
			if err != nil {
				return nil, err
			}
			vals[i] = v
			continue
		}
		v, err := df.engine.readColumn(slot, c, row)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// inferScalarType implements §4.7's type dispatcher restricted to the
// scalar members of the closed set: a Min/Max/Mean result is always a
// float64 regardless of the source's storage width, so dispatch here only
// validates that the column's element type is one the dispatcher knows
// how to widen, rather than selecting a template instantiation the way a
// statically templated core would.
func (df *DataFrame) inferScalarType(name string) (source.ColumnType, error) {
	typ, ok := df.engine.columnType(name)
	if !ok {
		return source.TypeUnknown, tf.ErrUnknownColumn.New(name)
	}
	switch typ {
	case source.TypeInt8, source.TypeInt32, source.TypeFloat64:
		return typ, nil
	default:
		return source.TypeUnknown, tf.ErrCannotInferType.New(name)
	}
}

// inferType is the full §4.7 closed set, scalar and vector, used by
// TakeAny, which preserves the column's native shape. The histogram family
// dispatches through inferScalarType instead.
func (df *DataFrame) inferType(name string) (source.ColumnType, error) {
	typ, ok := df.engine.columnType(name)
	if !ok {
		return source.TypeUnknown, tf.ErrUnknownColumn.New(name)
	}
	switch typ {
	case source.TypeInt8, source.TypeInt32, source.TypeFloat64, source.TypeVectorFloat64, source.TypeVectorFloat32:
		return typ, nil
	default:
		return source.TypeUnknown, tf.ErrCannotInferType.New(name)
	}
}

// toFloat64 widens one dispatched scalar value to float64 for Min/Max/Mean
// and for the histogram fill values and weights.
func toFloat64(v interface{}) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	return f, nil
}

// Filter books a predicate gating every downstream node on this branch.
// name may be empty for an anonymous filter (not counted in Report).
func (df *DataFrame) Filter(name string, pred PredicateFunc, cols ...string) (*DataFrame, error) {
	resolved := df.resolveVariadic(cols)
	if err := df.registerUses(resolved); err != nil {
		return nil, err
	}
	derivedSnapshot := df.derived
	eval := func(slot int, row int64) (bool, error) {
		vals, err := df.gatherValues(derivedSnapshot, resolved, slot, row)
		if err != nil {
			return false, err
		}
		ok, err := pred(vals...)
		if err != nil {
			return false, tf.ErrUserCallableThrew.New(err)
		}
		return ok, nil
	}
	f := node.NewFilter(name, df.filter, eval)
	if err := df.engine.bookFilter(f); err != nil {
		return nil, err
	}
	return &DataFrame{engine: df.engine, filter: f, derived: df.derived}, nil
}

// Define books a derived column, opaque to the type dispatcher (recorded
// as source.TypeRecord). Use DefineTyped to register a concrete element
// type eligible for Min/Max/Mean/Take/Histo dispatch over the new column.
func (df *DataFrame) Define(name string, fn DefineFunc, cols ...string) (*DataFrame, error) {
	return df.defineTyped(name, source.TypeRecord, fn, cols...)
}

// DefineTyped books a derived column with an explicit element type. The
// type is taken as given -- §4.7 only infers types for physical columns
// from storage metadata; a derived column's type is never inferred, only
// recorded at Define time.
func (df *DataFrame) DefineTyped(name string, typ source.ColumnType, fn DefineFunc, cols ...string) (*DataFrame, error) {
	return df.defineTyped(name, typ, fn, cols...)
}

func (df *DataFrame) defineTyped(name string, typ source.ColumnType, fn DefineFunc, cols ...string) (*DataFrame, error) {
	resolved := df.resolveVariadic(cols)
	if err := df.registerUses(resolved); err != nil {
		return nil, err
	}
	derivedSnapshot := df.derived
	expr := func(slot int, row int64) (interface{}, error) {
		vals, err := df.gatherValues(derivedSnapshot, resolved, slot, row)
		if err != nil {
			return nil, err
		}
		v, err := fn(vals...)
		if err != nil {
			return nil, tf.ErrUserCallableThrew.New(err)
		}
		return v, nil
	}
	d := node.NewDerivedColumn(name, typ, expr)
	if err := df.engine.bookDerived(d); err != nil {
		return nil, err
	}
	next := copyDerivedMap(df.derived)
	next[name] = d
	return &DataFrame{engine: df.engine, filter: df.filter, derived: next}, nil
}

// Report books no node; it reads back accounting for every named filter
// upstream of this DataFrame's position.
func (df *DataFrame) Report() (report.Report, error) {
	return df.engine.Report(df.filter)
}

// foreachAction and foreachSlotAction have no per-slot partial: the user
// callable is the side effect, invoked directly from Eval, and Merge is a
// no-op. Both are booked and run instantly (§4.5's "instant" actions)
// rather than returning a lazy handle.
type foreachAction struct {
	name   string
	filter *node.Filter
	cols   []string
	df     *DataFrame
	fn     ForeachFunc
}

func (a *foreachAction) Name() string               { return a.name }
func (a *foreachAction) UpstreamFilter() *node.Filter { return a.filter }
func (a *foreachAction) InitSlots(nSlots int)        {}
func (a *foreachAction) Merge() error                { return nil }

func (a *foreachAction) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, a.cols, slot, row)
	if err != nil {
		return err
	}
	if err := a.fn(vals...); err != nil {
		return tf.ErrUserCallableThrew.New(err)
	}
	return nil
}

type foreachSlotAction struct {
	name   string
	filter *node.Filter
	cols   []string
	df     *DataFrame
	fn     ForeachSlotFunc
}

func (a *foreachSlotAction) Name() string               { return a.name }
func (a *foreachSlotAction) UpstreamFilter() *node.Filter { return a.filter }
func (a *foreachSlotAction) InitSlots(nSlots int)        {}
func (a *foreachSlotAction) Merge() error                { return nil }

func (a *foreachSlotAction) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, a.cols, slot, row)
	if err != nil {
		return err
	}
	if err := a.fn(slot, vals...); err != nil {
		return tf.ErrUserCallableThrew.New(err)
	}
	return nil
}

// Foreach books and immediately runs a side-effecting action over every
// row reaching this DataFrame's position.
func (df *DataFrame) Foreach(fn ForeachFunc, cols ...string) error {
	resolved := df.resolveVariadic(cols)
	if err := df.registerUses(resolved); err != nil {
		return err
	}
	a := &foreachAction{filter: df.filter, cols: resolved, df: df, fn: fn}
	if err := df.engine.bookAction(a); err != nil {
		return err
	}
	return df.engine.Run()
}

// ForeachSlot is Foreach with slot-index visibility for callbacks that
// maintain their own slot-local state.
func (df *DataFrame) ForeachSlot(fn ForeachSlotFunc, cols ...string) error {
	resolved := df.resolveVariadic(cols)
	if err := df.registerUses(resolved); err != nil {
		return err
	}
	a := &foreachSlotAction{filter: df.filter, cols: resolved, df: df, fn: fn}
	if err := df.engine.bookAction(a); err != nil {
		return err
	}
	return df.engine.Run()
}

// countAction counts rows reaching it, per slot, summed at merge.
type countAction struct {
	name   string
	filter *node.Filter
	handle *ResultHandle[uint64]
	counts []uint64
}

func (a *countAction) Name() string               { return a.name }
func (a *countAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *countAction) InitSlots(nSlots int) {
	a.counts = make([]uint64, nSlots)
}

func (a *countAction) Eval(slot int, row int64) error {
	a.counts[slot]++
	return nil
}

func (a *countAction) Merge() error {
	var total uint64
	for _, c := range a.counts {
		total += c
	}
	a.handle.set(total)
	return nil
}

// Count books a Count action and returns a lazy handle to the total
// number of rows that passed this DataFrame's filter chain.
func (df *DataFrame) Count() (*ResultHandle[uint64], error) {
	h := newResultHandle[uint64](df.engine)
	a := &countAction{filter: df.filter, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

// minAction/maxAction/meanAction implement the scalar §4.5 row "Min /
// Max / Mean" line: a per-slot double accumulator, merged with the
// matching associative operator. The empty-input sentinel (+Inf for Min,
// -Inf for Max) is the resolved answer to the open question in §9: no
// row means no bound, so the accumulator's own seed value is published
// unchanged.
type minAction struct {
	name    string
	filter  *node.Filter
	col     string
	df      *DataFrame
	handle  *ResultHandle[float64]
	partial []float64
}

func (a *minAction) Name() string                { return a.name }
func (a *minAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *minAction) InitSlots(nSlots int) {
	a.partial = make([]float64, nSlots)
	for i := range a.partial {
		a.partial[i] = math.Inf(1)
	}
}

func (a *minAction) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, []string{a.col}, slot, row)
	if err != nil {
		return err
	}
	f, err := toFloat64(vals[0])
	if err != nil {
		return err
	}
	if f < a.partial[slot] {
		a.partial[slot] = f
	}
	return nil
}

func (a *minAction) Merge() error {
	m := math.Inf(1)
	for _, p := range a.partial {
		if p < m {
			m = p
		}
	}
	a.handle.set(m)
	return nil
}

type maxAction struct {
	name    string
	filter  *node.Filter
	col     string
	df      *DataFrame
	handle  *ResultHandle[float64]
	partial []float64
}

func (a *maxAction) Name() string                { return a.name }
func (a *maxAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *maxAction) InitSlots(nSlots int) {
	a.partial = make([]float64, nSlots)
	for i := range a.partial {
		a.partial[i] = math.Inf(-1)
	}
}

func (a *maxAction) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, []string{a.col}, slot, row)
	if err != nil {
		return err
	}
	f, err := toFloat64(vals[0])
	if err != nil {
		return err
	}
	if f > a.partial[slot] {
		a.partial[slot] = f
	}
	return nil
}

func (a *maxAction) Merge() error {
	m := math.Inf(-1)
	for _, p := range a.partial {
		if p > m {
			m = p
		}
	}
	a.handle.set(m)
	return nil
}

// meanAction accumulates sum and count per slot; merge sums both before
// dividing once, rather than averaging per-slot means, so the result is
// exact regardless of how rows were partitioned.
type meanAction struct {
	name    string
	filter  *node.Filter
	col     string
	df      *DataFrame
	handle  *ResultHandle[float64]
	sum     []float64
	count   []uint64
}

func (a *meanAction) Name() string                { return a.name }
func (a *meanAction) UpstreamFilter() *node.Filter { return a.filter }

func (a *meanAction) InitSlots(nSlots int) {
	a.sum = make([]float64, nSlots)
	a.count = make([]uint64, nSlots)
}

func (a *meanAction) Eval(slot int, row int64) error {
	vals, err := a.df.gatherValues(a.df.derived, []string{a.col}, slot, row)
	if err != nil {
		return err
	}
	f, err := toFloat64(vals[0])
	if err != nil {
		return err
	}
	a.sum[slot] += f
	a.count[slot]++
	return nil
}

func (a *meanAction) Merge() error {
	var sum float64
	var count uint64
	for i := range a.sum {
		sum += a.sum[i]
		count += a.count[i]
	}
	if count == 0 {
		a.handle.set(0)
		return nil
	}
	a.handle.set(sum / float64(count))
	return nil
}

// Min books a Min action over col (or the first default column if col is
// empty), returning a lazy handle to the minimum value seen, widened to
// float64 per the §4.7 dispatcher.
func (df *DataFrame) Min(col ...string) (*ResultHandle[float64], error) {
	cols, err := df.resolveFixedArity(col, 1)
	if err != nil {
		return nil, err
	}
	if _, err := df.inferScalarType(cols[0]); err != nil {
		return nil, err
	}
	if err := df.registerUses(cols); err != nil {
		return nil, err
	}
	h := newResultHandle[float64](df.engine)
	a := &minAction{filter: df.filter, col: cols[0], df: df, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

// Max is Min's mirror.
func (df *DataFrame) Max(col ...string) (*ResultHandle[float64], error) {
	cols, err := df.resolveFixedArity(col, 1)
	if err != nil {
		return nil, err
	}
	if _, err := df.inferScalarType(cols[0]); err != nil {
		return nil, err
	}
	if err := df.registerUses(cols); err != nil {
		return nil, err
	}
	h := newResultHandle[float64](df.engine)
	a := &maxAction{filter: df.filter, col: cols[0], df: df, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}

// Mean books a Mean action over col.
func (df *DataFrame) Mean(col ...string) (*ResultHandle[float64], error) {
	cols, err := df.resolveFixedArity(col, 1)
	if err != nil {
		return nil, err
	}
	if _, err := df.inferScalarType(cols[0]); err != nil {
		return nil, err
	}
	if err := df.registerUses(cols); err != nil {
		return nil, err
	}
	h := newResultHandle[float64](df.engine)
	a := &meanAction{filter: df.filter, col: cols[0], df: df, handle: h}
	if err := df.engine.bookAction(a); err != nil {
		return nil, err
	}
	return h, nil
}
