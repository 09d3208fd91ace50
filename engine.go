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

// Package tabflow is a declarative, lazily evaluated analysis engine for
// columnar event data. A caller composes a dataflow graph over a logical
// table -- filters, derived columns, and terminal actions -- and the
// engine defers all row reads until the first result is dereferenced, at
// which point a single pass over the input executes every booked action
// together, sharing column reads and filter evaluation across slots.
package tabflow

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellh/hashstructure"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/tabflow/tabflow/auth"
	"github.com/tabflow/tabflow/node"
	"github.com/tabflow/tabflow/report"
	"github.com/tabflow/tabflow/source"
	"github.com/tabflow/tabflow/tf"
)

// Engine owns a booked computation graph for one input table: the list of
// Filters, DerivedColumns, and Actions in booking order, the per-slot
// cursor pool, and the single-pass row loop that drives them all.
//
// Engine is safe for concurrent booking from multiple goroutines up to
// the first Run; Run itself serializes concurrent callers rather than
// defining concurrent-run semantics the spec never asked for.
type Engine struct {
	table        source.Table
	nSlots       int
	defaultCols  []string
	logger       *logrus.Logger
	metrics      *Metrics
	auth         auth.Auth
	caller       string
	reportWriter io.Writer

	mu            sync.Mutex
	filters       []*node.Filter
	derived       []*node.DerivedColumn
	derivedByName map[string]*node.DerivedColumn
	physicalCols  map[string]source.ColumnType
	actions       []node.Action
	usedColumns   map[string]struct{}
	cursors       []map[string]source.Cursor
	hasRun        bool
	closed        atomic.Bool
}

// New opens an Engine over table with the given configuration. cfg may be
// nil to take every default (nSlots=1, default columns = full schema,
// package logger).
func New(table source.Table, cfg *Config) *Engine {
	physical := make(map[string]source.ColumnType)
	var schemaOrder []string
	for _, c := range table.Schema() {
		physical[c.Name] = c.Type
		schemaOrder = append(schemaOrder, c.Name)
	}

	defaultCols := schemaOrder
	if cfg != nil && cfg.DefaultColumns != nil {
		defaultCols = cfg.DefaultColumns
	}

	e := &Engine{
		table:         table,
		nSlots:        cfg.numSlots(),
		defaultCols:   defaultCols,
		logger:        cfg.logger(),
		metrics:       NewMetrics(table.Name()),
		auth:          cfg.auth(),
		caller:        cfg.caller(),
		reportWriter:  cfg.reportWriter(),
		derivedByName: make(map[string]*node.DerivedColumn),
		physicalCols:  physical,
		usedColumns:   make(map[string]struct{}),
	}
	return e
}

// checkBook authorizes adding a node to the graph.
func (e *Engine) checkBook() error {
	return e.auth.Allowed(e.caller, auth.BookPerm)
}

// checkRun authorizes triggering a row pass.
func (e *Engine) checkRun() error {
	return e.auth.Allowed(e.caller, auth.RunPerm)
}

// NewDefault opens an Engine with every default setting.
func NewDefault(table source.Table) *Engine {
	return New(table, nil)
}

// DataFrame returns a chain builder rooted at the source: no filter
// applied yet, no derived columns visible.
func (e *Engine) DataFrame() *DataFrame {
	return &DataFrame{engine: e, derived: map[string]*node.DerivedColumn{}}
}

// Metrics exposes the engine's prometheus collectors for registration by
// the caller.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// NumSlots reports the concurrency level this engine was configured with.
func (e *Engine) NumSlots() int { return e.nSlots }

// Close releases the engine. Result handles obtained from it start
// failing with EngineGone; already-ready handles keep their published
// values (aggregates outlive the engine run by design, see §3's
// Lifecycles).
func (e *Engine) Close() error {
	e.closed.Store(true)
	return nil
}

func (e *Engine) isClosed() bool { return e.closed.Load() }

func (e *Engine) useColumn(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usedColumns[name] = struct{}{}
}

func (e *Engine) columnType(name string) (source.ColumnType, bool) {
	if d, ok := e.derivedByName[name]; ok {
		return d.Type, true
	}
	typ, ok := e.physicalCols[name]
	return typ, ok
}

func (e *Engine) bookFilter(f *node.Filter) error {
	if err := e.checkBook(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = append(e.filters, f)
	return nil
}

func (e *Engine) bookDerived(d *node.DerivedColumn) error {
	if err := e.checkBook(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, physical := e.physicalCols[d.Name]; physical {
		return tf.ErrDuplicateDerivedName.New(d.Name)
	}
	if _, exists := e.derivedByName[d.Name]; exists {
		return tf.ErrDuplicateDerivedName.New(d.Name)
	}
	e.derivedByName[d.Name] = d
	e.derived = append(e.derived, d)
	return nil
}

func (e *Engine) bookAction(a node.Action) error {
	if err := e.checkBook(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, a)
	return nil
}

// readColumn implements §4.4's physical-column path: seek the slot's
// cursor to row, reject non-contiguous array layouts, and return the
// boxed value.
func (e *Engine) readColumn(slot int, name string, row int64) (interface{}, error) {
	cur, ok := e.cursors[slot][name]
	if !ok {
		return nil, tf.ErrUnknownColumn.New(name)
	}
	if err := cur.Seek(row); err != nil {
		return nil, errors.Wrapf(err, "seeking column %q to row %d", name, row)
	}
	if checker, ok := cur.(source.NonContiguityChecker); ok && !checker.Contiguous() {
		return nil, tf.ErrNonContiguousArray.New(name)
	}
	return cur.Value()
}

// releaseCursors closes every cursor opened for the pass that's ending,
// for providers that hold a per-cursor resource (see
// source.CursorCloser). Run re-opens a fresh set on every call, so this
// must run whether the pass succeeded or failed.
func (e *Engine) releaseCursors(log *logrus.Entry) {
	for slot, cols := range e.cursors {
		for col, cur := range cols {
			closer, ok := cur.(source.CursorCloser)
			if !ok {
				continue
			}
			if err := closer.Close(); err != nil {
				log.WithError(err).WithFields(logrus.Fields{"slot": slot, "column": col}).Warn("tabflow: failed to release cursor")
			}
		}
	}
}

type graphSignature struct {
	Filters  []string
	Derived  []string
	NumActions int
}

func (e *Engine) signature() uint64 {
	sig := graphSignature{NumActions: len(e.actions)}
	for _, f := range e.filters {
		sig.Filters = append(sig.Filters, f.Name)
	}
	for _, d := range e.derived {
		sig.Derived = append(sig.Derived, d.Name)
	}
	h, err := hashstructure.Hash(sig, nil)
	if err != nil {
		return 0
	}
	return h
}

// Run executes one full pass over the input, sharing filter evaluation
// and column reads across every booked action. It is idempotent in
// effect: calling it again re-executes the pass and re-raises every
// result handle's ready flag, recomputing from scratch (§4.1). A failure
// from any user callable aborts the pass before any Merge, so a handle not
// yet ready stays not ready; ready flags are not cleared when a pass
// starts, so a handle made ready by an earlier pass stays ready and keeps
// that pass's value.
func (e *Engine) Run() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRun(); err != nil {
		return err
	}

	tracer := opentracing.GlobalTracer()
	span := tracer.StartSpan("tabflow.Run")
	defer span.Finish()

	runID := uuid.NewV4().String()
	log := e.logger.WithFields(logrus.Fields{
		"table":      e.table.Name(),
		"run_id":     runID,
		"slots":      e.nSlots,
		"graph_hash": fmt.Sprintf("%x", e.signature()),
	})
	start := time.Now()
	log.Debug("tabflow: run starting")

	for _, f := range e.filters {
		f.InitSlots(e.nSlots)
	}
	for _, d := range e.derived {
		d.InitSlots(e.nSlots)
	}
	for _, a := range e.actions {
		a.InitSlots(e.nSlots)
	}

	e.cursors = make([]map[string]source.Cursor, e.nSlots)
	for slot := 0; slot < e.nSlots; slot++ {
		e.cursors[slot] = make(map[string]source.Cursor, len(e.usedColumns))
		for col := range e.usedColumns {
			cur, err := e.table.Cursor(slot, col)
			if err != nil {
				e.releaseCursors(log)
				return tf.ErrSourceUnavailable.New(e.table.Name(), err)
			}
			e.cursors[slot][col] = cur
		}
	}
	defer e.releaseCursors(log)

	ranges := e.table.Partition(e.nSlots)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
		rows     int64
	)
	for slot, rng := range ranges {
		slot, rng := slot, rng
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := e.runSlot(slot, rng)
			atomic.AddInt64(&rows, n)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}()
	}
	wg.Wait()

	duration := time.Since(start)
	if e.metrics != nil {
		e.metrics.RunsTotal.Inc()
		e.metrics.RowsProcessed.Add(float64(rows))
		e.metrics.RunDuration.Observe(duration.Seconds())
	}

	if firstErr != nil {
		log.WithError(firstErr).Warn("tabflow: run failed")
		return firstErr
	}

	for _, a := range e.actions {
		if err := a.Merge(); err != nil {
			log.WithError(err).Warn("tabflow: merge failed")
			return errors.Wrap(err, "merging action results")
		}
	}

	e.hasRun = true
	log.WithFields(logrus.Fields{"rows": rows, "duration": duration}).Info("tabflow: run complete")
	return nil
}

// runSlot iterates one slot's contiguous row range, ascending, driving
// every action through its upstream filter chain. Per-row node evaluation
// order is Filter(s), then DerivedColumn(s) as consulted, then Action,
// exactly as §5 requires; across rows within a slot the order is ascending
// by construction of this loop.
func (e *Engine) runSlot(slot int, rng source.RowRange) (int64, error) {
	var n int64
	for row := rng.Start; row < rng.End; row++ {
		for _, a := range e.actions {
			pass := true
			if f := a.UpstreamFilter(); f != nil {
				var err error
				pass, err = f.CheckFilters(slot, row)
				if err != nil {
					return n, err
				}
			}
			if !pass {
				continue
			}
			if err := a.Eval(slot, row); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

// Report walks the Filter chain upstream of leaf (nil means every named
// filter booked against this engine, root-call semantics from §4.1),
// prints it to Config.ReportWriter, and returns accepted/rejected
// accounting in booking order. It fails with NotRun if the engine hasn't
// executed a pass yet.
func (e *Engine) Report(leaf *node.Filter) (report.Report, error) {
	e.mu.Lock()
	ran := e.hasRun
	e.mu.Unlock()
	if !ran {
		return report.Report{}, tf.ErrNotRun.New()
	}
	var r report.Report
	if leaf == nil {
		// Root call: report every named filter, in booking order.
		// Build a synthetic chain by walking the deepest-booked
		// filter so Build's upstream walk covers them all; since
		// branching (not joining) is the only graph shape, the last
		// booked filter's ancestor chain is a superset only when
		// there has been no branching. For the general, branching
		// case we instead fold over every booked filter directly.
		for _, f := range e.filters {
			if f.Name == "" {
				continue
			}
			var accepted, rejected uint64
			for s := 0; s < f.NumSlots(); s++ {
				accepted += f.Accepted(s)
				rejected += f.Rejected(s)
			}
			r.Stats = append(r.Stats, report.FilterStats{
				Name:     f.Name,
				Seen:     accepted + rejected,
				Accepted: accepted,
				Rejected: rejected,
			})
		}
	} else {
		r = report.Build(leaf)
	}
	if e.reportWriter != nil {
		io.WriteString(e.reportWriter, r.String())
	}
	return r, nil
}
