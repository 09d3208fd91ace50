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
	"bytes"
	"sync/atomic"

	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/tabflow/tabflow/tf"
)

// ResultHandle is a lazy, user-visible value bound to one booked Action.
// It holds a value shared with the engine's merge step plus a ready flag
// that flips exactly once, from false to true, during Run. The handle
// references its Engine directly rather than through a true weak pointer
// (Go's runtime didn't expose one until much later than this module
// targets); EngineGone is instead detected through the engine's own
// "closed" flag, set by Engine.Close, which plays the same role.
type ResultHandle[T any] struct {
	engine *Engine
	ready  *atomic.Bool
	value  *T
}

func newResultHandle[T any](e *Engine) *ResultHandle[T] {
	return &ResultHandle[T]{
		engine: e,
		ready:  &atomic.Bool{},
		value:  new(T),
	}
}

// Get returns the aggregate, triggering Engine.Run on first dereference if
// it hasn't run yet. Subsequent calls return the cached value without
// re-running, unless the caller explicitly calls Engine.Run again.
func (r *ResultHandle[T]) Get() (T, error) {
	var zero T
	if r.ready.Load() {
		return *r.value, nil
	}
	if r.engine.isClosed() {
		return zero, tf.ErrEngineGone.New()
	}
	if err := r.engine.Run(); err != nil {
		return zero, err
	}
	return *r.value, nil
}

// Ready reports whether the result has already been computed, without
// triggering a run.
func (r *ResultHandle[T]) Ready() bool { return r.ready.Load() }

// MarshalSnapshot msgpack-encodes the current value for out-of-process
// transfer once the handle is ready. It does not trigger a run -- callers
// that want an up-to-date snapshot should call Get first.
func (r *ResultHandle[T]) MarshalSnapshot() ([]byte, error) {
	if !r.ready.Load() {
		return nil, tf.ErrNotRun.New()
	}
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(*r.value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *ResultHandle[T]) set(v T) {
	*r.value = v
	r.ready.Store(true)
}
