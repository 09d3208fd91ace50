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

package node

// Action is a terminal node: it consumes rows that pass its upstream
// Filter chain and accumulates a per-slot partial, which Merge later folds
// into a single user-visible aggregate. The generic result types (Count,
// Reduce[T], Take[T], Histo1D, ...) live in the root tabflow package,
// since Go methods cannot introduce new type parameters; Action is the
// minimal non-generic contract the engine's row loop drives them through.
type Action interface {
	// Name identifies the action for logging; may be empty.
	Name() string
	// UpstreamFilter is the Filter chain gating this action, or nil if
	// the action is booked directly off the source (no filter).
	UpstreamFilter() *Filter
	// InitSlots allocates per-slot partial-aggregate state.
	InitSlots(nSlots int)
	// Eval is invoked once per (slot, row) that passes UpstreamFilter;
	// it materializes the action's declared input columns and invokes
	// the user callable.
	Eval(slot int, row int64) error
	// Merge combines every slot's partial into the published aggregate
	// and is called exactly once, single-threaded, after every slot has
	// finished its row range.
	Merge() error
}
