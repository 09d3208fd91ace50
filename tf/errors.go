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

package tf

import "gopkg.in/src-d/go-errors.v1"

// Booking errors: surfaced at chain-building time, before any row is read.
var (
	ErrUnknownColumn            = errors.NewKind("unknown column %q")
	ErrDuplicateDerivedName     = errors.NewKind("derived column name %q is already in use")
	ErrInsufficientDefaults     = errors.NewKind("callable needs %d columns but only %d default columns are configured")
	ErrCannotInferType          = errors.NewKind("cannot infer element type for column %q")
	ErrBadPredicateSignature    = errors.NewKind("filter %q: predicate must return a bool")
	ErrBadReduceSignature       = errors.NewKind("reduce over column %q: no init value supplied and result type is not default-constructible")
	ErrHistogramNeedsAxisLimits = errors.NewKind("%dD histograms require axis limits to be set at booking time; deferred limits are only supported for 1D")
)

// Run errors: surfaced out of Engine.Run (and thus out of the first result
// handle dereference).
var (
	ErrUserCallableThrew = errors.NewKind("user callable failed: %v")
	ErrNonContiguousArray = errors.NewKind("column %q has a non-contiguous array layout")
	ErrSourceUnavailable  = errors.NewKind("input source %q unavailable: %v")
)

// Lifecycle errors.
var (
	ErrEngineGone = errors.NewKind("result handle outlived its engine")
	ErrNotRun     = errors.NewKind("report requested before the engine has run")
)
