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

// Package report builds the per-named-filter accounting the engine
// exposes through DataFrame.Report: accepted/rejected counts walked
// upstream from any node, in booking order.
package report

import (
	"fmt"
	"strings"

	"github.com/tabflow/tabflow/node"
)

// FilterStats is one named filter's accounting across every slot.
type FilterStats struct {
	Name     string
	Seen     uint64
	Accepted uint64
	Rejected uint64
}

// Report is an ordered list of FilterStats, in the booking order of their
// filters.
type Report struct {
	Stats []FilterStats
}

// Build walks the Filter chain rooted at leaf upstream to the source,
// collecting stats for every named filter, then reverses the walk so the
// result is in booking (root-to-leaf) order -- matching S5's expectation
// that a Report lists filters in the order they were added to the chain.
func Build(leaf *node.Filter) Report {
	var chain []*node.Filter
	for f := leaf; f != nil; f = f.Parent {
		if f.Name != "" {
			chain = append(chain, f)
		}
	}
	// chain is leaf-to-root; reverse for booking order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	r := Report{}
	for _, f := range chain {
		var seen, accepted, rejected uint64
		for s := 0; s < f.NumSlots(); s++ {
			accepted += f.Accepted(s)
			rejected += f.Rejected(s)
		}
		seen = accepted + rejected
		r.Stats = append(r.Stats, FilterStats{
			Name:     f.Name,
			Seen:     seen,
			Accepted: accepted,
			Rejected: rejected,
		})
	}
	return r
}

// String renders the report the way a human reads it on a terminal, one
// line per named filter.
func (r Report) String() string {
	var b strings.Builder
	for _, s := range r.Stats {
		fmt.Fprintf(&b, "%-20s seen=%-10d accepted=%-10d rejected=%d\n", s.Name, s.Seen, s.Accepted, s.Rejected)
	}
	return b.String()
}
