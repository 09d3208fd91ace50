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

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the engine's observability surface: rows processed and run
// duration, the same shape dolthub's engine exposes through its own
// process list and memory manager.
type Metrics struct {
	RunsTotal     prometheus.Counter
	RowsProcessed prometheus.Counter
	RunDuration   prometheus.Histogram
}

// NewMetrics constructs fresh, unregistered collectors labeled by table
// name so multiple engines in one process don't collide in a shared
// registry.
func NewMetrics(table string) *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tabflow",
			Name:        "runs_total",
			Help:        "Number of completed Engine.Run passes.",
			ConstLabels: prometheus.Labels{"table": table},
		}),
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tabflow",
			Name:        "rows_processed_total",
			Help:        "Number of rows seen across every slot and run.",
			ConstLabels: prometheus.Labels{"table": table},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "tabflow",
			Name:        "run_duration_seconds",
			Help:        "Wall-clock duration of an Engine.Run pass.",
			ConstLabels: prometheus.Labels{"table": table},
		}),
	}
}

// MustRegister registers every collector with reg, panicking on a
// duplicate registration the way prometheus' own helpers do.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.RunsTotal, m.RowsProcessed, m.RunDuration)
}
