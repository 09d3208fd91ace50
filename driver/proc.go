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

package driver

import "sync"

// A ProcessManager hands out IDs for connections and queries against one
// open catalog.
type ProcessManager interface {
	// NextConnectionID returns the next unused connection ID.
	NextConnectionID() uint32
	// NextQueryID returns the next unused query ID.
	NextQueryID() uint64
}

// SimpleProcessManager returns incrementing IDs. The zero value is usable.
type SimpleProcessManager struct {
	mu      sync.Mutex
	connID  uint32
	queryID uint64
}

// NextConnectionID returns the next unused connection ID.
func (m *SimpleProcessManager) NextConnectionID() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connID++
	return m.connID
}

// NextQueryID returns the next unused query ID.
func (m *SimpleProcessManager) NextQueryID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryID++
	return m.queryID
}
