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

// Package auth gates an engine's two privileged operations: booking a
// node onto the graph and triggering a run over the input table. There is
// no network-facing credential here -- the caller identifier is whatever
// string the embedding program supplies through Config, the same way a
// library call is authorized by its embedder rather than by a protocol.
package auth

import (
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

// Permission holds permissions required by an operation or granted to a
// caller.
type Permission int

const (
	// BookPerm allows adding Filters, DerivedColumns, and Actions to a
	// graph.
	BookPerm Permission = 1 << iota
	// RunPerm allows triggering Engine.Run, and therefore reading the
	// input table.
	RunPerm
)

var (
	// AllPermissions holds every defined permission.
	AllPermissions = BookPerm | RunPerm
	// DefaultPermissions are granted to a caller with no explicit grant:
	// RunPerm only, the weaker of the two (mirrors read-only as a safer
	// default than write).
	DefaultPermissions = RunPerm

	// PermissionNames translates between human and machine representations.
	PermissionNames = map[string]Permission{
		"book": BookPerm,
		"run":  RunPerm,
	}

	// ErrNotAuthorized is returned when a caller is not allowed to use a
	// permission.
	ErrNotAuthorized = errors.NewKind("not authorized")
	// ErrNoPermission is returned when the caller lacks a needed permission.
	ErrNoPermission = errors.NewKind("caller does not have permission: %s")
)

// String returns every permission set in p, comma-joined.
func (p Permission) String() string {
	var str []string
	for k, v := range PermissionNames {
		if p&v != 0 {
			str = append(str, k)
		}
	}
	return strings.Join(str, ", ")
}

// Auth checks a caller's permission to book graph nodes or trigger a run.
type Auth interface {
	// Allowed returns nil if caller holds permission, ErrNotAuthorized
	// otherwise.
	Allowed(caller string, permission Permission) error
}
