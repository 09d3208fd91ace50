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

package auth

// None is an Auth that always succeeds: the default for a single-tenant,
// in-process engine with no embedding program's access control to defer
// to.
type None struct{}

// Allowed implements Auth.
func (n *None) Allowed(caller string, permission Permission) error {
	return nil
}
