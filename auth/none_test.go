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

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow/auth"
)

func TestNoneAllowsEveryCallerAndPermission(t *testing.T) {
	a := new(auth.None)

	require.NoError(t, a.Allowed("root", auth.BookPerm))
	require.NoError(t, a.Allowed("", auth.RunPerm))
	require.NoError(t, a.Allowed("anyone", auth.AllPermissions))
}
