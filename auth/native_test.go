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
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/tabflow/tabflow/auth"
)

const (
	baseConfig = `
[
	{
		"name": "root",
		"Permissions": ["book", "run"]
	},
	{
		"name": "reader",
		"Permissions": ["run"]
	},
	{
		"name": "no_permissions",
		"Permissions": []
	}
]`
	duplicateCaller = `
[
	{ "name": "caller" },
	{ "name": "caller" }
]`
	badPermission = `
[
	{ "name": "caller", "Permissions": ["book", "run", "admin"] }
]`
	badJSON = "I,am{not}JSON"
)

func writeConfig(config string) (string, error) {
	tmp, err := ioutil.TempFile("", "native-config")
	if err != nil {
		return "", err
	}

	if _, err := tmp.WriteString(config); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func TestNativeSingle(t *testing.T) {
	req := require.New(t)

	a := auth.NewNativeSingle("pipeline", "secret", auth.AllPermissions)
	req.NoError(a.Allowed("pipeline", auth.BookPerm))
	req.NoError(a.Allowed("pipeline", auth.RunPerm))
	req.Error(a.Allowed("someone-else", auth.BookPerm))
}

func TestNativeSingleRestrictedPermission(t *testing.T) {
	req := require.New(t)

	a := auth.NewNativeSingle("reporter", "secret", auth.RunPerm)
	req.NoError(a.Allowed("reporter", auth.RunPerm))
	req.Error(a.Allowed("reporter", auth.BookPerm))
}

func TestNativeFile(t *testing.T) {
	req := require.New(t)

	conf, err := writeConfig(baseConfig)
	req.NoError(err)
	defer os.Remove(conf)

	a, err := auth.NewNativeFile(conf)
	req.NoError(err)

	req.NoError(a.Allowed("root", auth.BookPerm))
	req.NoError(a.Allowed("root", auth.RunPerm))

	req.Error(a.Allowed("reader", auth.BookPerm))
	req.NoError(a.Allowed("reader", auth.RunPerm))

	req.Error(a.Allowed("no_permissions", auth.BookPerm))
	req.NoError(a.Allowed("no_permissions", auth.RunPerm))

	req.Error(a.Allowed("nonexistent", auth.BookPerm))
}

func TestNativeErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		err    *errors.Kind
	}{
		{"duplicate_caller", duplicateCaller, auth.ErrDuplicateCaller},
		{"bad_permission", badPermission, auth.ErrUnknownPermission},
		{"malformed", badJSON, auth.ErrParseUserFile},
	}

	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			req := require.New(t)

			conf, err := writeConfig(c.config)
			req.NoError(err)
			defer os.Remove(conf)

			_, err = auth.NewNativeFile(conf)
			req.Error(err)
			req.True(c.err.Is(err))
		})
	}
}
