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
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/tabflow/tabflow/auth"
)

type Authorization struct {
	caller string
	p      auth.Permission
	err    error
}

type Run struct {
	caller string
	table  string
	d      time.Duration
	err    error
}

type auditTest struct {
	authorization Authorization
	run           Run
}

func (a *auditTest) Authorization(caller string, p auth.Permission, err error) {
	a.authorization = Authorization{caller: caller, p: p, err: err}
}

func (a *auditTest) Run(caller, table string, d time.Duration, err error) {
	a.run = Run{caller: caller, table: table, d: d, err: err}
}

func TestAuditAuthorization(t *testing.T) {
	req := require.New(t)

	a := auth.NewNativeSingle("user", "secret", auth.RunPerm)
	at := new(auditTest)
	audit := auth.NewAudit(a, at)

	req.NoError(audit.Allowed("user", auth.RunPerm))
	req.Equal("user", at.authorization.caller)
	req.Equal(auth.RunPerm, at.authorization.p)
	req.NoError(at.authorization.err)

	err := audit.Allowed("user", auth.BookPerm)
	req.Error(err)
	req.Equal(err, at.authorization.err)
}

func TestAuditLog(t *testing.T) {
	req := require.New(t)

	logger, hook := test.NewNullLogger()
	l := auth.NewAuditLog(logger)

	l.Authorization("user", auth.RunPerm, nil)
	e := hook.LastEntry()
	req.NotNil(e)
	req.Equal(logrus.InfoLevel, e.Level)
	m := logrus.Fields{
		"system":     "audit",
		"action":     "authorization",
		"caller":     "user",
		"permission": auth.RunPerm.String(),
		"success":    true,
	}
	req.Equal(m, e.Data)

	permErr := auth.ErrNoPermission.New(auth.BookPerm)
	l.Authorization("user", auth.BookPerm, permErr)
	e = hook.LastEntry()
	m["success"] = false
	m["permission"] = auth.BookPerm.String()
	m["err"] = permErr
	req.Equal(m, e.Data)

	l.Run("user", "events", 808*time.Second, nil)
	e = hook.LastEntry()
	req.NotNil(e)
	m = logrus.Fields{
		"system":   "audit",
		"action":   "run",
		"caller":   "user",
		"table":    "events",
		"duration": 808 * time.Second,
		"success":  true,
	}
	req.Equal(m, e.Data)

	l.Run("user", "events", 808*time.Second, permErr)
	e = hook.LastEntry()
	m["success"] = false
	m["err"] = permErr
	req.Equal(m, e.Data)
}
