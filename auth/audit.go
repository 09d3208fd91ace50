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

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditMethod is called to log the audit trail of authorization and run
// events.
type AuditMethod interface {
	// Authorization logs a permission check.
	Authorization(caller string, p Permission, err error)
	// Run logs a completed Engine.Run.
	Run(caller, table string, d time.Duration, err error)
}

// NewAudit wraps auth so every Allowed call is also sent to method.
func NewAudit(auth Auth, method AuditMethod) Auth {
	return &Audit{auth: auth, method: method}
}

// Audit is an Auth proxy that emits an audit trail.
type Audit struct {
	auth   Auth
	method AuditMethod
}

// Allowed implements Auth.
func (a *Audit) Allowed(caller string, permission Permission) error {
	err := a.auth.Allowed(caller, permission)
	a.method.Authorization(caller, permission, err)
	return err
}

// Run implements the same pass-through pattern as Allowed, for callers
// that hold an *Audit directly rather than through the Auth interface.
func (a *Audit) Run(caller, table string, d time.Duration, err error) {
	a.method.Run(caller, table, d, err)
}

// NewAuditLog creates an AuditMethod that logs to a logrus.Logger.
func NewAuditLog(l *logrus.Logger) AuditMethod {
	return &AuditLog{log: l.WithField("system", "audit")}
}

const auditLogMessage = "audit trail"

// AuditLog logs audit trails to a logrus.Logger.
type AuditLog struct {
	log *logrus.Entry
}

// Authorization implements AuditMethod.
func (a *AuditLog) Authorization(caller string, p Permission, err error) {
	fields := logrus.Fields{
		"action":     "authorization",
		"caller":     caller,
		"permission": p.String(),
		"success":    err == nil,
	}
	if err != nil {
		fields["err"] = err
	}
	a.log.WithFields(fields).Info(auditLogMessage)
}

// Run implements AuditMethod.
func (a *AuditLog) Run(caller, table string, d time.Duration, err error) {
	fields := logrus.Fields{
		"action":   "run",
		"caller":   caller,
		"table":    table,
		"duration": d,
		"success":  err == nil,
	}
	if err != nil {
		fields["err"] = err
	}
	a.log.WithFields(fields).Info(auditLogMessage)
}
