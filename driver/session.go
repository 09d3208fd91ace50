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

import (
	"context"
	"fmt"
)

// A CallerBuilder names the connection for logging and audit trails. The
// engine's own authorization caller is fixed at Engine construction
// (tabflow.Config.Caller) rather than per-connection, so this label is
// informational only: it never participates in an Allowed check.
type CallerBuilder interface {
	NewCaller(ctx context.Context, id uint32, conn *Connector) (string, error)
}

// DefaultCallerBuilder labels a connection "#<id>".
type DefaultCallerBuilder struct{}

// NewCaller returns the default "#<id>" label.
func (DefaultCallerBuilder) NewCaller(_ context.Context, id uint32, _ *Connector) (string, error) {
	return fmt.Sprintf("#%d", id), nil
}
