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

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/tabflow/tabflow/auth"
)

// Config configures an Engine. The zero Config is valid: nSlots defaults
// to 1 (serial), the default column list defaults to the table's full
// schema in declaration order, and a package-level logrus logger is used.
type Config struct {
	// NumSlots is the concurrency hint (§5's "nSlots contract"): 1 for a
	// serial run, or the number of parallel workers for a parallel run.
	// If zero, NumSlots defaults to 1.
	NumSlots int `yaml:"num_slots"`
	// DefaultColumns is substituted, truncated to arity, whenever a
	// booking call omits its column list (§4.8). If nil, it defaults to
	// every physical column in the table's schema, in schema order.
	DefaultColumns []string `yaml:"default_columns"`
	// Logger receives structured log output. If nil, logrus.StandardLogger()
	// is used.
	Logger *logrus.Logger `yaml:"-"`
	// Auth gates booking and running. If nil, every caller is allowed
	// everything (auth.None's behavior).
	Auth auth.Auth `yaml:"-"`
	// Caller identifies the principal making booking/run calls to Auth.
	Caller string `yaml:"caller"`
	// ReportWriter receives the rendered report every time Report() is
	// called, in addition to the structured value it returns (§4.1). If
	// nil, os.Stdout is used; set to io.Discard to suppress printing.
	ReportWriter io.Writer `yaml:"-"`
}

// ConfigFromYAML parses a Config from YAML bytes, the way a deployment
// would load engine tuning without recompiling.
func ConfigFromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) logger() *logrus.Logger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

func (c *Config) numSlots() int {
	if c == nil || c.NumSlots < 1 {
		return 1
	}
	return c.NumSlots
}

func (c *Config) auth() auth.Auth {
	if c != nil && c.Auth != nil {
		return c.Auth
	}
	return &auth.None{}
}

func (c *Config) caller() string {
	if c == nil {
		return ""
	}
	return c.Caller
}

func (c *Config) reportWriter() io.Writer {
	if c != nil && c.ReportWriter != nil {
		return c.ReportWriter
	}
	return os.Stdout
}
