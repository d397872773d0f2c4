// Copyright (C) 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package env fills tagged configuration structs from environment variables.
//
// Verb flag structs carry `env:"NAME"` tags next to their `help:` tags. The
// environment is applied before the command line is parsed, so an explicit
// flag always wins over the variable.
package env

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Prefix is prepended to every tag name when reading the environment.
const Prefix = "RETRACE_"

// Apply fills the env tagged fields of the struct pointed to by v from the
// process environment.
func Apply(v interface{}) error {
	return ApplyFrom(v, environ())
}

// ApplyFrom fills the env tagged fields of the struct pointed to by v from
// the supplied name to value map.
func ApplyFrom(v interface{}, vars map[string]string) error {
	err := env.ParseWithOptions(v, env.Options{
		Prefix:      Prefix,
		Environment: vars,
	})
	return errors.Wrap(err, "Reading environment")
}

func environ() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 && strings.HasPrefix(kv, Prefix) {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}
