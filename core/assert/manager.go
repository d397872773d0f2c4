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


// Package assert is a fluent assertion library for tests.
//
//	assert.For(ctx, "region lookup").That(p.Address()).Equals(uint64(0x1000))
//
// Nothing is written for an assertion that holds. One that fails reports its
// title and the compared values in aligned columns.
package assert

import (
	"context"
	"fmt"
	"os"

	"github.com/google/gfxretrace/core/log"
)

// Output is the part of testing.TB that failed assertions report through.
type Output interface {
	Fatal(...interface{})
	Error(...interface{})
	Log(...interface{})
}

// Manager builds assertions that report to a single Output.
type Manager struct {
	out Output
}

// To returns a Manager reporting to t, which is an Output such as a
// *testing.T, a context carrying a log handler, or nil for stdout.
func To(t interface{}) Manager {
	switch t := t.(type) {
	case nil:
		return Manager{stdout{}}
	case context.Context:
		return Manager{logOutput{t}}
	case Output:
		return Manager{t}
	}
	panic(fmt.Errorf("Unsupported assertion target type %T", t))
}

// For is To(t).For(msg, args...).
func For(t interface{}, msg string, args ...interface{}) *Assertion {
	return To(t).For(msg, args...)
}

// For starts an assertion titled by the formatted msg.
func (m Manager) For(msg string, args ...interface{}) *Assertion {
	return &Assertion{to: m.out, title: fmt.Sprintf(msg, args...)}
}

// logOutput reports through the logger carried by a context.
type logOutput struct{ ctx context.Context }

func (o logOutput) Fatal(args ...interface{}) { log.F(o.ctx, true, "%s", fmt.Sprint(args...)) }
func (o logOutput) Error(args ...interface{}) { log.E(o.ctx, "%s", fmt.Sprint(args...)) }
func (o logOutput) Log(args ...interface{})   { log.I(o.ctx, "%s", fmt.Sprint(args...)) }

type stdout struct{}

func (stdout) Fatal(args ...interface{}) {
	fmt.Fprintln(os.Stdout, args...)
	panic("assert: fatal failure outside a test")
}

func (stdout) Error(args ...interface{}) { fmt.Fprintln(os.Stdout, args...) }
func (stdout) Log(args ...interface{})   { fmt.Fprintln(os.Stdout, args...) }
