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

package app

import (
	"bytes"
	"context"
	"flag"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
)

type echoVerb struct {
	Count int    `help:"number of repeats" env:"ECHO_COUNT"`
	Name  string `help:"name to echo"`

	ran  bool
	args []string
}

func (v *echoVerb) Run(ctx context.Context, flags flag.FlagSet) error {
	v.ran, v.args = true, flags.Args()
	return nil
}

func newRoot(actions ...*Verb) *Verb {
	root := &Verb{Name: "retrace"}
	for _, a := range actions {
		root.Add(a)
	}
	return root
}

func exitOf(f func()) (cause interface{}) {
	defer func() { cause = recover() }()
	f()
	return nil
}

func TestInvoke(t *testing.T) {
	ctx := log.Testing(t)
	echo := &echoVerb{Count: 1}
	root := newRoot(
		&Verb{Name: "echo", ShortHelp: "echo things", Action: echo},
		&Verb{Name: "dump", ShortHelp: "dump things", Action: &echoVerb{}},
	)
	err := root.Invoke(ctx, []string{"ec", "-count", "3", "-name", "frame", "rest"})
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "ran").ThatBoolean(echo.ran).IsTrue()
	assert.For(ctx, "count").ThatInteger(echo.Count).Equals(3)
	assert.For(ctx, "name").ThatString(echo.Name).Equals("frame")
	assert.For(ctx, "args").ThatSlice(echo.args).Equals([]string{"rest"})
}

func TestInvokeUsage(t *testing.T) {
	ctx := log.Testing(t)
	out := &bytes.Buffer{}
	old := UsageOutput
	UsageOutput = out
	defer func() { UsageOutput = old }()
	root := newRoot(
		&Verb{Name: "dump", Action: &echoVerb{}},
		&Verb{Name: "dumpall", Action: &echoVerb{}},
		&Verb{Name: "replay", Action: &echoVerb{}},
	)
	for _, args := range [][]string{{}, {"missing"}, {"replay", "-bogus"}} {
		assert.For(ctx, "%v exit", args).That(exitOf(func() { root.Invoke(ctx, args) })).Equals(UsageExit)
	}
	// An exact name is not ambiguous with a longer one.
	assert.For(ctx, "exact").ThatPanic(func() { root.Invoke(ctx, []string{"dump"}) }).DoesNotPanic()
	assert.For(ctx, "prefix").ThatPanic(func() { root.Invoke(ctx, []string{"du"}) }).Panics()
	assert.For(ctx, "usage").ThatString(out.String()).Contains("Verb 'missing' is unknown")
}

func TestDuplicateVerb(t *testing.T) {
	ctx := log.Testing(t)
	root := newRoot(&Verb{Name: "echo", Action: &echoVerb{}})
	assert.For(ctx, "dup").ThatPanic(func() { root.Add(&Verb{Name: "echo", Action: &echoVerb{}}) }).Panics()
}
