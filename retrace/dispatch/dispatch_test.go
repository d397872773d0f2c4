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

package dispatch_test

import (
	"context"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/dispatch"
)

type counter map[string]int

func (c counter) cb(tag string) dispatch.Callback {
	return func(ctx context.Context, _ *call.Call) error {
		c[tag]++
		return nil
	}
}

func TestCompleteness(t *testing.T) {
	ctx := log.Testing(t)
	hits := counter{}
	r := dispatch.New()
	r.AddCallbacks(dispatch.Table{
		{"glClear", hits.cb("glClear")},
		{"glDraw", hits.cb("glDraw")},
	})
	r.SetUnknown(hits.cb("unknown"))

	for i, name := range []string{"glClear", "glDraw", "glMystery", "glDraw"} {
		err := r.Retrace(ctx, &call.Call{No: uint64(i), Name: name})
		assert.For(ctx, "retrace %s", name).ThatError(err).Succeeded()
	}
	assert.For(ctx, "clear").ThatInteger(hits["glClear"]).Equals(1)
	assert.For(ctx, "draw").ThatInteger(hits["glDraw"]).Equals(2)
	assert.For(ctx, "unknown").ThatInteger(hits["unknown"]).Equals(1)
	assert.For(ctx, "unknown count").ThatInteger(r.Unknown()).Equals(1)
	assert.For(ctx, "names").ThatSlice(r.Names()).Equals([]string{"glClear", "glDraw"})
}

func TestOverrideOrder(t *testing.T) {
	ctx := log.Testing(t)
	hits := counter{}
	r := dispatch.New()
	r.AddCallbacks(dispatch.Table{{"X", hits.cb("A")}, {"Y", hits.cb("A")}})
	r.AddCallbacks(dispatch.Table{{"X", hits.cb("B")}})

	r.Retrace(ctx, &call.Call{Name: "X"})
	r.Retrace(ctx, &call.Call{Name: "Y"})
	assert.For(ctx, "A").ThatInteger(hits["A"]).Equals(1)
	assert.For(ctx, "B").ThatInteger(hits["B"]).Equals(1)
}

func TestErrorsPropagate(t *testing.T) {
	ctx := log.Testing(t)
	const errFailed = fault.Const("failed")
	r := dispatch.New()
	r.AddCallbacks(dispatch.Table{{"X", func(context.Context, *call.Call) error { return errFailed }}})
	assert.For(ctx, "err").ThatError(r.Retrace(ctx, &call.Call{Name: "X"})).Equals(errFailed)
}

func TestDefaultUnknown(t *testing.T) {
	w, buf := log.Buffer()
	ctx := log.PutHandler(context.Background(), log.Brief.Handler(w))
	ctx = log.PutVerbosity(ctx, 2)
	r := dispatch.New()
	for i := 0; i < 3; i++ {
		err := r.Retrace(ctx, &call.Call{No: uint64(i), Name: "glMystery"})
		assert.For(t, "retrace").ThatError(err).Succeeded()
	}
	r.Retrace(ctx, &call.Call{Name: "glOther"})
	assert.For(t, "log").ThatString(buf.String()).Equals(
		"W: Unsupported call glMystery\nD: Ignoring glMystery\nD: Ignoring glMystery\nW: Unsupported call glOther")

	buf.Reset()
	quiet := log.PutVerbosity(ctx, -1)
	r = dispatch.New()
	r.Retrace(quiet, &call.Call{Name: "glMystery"})
	assert.For(t, "quiet").ThatString(buf.String()).Equals("")

	r.SetUnknown(nil)
	assert.For(t, "reset").ThatError(r.Retrace(ctx, &call.Call{Name: "glMystery"})).Succeeded()
}

func TestLinearDispatch(t *testing.T) {
	ctx := log.Testing(t)
	table := dispatch.Table{{"A", nil}, {"B", nil}}
	hits := counter{}
	table[0].Callback = hits.cb("A")
	table[1].Callback = hits.cb("B")

	r := dispatch.New()
	r.AddCallbacks(table)
	r.SetUnknown(hits.cb("registry unknown"))

	for _, name := range []string{"A", "B", "C"} {
		c := &call.Call{Name: name}
		dispatch.Dispatch(ctx, table, c, hits.cb("linear unknown"))
		r.Retrace(ctx, c)
	}
	assert.For(ctx, "A").ThatInteger(hits["A"]).Equals(2)
	assert.For(ctx, "B").ThatInteger(hits["B"]).Equals(2)
	assert.For(ctx, "unknowns").ThatInteger(hits["linear unknown"]).Equals(hits["registry unknown"])
	assert.For(ctx, "nil unknown").ThatError(dispatch.Dispatch(ctx, table, &call.Call{Name: "C"}, nil)).Succeeded()
}
