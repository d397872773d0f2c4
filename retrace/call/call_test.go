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

package call_test

import (
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
)

func TestString(t *testing.T) {
	ctx := log.Testing(t)
	c := &call.Call{
		No:   12,
		Name: "cvFillRects",
		Args: []call.Value{
			call.Uint(2),
			call.Array{call.Float(0.5), call.Int(-1), call.Null{}},
			&call.Blob{Address: 0x1000, Data: make([]byte, 16)},
			&call.Struct{Name: "rect", Members: []call.Member{{"x", call.Uint(1)}, {"label", call.String("a")}}},
			call.Pointer(0xdead),
			call.Bool(true),
			nil,
		},
		Ret:   call.Uint(7),
		Flags: call.Render,
	}
	assert.For(ctx, "call").ThatString(c.String()).Equals(
		`12 cvFillRects(2, {0.5, -1, NULL}, blob(16)@0x1000, {x = 1, label = "a"}, 0xdead, true, NULL) = 7`)
	assert.For(ctx, "flags").ThatString(call.EndOfFrame | call.SwapRenderTarget).Equals("EndOfFrame|SwapRenderTarget")
	assert.For(ctx, "no flags").ThatString(call.Flags(0)).Equals("0")
	assert.For(ctx, "render").ThatBoolean(c.Flags.IsRender()).IsTrue()
	assert.For(ctx, "eof").ThatBoolean(c.Flags.IsEndOfFrame()).IsFalse()
}

func TestConversions(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		value call.Value
		u     uint64
		uErr  error
		i     int64
		iErr  error
		f     float64
	}{
		{call.Null{}, 0, nil, 0, nil, 0},
		{call.Bool(true), 1, nil, 1, nil, 1},
		{call.Int(-3), 0, call.ErrOutOfRange, -3, nil, -3},
		{call.Uint(1 << 63), 1 << 63, nil, 0, call.ErrOutOfRange, 1 << 63},
		{call.Float(2), 2, nil, 2, nil, 2},
		{call.Float(2.5), 0, call.ErrOutOfRange, 0, call.ErrOutOfRange, 2.5},
		{call.Pointer(0x1000), 0x1000, nil, 0x1000, nil, 0x1000},
		{&call.Blob{Address: 0x20}, 0x20, nil, 0x20, nil, 0x20},
	} {
		u, err := call.ToUint(test.value)
		assert.For(ctx, "ToUint(%v) err", test.value).ThatError(err).Equals(test.uErr)
		assert.For(ctx, "ToUint(%v)", test.value).That(u).Equals(test.u)
		i, err := call.ToInt(test.value)
		assert.For(ctx, "ToInt(%v) err", test.value).ThatError(err).Equals(test.iErr)
		assert.For(ctx, "ToInt(%v)", test.value).That(i).Equals(test.i)
		f, err := call.ToFloat(test.value)
		assert.For(ctx, "ToFloat(%v) err", test.value).ThatError(err).Succeeded()
		assert.For(ctx, "ToFloat(%v)", test.value).ThatFloat(f).Equals(test.f, 0)
	}
	_, err := call.ToUint(call.String("x"))
	assert.For(ctx, "string").ThatError(err).Equals(call.ErrNotNumeric)
	b, err := call.ToBool(call.Float(0.25))
	assert.For(ctx, "bool err").ThatError(err).Succeeded()
	assert.For(ctx, "bool").ThatBoolean(b).IsTrue()
}

func TestDecoder(t *testing.T) {
	ctx := log.Testing(t)
	blob := &call.Blob{Data: []byte{1, 2}}
	c := &call.Call{Name: "WriteBuffer", Args: []call.Value{call.Uint(0x1008), blob, call.String("bad")}}
	d := call.Decode(c)
	assert.For(ctx, "uint").That(d.Uint(0)).Equals(uint64(0x1008))
	assert.For(ctx, "blob").That(d.Blob(1)).Equals(blob)
	assert.For(ctx, "missing arg").That(d.Uint(5)).Equals(uint64(0))
	assert.For(ctx, "ok so far").ThatError(d.Err()).Succeeded()
	d.Float(2)
	d.Blob(0)
	assert.For(ctx, "first error").ThatError(d.Err()).HasMessage(`WriteBuffer argument 2 ("bad"): Value is not numeric`)
	assert.For(ctx, "cause").ThatError(d.Err()).HasCause(call.ErrNotNumeric)
	assert.For(ctx, "null blob").ThatSlice(call.Decode(&call.Call{}).Blob(0).Data).IsEmpty()
}
