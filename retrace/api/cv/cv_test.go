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

package cv_test

import (
	"encoding/binary"
	"image/color"
	"math"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/api"
	"github.com/google/gfxretrace/retrace/api/cv"
	"github.com/google/gfxretrace/retrace/backend"
	"github.com/google/gfxretrace/retrace/backend/soft"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/google/gfxretrace/retrace/handle"
)

type session struct {
	env *api.Env
	dev *soft.Device
	reg *dispatch.Registry
}

func newSession(t *testing.T) *session {
	dev := soft.New()
	t.Cleanup(dev.Close)
	s := &session{env: api.NewEnv(dev), dev: dev, reg: dispatch.New()}
	_, err := api.Install(s.env, s.reg, cv.API{})
	assert.For(t, "install").ThatError(err).Succeeded()
	win, _ := dev.CreateDrawable(8, 8)
	dev.MakeCurrent(win)
	return s
}

func (s *session) play(t *testing.T, calls ...*call.Call) {
	ctx := log.Testing(t)
	for _, c := range calls {
		assert.For(ctx, "%v", c).ThatError(s.reg.Retrace(ctx, c)).Succeeded()
	}
}

func (s *session) pixel(t *testing.T, x, y int) color.NRGBA {
	img, err := s.dev.Snapshot(log.Testing(t))
	assert.For(t, "snapshot").ThatError(err).Succeeded()
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// expect checks the pixel at x, y against want, allowing for rounding in the
// rasterizer.
func (s *session) expect(t *testing.T, name string, x, y int, want color.NRGBA) {
	got := s.pixel(t, x, y)
	near := func(a, b uint8) bool { return int(a)-int(b) <= 2 && int(b)-int(a) <= 2 }
	ok := near(got.R, want.R) && near(got.G, want.G) && near(got.B, want.B) && near(got.A, want.A)
	assert.For(t, "%s", name).Compare(got, "≈", want).Test(ok)
}

func cmd(name string, ret call.Value, args ...call.Value) *call.Call {
	return &call.Call{Name: name, Args: args, Ret: ret}
}

func floats(v ...float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func TestFill(t *testing.T) {
	s := newSession(t)
	s.play(t,
		cmd("cvClear", nil, call.Float(0), call.Float(0), call.Float(0), call.Float(1)),
		cmd("cvSetColor", nil, call.Float(1), call.Float(0), call.Float(0), call.Float(1)),
		cmd("cvFillRect", nil, call.Int(0), call.Int(0), call.Int(4), call.Int(4)),
	)
	s.expect(t, "filled", 1, 1, color.NRGBA{0xff, 0, 0, 0xff})
	s.expect(t, "outside", 6, 6, color.NRGBA{0, 0, 0, 0xff})
}

func TestFillRects(t *testing.T) {
	s := newSession(t)
	s.play(t,
		cmd("cvClear", nil, call.Float(0), call.Float(0), call.Float(0), call.Float(1)),
		cmd("cvSetColor", nil, call.Float(0), call.Float(1), call.Float(0), call.Float(1)),
		cmd("cvFillRects", nil, call.Uint(2), &call.Blob{Address: 0x8000, Data: floats(0, 0, 2, 2, 6, 6, 2, 2)}),
	)
	s.expect(t, "first", 1, 1, color.NRGBA{0, 0xff, 0, 0xff})
	s.expect(t, "second", 7, 7, color.NRGBA{0, 0xff, 0, 0xff})
	s.expect(t, "between", 4, 4, color.NRGBA{0, 0, 0, 0xff})
	assert.For(t, "blob bound").ThatBoolean(s.env.Regions.Lookup(log.Testing(t), 0x8004).IsRaw()).IsFalse()

	// The rectangles may also be a pointer to memory written earlier, or an
	// inline array.
	s.play(t,
		cmd("cvSetColor", nil, call.Float(0), call.Float(0), call.Float(1), call.Float(1)),
		cmd("cvFillRects", nil, call.Uint(1), call.Pointer(0x8010)),
		cmd("cvFillRects", nil, call.Uint(1), call.Array{call.Float(3), call.Float(3), call.Float(2), call.Float(2)}),
	)
	s.expect(t, "pointer", 7, 7, color.NRGBA{0, 0, 0xff, 0xff})
	s.expect(t, "array", 4, 4, color.NRGBA{0, 0, 0xff, 0xff})

	ctx := log.Testing(t)
	short := cmd("cvFillRects", nil, call.Uint(3), call.Pointer(0x8010))
	assert.For(ctx, "overrun").ThatError(s.reg.Retrace(ctx, short)).HasCause(cv.ErrBadRects)
	shortArray := cmd("cvFillRects", nil, call.Uint(1), call.Array{call.Float(1)})
	assert.For(ctx, "short array").ThatError(s.reg.Retrace(ctx, shortArray)).HasCause(cv.ErrBadRects)
	huge := cmd("cvFillRects", nil, call.Uint(1<<62), &call.Blob{Data: floats(0, 0, 1, 1)})
	assert.For(ctx, "huge count").ThatError(s.reg.Retrace(ctx, huge)).HasCause(cv.ErrBadRects)
}

func TestRenderTargets(t *testing.T) {
	s := newSession(t)
	ctx := log.Testing(t)
	s.play(t,
		cmd("cvCreateRenderTarget", call.Uint(0xabc0), call.Int(2), call.Int(2)),
		cmd("cvBindRenderTarget", nil, call.Uint(0xabc0)),
		cmd("cvClear", nil, call.Float(1), call.Float(1), call.Float(1), call.Float(1)),
	)
	targets := s.env.Handles.Kind(cv.RenderTargets)
	id, ok := targets.Lookup(0xabc0)
	assert.For(ctx, "mapped").ThatBoolean(ok).IsTrue()
	assert.For(ctx, "replay id").That(id).NotEquals(uint64(0xabc0))
	img, _ := s.dev.Snapshot(ctx)
	assert.For(ctx, "target size").ThatInteger(img.Bounds().Dx()).Equals(2)

	s.play(t,
		cmd("cvBindRenderTarget", nil, call.Uint(0)),
		cmd("cvDeleteRenderTarget", nil, call.Uint(0xabc0)),
	)
	// Unbinding mapped 0 to itself.
	assert.For(ctx, "forgotten").ThatInteger(targets.Len()).Equals(1)
	del := cmd("cvDeleteRenderTarget", nil, call.Uint(0xabc0))
	assert.For(ctx, "unknown").ThatPanic(func() { s.reg.Retrace(ctx, del) }).WithError(handle.ErrUnknownHandle)

	bad := cmd("cvBindRenderTarget", nil, call.Uint(0x999))
	assert.For(ctx, "bad bind").That(backend.CodeOf(s.reg.Retrace(ctx, bad))).Equals(backend.InvalidValue)
}

func TestImages(t *testing.T) {
	s := newSession(t)
	ctx := log.Testing(t)
	pixels := make([]byte, 2*2*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+2], pixels[i+3] = 0xff, 0xff
	}
	s.play(t,
		cmd("cvClear", nil, call.Float(0), call.Float(0), call.Float(0), call.Float(1)),
		cmd("cvCreateImage", call.Uint(77), call.Int(2), call.Int(2), &call.Blob{Data: pixels}),
		cmd("cvDrawImage", nil, call.Uint(77), call.Float(0), call.Float(0)),
		cmd("cvFlush", nil),
	)
	p := s.pixel(t, 0, 0)
	assert.For(ctx, "blue").ThatInteger(int(p.B)).IsAtLeast(0x80)
	s.play(t, cmd("cvDeleteImage", nil, call.Uint(77)))
	assert.For(ctx, "forgotten").ThatInteger(s.env.Handles.Kind(cv.Images).Len()).Equals(0)

	short := cmd("cvCreateImage", call.Uint(78), call.Int(4), call.Int(4), &call.Blob{Data: pixels})
	assert.For(ctx, "short pixels").ThatError(s.reg.Retrace(ctx, short)).Failed()
	for _, size := range [][2]int64{{1 << 31, 1 << 31}, {1 << 32, 1 << 32}, {math.MaxInt64, 2}} {
		huge := cmd("cvCreateImage", call.Uint(79), call.Int(size[0]), call.Int(size[1]), &call.Blob{})
		err := s.reg.Retrace(ctx, huge)
		assert.For(ctx, "%dx%d", size[0], size[1]).That(backend.CodeOf(err)).Equals(backend.InvalidValue)
	}
}

func TestReadPixels(t *testing.T) {
	s := newSession(t)
	ctx := log.Testing(t)
	dst := make([]byte, 8)
	s.env.Regions.Add(ctx, 0x4000, dst, 8)
	s.play(t,
		cmd("cvClear", nil, call.Float(0), call.Float(1), call.Float(0), call.Float(1)),
		cmd("cvReadPixels", nil, call.Int(0), call.Int(0), call.Int(2), call.Int(1), call.Pointer(0x4000)),
	)
	assert.For(ctx, "pixels").ThatSlice(dst).Equals([]byte{0, 0xff, 0, 0xff, 0, 0xff, 0, 0xff})
	raw := cmd("cvReadPixels", nil, call.Int(0), call.Int(0), call.Int(1), call.Int(1), call.Pointer(0x7000))
	assert.For(ctx, "raw destination").ThatError(s.reg.Retrace(ctx, raw)).Failed()
	huge := cmd("cvReadPixels", nil, call.Int(0), call.Int(0), call.Int(1<<31), call.Int(1<<31), call.Pointer(0x4000))
	assert.For(ctx, "huge").That(backend.CodeOf(s.reg.Retrace(ctx, huge))).Equals(backend.InvalidValue)
}

func TestUnsupportedDevice(t *testing.T) {
	ctx := log.Testing(t)
	env := api.NewEnv(nil)
	skipped, err := api.Install(env, dispatch.New(), cv.API{})
	assert.For(ctx, "err").ThatError(err).Succeeded()
	assert.For(ctx, "skipped").ThatSlice(skipped).Equals([]string{"cv"})
}
