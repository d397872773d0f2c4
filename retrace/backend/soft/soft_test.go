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

package soft_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/backend"
	"github.com/google/gfxretrace/retrace/backend/soft"
)

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func assertColor(t *testing.T, name string, got color.NRGBA, want color.NRGBA) {
	ok := near(got.R, want.R) && near(got.G, want.G) && near(got.B, want.B) && near(got.A, want.A)
	assert.For(t, "%s", name).Compare(got, "≈", want).Test(ok)
}

func TestDrawable(t *testing.T) {
	ctx := log.Testing(t)
	d := soft.New()
	defer d.Close()

	img, err := d.Snapshot(ctx)
	assert.For(ctx, "unbound").ThatError(err).Succeeded()
	assert.For(ctx, "unbound image").That(img).IsNil()

	id, err := d.CreateDrawable(8, 8)
	assert.For(ctx, "create").ThatError(err).Succeeded()
	assert.For(ctx, "current").ThatError(d.MakeCurrent(id)).Succeeded()
	assert.For(ctx, "clear").ThatError(d.Clear(1, 0, 0, 1)).Succeeded()
	assert.For(ctx, "color").ThatError(d.SetColor(0, 0, 1, 1)).Succeeded()
	assert.For(ctx, "fill").ThatError(d.FillRect(2, 2, 4, 4)).Succeeded()

	img, err = d.Snapshot(ctx)
	assert.For(ctx, "snapshot").ThatError(err).Succeeded()
	assert.For(ctx, "bounds").That(img.Bounds()).Equals(image.Rect(0, 0, 8, 8))
	assertColor(t, "background", pixel(img, 0, 0), color.NRGBA{0xff, 0, 0, 0xff})
	assertColor(t, "rect", pixel(img, 4, 4), color.NRGBA{0, 0, 0xff, 0xff})

	assert.For(ctx, "presented before swap").That(d.Presented(id)).IsNil()
	assert.For(ctx, "present").ThatError(d.Present()).Succeeded()
	assertColor(t, "front", pixel(d.Presented(id), 4, 4), color.NRGBA{0, 0, 0xff, 0xff})

	pix := make([]byte, 2*1*4)
	assert.For(ctx, "read").ThatError(d.ReadPixels(3, 4, 2, 1, pix)).Succeeded()
	assertColor(t, "read 0", color.NRGBA{pix[0], pix[1], pix[2], pix[3]}, color.NRGBA{0, 0, 0xff, 0xff})
	err = d.ReadPixels(7, 7, 2, 2, make([]byte, 16))
	assert.For(ctx, "read outside").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
	err = d.ReadPixels(1, 0, math.MaxInt, 1, pix)
	assert.For(ctx, "read wrapping").That(backend.CodeOf(err)).Equals(backend.InvalidValue)

	assert.For(ctx, "destroy").ThatError(d.DestroyDrawable(id)).Succeeded()
	err = d.Present()
	assert.For(ctx, "present destroyed").That(backend.CodeOf(err)).Equals(backend.InvalidOperation)
}

func TestRenderTarget(t *testing.T) {
	ctx := log.Testing(t)
	d := soft.New()
	defer d.Close()

	win, _ := d.CreateDrawable(4, 4)
	d.MakeCurrent(win)
	d.Clear(0, 0, 0, 1)

	rt, err := d.CreateRenderTarget(2, 2)
	assert.For(ctx, "create").ThatError(err).Succeeded()
	assert.For(ctx, "bind").ThatError(d.BindRenderTarget(rt)).Succeeded()
	d.Clear(0, 1, 0, 1)
	img, _ := d.Snapshot(ctx)
	assert.For(ctx, "target size").That(img.Bounds()).Equals(image.Rect(0, 0, 2, 2))
	assertColor(t, "target", pixel(img, 1, 1), color.NRGBA{0, 0xff, 0, 0xff})

	d.BindRenderTarget(0)
	img, _ = d.Snapshot(ctx)
	assertColor(t, "window", pixel(img, 1, 1), color.NRGBA{0, 0, 0, 0xff})

	err = d.BindRenderTarget(win)
	assert.For(ctx, "bind drawable").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
	assert.For(ctx, "delete").ThatError(d.DeleteRenderTarget(rt)).Succeeded()
	err = d.DeleteRenderTarget(rt)
	assert.For(ctx, "delete twice").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
	_, err = d.CreateRenderTarget(0, 1)
	assert.For(ctx, "empty target").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
}

func TestImage(t *testing.T) {
	ctx := log.Testing(t)
	d := soft.New()
	defer d.Close()
	win, _ := d.CreateDrawable(8, 8)
	d.MakeCurrent(win)
	d.Clear(0, 0, 0, 1)

	pixels := make([]byte, 4*4*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+1], pixels[i+3] = 0xff, 0xff
	}
	id, err := d.CreateImage(4, 4, pixels)
	assert.For(ctx, "create").ThatError(err).Succeeded()
	assert.For(ctx, "draw").ThatError(d.DrawImage(id, 2, 2)).Succeeded()
	img, _ := d.Snapshot(ctx)
	p := pixel(img, 3, 3)
	assert.For(ctx, "green").ThatInteger(int(p.G)).IsAtLeast(0xc0)
	assert.For(ctx, "red").ThatInteger(int(p.R)).IsAtMost(0x40)
	assertColor(t, "outside", pixel(img, 7, 0), color.NRGBA{0, 0, 0, 0xff})

	_, err = d.CreateImage(4, 4, pixels[:8])
	assert.For(ctx, "short pixels").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
	_, err = d.CreateImage(1<<31, 1<<31, nil)
	assert.For(ctx, "huge").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
	assert.For(ctx, "delete").ThatError(d.DeleteImage(id)).Succeeded()
	err = d.DrawImage(id, 0, 0)
	assert.For(ctx, "deleted").That(backend.CodeOf(err)).Equals(backend.InvalidValue)
}

func TestRemove(t *testing.T) {
	ctx := log.Testing(t)
	d := soft.New()
	defer d.Close()
	win, _ := d.CreateDrawable(2, 2)
	d.MakeCurrent(win)
	d.Remove()

	err := d.FillRect(0, 0, 1, 1)
	assert.For(ctx, "fill").ThatBoolean(backend.IsFatal(err)).IsTrue()
	assert.For(ctx, "message").ThatError(err).HasMessage("FillRect: device removed")
	_, err = d.Snapshot(ctx)
	assert.For(ctx, "snapshot").ThatBoolean(backend.IsFatal(err)).IsTrue()
	assert.For(ctx, "flush").ThatBoolean(backend.IsFatal(d.Flush(ctx))).IsTrue()
}

func TestState(t *testing.T) {
	ctx := log.Testing(t)
	d := soft.New()
	defer d.Close()
	win, _ := d.CreateDrawable(4, 2)
	d.MakeCurrent(win)
	d.CreateRenderTarget(1, 1)
	d.SwapBuffers(win)

	state, err := d.State(ctx)
	assert.For(ctx, "state").ThatError(err).Succeeded()
	assert.For(ctx, "device").That(state["device"]).Equals("soft")
	assert.For(ctx, "current").That(state["current"]).Equals(win)
	drawables := state["drawables"].([]interface{})
	assert.For(ctx, "drawables").ThatSlice(drawables).IsLength(1)
	assert.For(ctx, "drawable").That(drawables[0]).DeepEquals(
		map[string]interface{}{"id": win, "width": 4, "height": 2, "presents": 1})
	assert.For(ctx, "targets").ThatSlice(state["rendertargets"]).IsLength(1)
	assert.For(ctx, "images").ThatSlice(state["images"]).IsEmpty()
}
