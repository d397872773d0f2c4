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

// Package cv replays calls of the cv 2D canvas api.
package cv

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/retrace/api"
	"github.com/google/gfxretrace/retrace/backend"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/google/gfxretrace/retrace/handle"
	"github.com/google/gfxretrace/retrace/memory"
	"github.com/pkg/errors"
)

// Handle kinds used by the api.
const (
	RenderTargets = "rendertarget"
	Images        = "image"
)

// ErrBadRects is returned when the rectangles of cvFillRects cannot be read.
const ErrBadRects = fault.Const("Invalid rectangle list")

// Canvas is the device interface the api is replayed against.
type Canvas interface {
	backend.Device
	CreateRenderTarget(width, height int) (uint64, error)
	BindRenderTarget(id uint64) error
	DeleteRenderTarget(id uint64) error
	Clear(r, g, b, a float64) error
	SetColor(r, g, b, a float64) error
	FillRect(x, y, w, h float64) error
	CreateImage(width, height int, pixels []byte) (uint64, error)
	DrawImage(id uint64, x, y float64) error
	DeleteImage(id uint64) error
	ReadPixels(x, y, w, h int, dst []byte) error
}

// API is the cv api.
type API struct{}

func init() { api.Register(API{}) }

// Name implements api.API.
func (API) Name() string { return "cv" }

// Index implements api.API.
func (API) Index() uint8 { return 10 }

// Callbacks implements api.API.
func (API) Callbacks(env *api.Env) (dispatch.Table, error) {
	dev, ok := env.Device.(Canvas)
	if !ok {
		return nil, errors.Wrapf(api.ErrUnsupportedDevice, "cv on %T", env.Device)
	}
	h := &handlers{
		env:     env,
		dev:     dev,
		targets: env.Handles.Kind(RenderTargets),
		images:  env.Handles.Kind(Images),
	}
	return dispatch.Table{
		{Name: "cvCreateRenderTarget", Callback: h.createRenderTarget},
		{Name: "cvBindRenderTarget", Callback: h.bindRenderTarget},
		{Name: "cvDeleteRenderTarget", Callback: h.deleteRenderTarget},
		{Name: "cvClear", Callback: h.clear},
		{Name: "cvSetColor", Callback: h.setColor},
		{Name: "cvFillRect", Callback: h.fillRect},
		{Name: "cvFillRects", Callback: h.fillRects},
		{Name: "cvCreateImage", Callback: h.createImage},
		{Name: "cvDrawImage", Callback: h.drawImage},
		{Name: "cvDeleteImage", Callback: h.deleteImage},
		{Name: "cvReadPixels", Callback: h.readPixels},
		{Name: "cvFlush", Callback: h.flush},
		{Name: "cvPresent", Callback: h.flush},
	}, nil
}

type handlers struct {
	env     *api.Env
	dev     Canvas
	targets *handle.Map[uint64]
	images  *handle.Map[uint64]
}

// bind records the replay handle for the handle returned by c.
func bind(m *handle.Map[uint64], c *call.Call, id uint64) {
	if c.Ret == nil {
		return
	}
	if captured, err := call.ToUint(c.Ret); err == nil {
		m.Set(captured, id)
	}
}

// release forgets the captured handle, returning the replay one.
// Releasing a handle that was never created is a corrupt trace.
func release(m *handle.Map[uint64], captured uint64) uint64 {
	id, _ := m.Lookup(captured)
	m.Delete(captured)
	return id
}

func (h *handlers) createRenderTarget(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	w, ht := d.Int(0), d.Int(1)
	if err := d.Err(); err != nil {
		return err
	}
	id, err := h.dev.CreateRenderTarget(int(w), int(ht))
	if err != nil {
		return err
	}
	bind(h.targets, c, id)
	return nil
}

func (h *handlers) bindRenderTarget(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	rt := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.BindRenderTarget(h.targets.Get(rt))
}

func (h *handlers) deleteRenderTarget(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	rt := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.DeleteRenderTarget(release(h.targets, rt))
}

func (h *handlers) clear(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	r, g, b, a := d.Float(0), d.Float(1), d.Float(2), d.Float(3)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.Clear(r, g, b, a)
}

func (h *handlers) setColor(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	r, g, b, a := d.Float(0), d.Float(1), d.Float(2), d.Float(3)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.SetColor(r, g, b, a)
}

func (h *handlers) fillRect(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	x, y, w, ht := d.Float(0), d.Float(1), d.Float(2), d.Float(3)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.FillRect(x, y, w, ht)
}

// cvFillRects(count, rects) where rects points at count groups of four
// little endian float32 values x, y, w, h.
func (h *handlers) fillRects(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	n := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	if avail := h.availableFloats(ctx, c.Arg(1)) / 4; n > avail {
		return errors.Wrapf(ErrBadRects, "%s(%d) with room for %d", c.Name, n, avail)
	}
	count := int(n)
	scope := memory.NewScope()
	defer scope.Release()

	rects := memory.Alloc[float32](scope, count*4)
	if err := h.readFloats(ctx, c.Arg(1), rects); err != nil {
		return errors.Wrapf(err, "%s(%d)", c.Name, count)
	}
	for i := 0; i < count; i++ {
		r := rects[i*4 : i*4+4]
		if err := h.dev.FillRect(float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])); err != nil {
			return err
		}
	}
	return nil
}

// availableFloats returns how many values readFloats could read from v.
func (h *handlers) availableFloats(ctx context.Context, v call.Value) uint64 {
	if arr, ok := v.(call.Array); ok {
		return uint64(len(arr))
	}
	return uint64(len(h.env.Regions.Translate(ctx, v, true).Bytes()) / 4)
}

// readFloats fills out from v, which is either an array of numbers or a
// pointer to packed float32 values.
func (h *handlers) readFloats(ctx context.Context, v call.Value, out []float32) error {
	if arr, ok := v.(call.Array); ok {
		if len(arr) < len(out) {
			return errors.Wrapf(ErrBadRects, "%d values, need %d", len(arr), len(out))
		}
		for i := range out {
			f, err := call.ToFloat(arr[i])
			if err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
			out[i] = float32(f)
		}
		return nil
	}
	data, err := h.env.Regions.Translate(ctx, v, true).Slice(uint64(len(out) * 4))
	if err != nil {
		return errors.Wrap(ErrBadRects, err.Error())
	}
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return nil
}

// cvCreateImage(width, height, pixels) -> image, with tightly packed RGBA8
// pixels.
func (h *handlers) createImage(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	w, ht := d.Int(0), d.Int(1)
	if err := d.Err(); err != nil {
		return err
	}
	size, ok := backend.PixelBytes(w, ht)
	if !ok || w == 0 || ht == 0 {
		return backend.Errorf(backend.InvalidValue, "%s(%d, %d)", c.Name, w, ht)
	}
	pixels, err := h.env.Regions.Translate(ctx, c.Arg(2), true).Slice(uint64(size))
	if err != nil {
		return errors.Wrapf(err, "%s pixels", c.Name)
	}
	id, err := h.dev.CreateImage(int(w), int(ht), pixels)
	if err != nil {
		return err
	}
	bind(h.images, c, id)
	return nil
}

func (h *handlers) drawImage(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	img, x, y := d.Uint(0), d.Float(1), d.Float(2)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.DrawImage(h.images.Get(img), x, y)
}

func (h *handlers) deleteImage(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	img := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	return h.dev.DeleteImage(release(h.images, img))
}

// cvReadPixels(x, y, width, height, dst) writes RGBA8 pixels to dst.
func (h *handlers) readPixels(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	x, y, w, ht := d.Int(0), d.Int(1), d.Int(2), d.Int(3)
	if err := d.Err(); err != nil {
		return err
	}
	size, ok := backend.PixelBytes(w, ht)
	if !ok {
		return backend.Errorf(backend.InvalidValue, "%s(%d, %d, %d, %d)", c.Name, x, y, w, ht)
	}
	dst, err := h.env.Regions.Translate(ctx, c.Arg(4), false).Slice(uint64(size))
	if err != nil {
		return errors.Wrapf(err, "%s destination", c.Name)
	}
	return h.dev.ReadPixels(int(x), int(y), int(w), int(ht), dst)
}

func (h *handlers) flush(ctx context.Context, c *call.Call) error {
	return h.dev.Flush(ctx)
}
