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

// Package soft is a software graphics device built on the gg rasterizer.
// It implements both the canvas and window system interfaces, so a trace can
// be replayed without any GPU or display.
package soft

import (
	"context"
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/gg"
	"github.com/google/gfxretrace/retrace/backend"
)

type surfaceKind int

const (
	drawable surfaceKind = iota
	renderTarget
)

func (k surfaceKind) String() string {
	if k == drawable {
		return "drawable"
	}
	return "rendertarget"
}

type surface struct {
	kind     surfaceKind
	width    int
	height   int
	dc       *gg.Context
	front    *image.RGBA // last presented image of a drawable
	presents int
}

type picture struct {
	width, height int
	buf           *gg.ImageBuf
}

// Device renders into in-memory surfaces.
// The zero value is not usable, use New.
type Device struct {
	surfaces map[uint64]*surface
	images   map[uint64]*picture
	nextID   uint64
	current  uint64 // the current drawable
	bound    uint64 // the bound render target, 0 for the current drawable
	color    gg.RGBA
	removed  bool
	closed   bool
}

// New returns a device with no surfaces.
func New() *Device {
	return &Device{
		surfaces: map[uint64]*surface{},
		images:   map[uint64]*picture{},
		nextID:   1,
		color:    gg.RGBA2(1, 1, 1, 1),
	}
}

// Name implements backend.Device.
func (d *Device) Name() string { return "soft" }

// Remove simulates the loss of the device. Every later operation fails
// with backend.DeviceRemoved.
func (d *Device) Remove() { d.removed = true }

func (d *Device) check(op string) error {
	if d.removed || d.closed {
		return backend.Errorf(backend.DeviceRemoved, "%s", op)
	}
	return nil
}

func (d *Device) alloc() uint64 {
	id := d.nextID
	d.nextID++
	return id
}

func (d *Device) newSurface(op string, kind surfaceKind, width, height int) (uint64, error) {
	if err := d.check(op); err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, backend.Errorf(backend.InvalidValue, "%s(%d, %d)", op, width, height)
	}
	id := d.alloc()
	d.surfaces[id] = &surface{kind: kind, width: width, height: height, dc: gg.NewContext(width, height)}
	return id, nil
}

func (d *Device) surface(op string, kind surfaceKind, id uint64) (*surface, error) {
	if err := d.check(op); err != nil {
		return nil, err
	}
	s, ok := d.surfaces[id]
	if !ok || s.kind != kind {
		return nil, backend.Errorf(backend.InvalidValue, "%s: no %v %d", op, kind, id)
	}
	return s, nil
}

// target returns the surface draw calls render into.
func (d *Device) target(op string) (*surface, error) {
	if err := d.check(op); err != nil {
		return nil, err
	}
	id := d.bound
	if id == 0 {
		id = d.current
	}
	if s, ok := d.surfaces[id]; ok {
		return s, nil
	}
	return nil, backend.Errorf(backend.InvalidOperation, "%s: nothing bound", op)
}

// CreateDrawable creates a window system drawable with a back buffer of the
// given size.
func (d *Device) CreateDrawable(width, height int) (uint64, error) {
	return d.newSurface("CreateDrawable", drawable, width, height)
}

// MakeCurrent selects the drawable rendered to when no render target is bound.
// A zero id releases the current drawable.
func (d *Device) MakeCurrent(id uint64) error {
	if id == 0 {
		d.current = 0
		return d.check("MakeCurrent")
	}
	if _, err := d.surface("MakeCurrent", drawable, id); err != nil {
		return err
	}
	d.current = id
	return nil
}

// SwapBuffers presents the back buffer of the drawable.
func (d *Device) SwapBuffers(id uint64) error {
	s, err := d.surface("SwapBuffers", drawable, id)
	if err != nil {
		return err
	}
	s.front = s.dc.Image().(*image.RGBA)
	s.presents++
	return nil
}

// Present presents the current drawable.
func (d *Device) Present() error {
	if err := d.check("Present"); err != nil {
		return err
	}
	if d.current == 0 {
		return backend.Errorf(backend.InvalidOperation, "Present: no current drawable")
	}
	return d.SwapBuffers(d.current)
}

// DestroyDrawable releases the drawable.
func (d *Device) DestroyDrawable(id uint64) error {
	s, err := d.surface("DestroyDrawable", drawable, id)
	if err != nil {
		return err
	}
	s.dc.Close()
	delete(d.surfaces, id)
	if d.current == id {
		d.current = 0
	}
	return nil
}

// CreateRenderTarget creates an offscreen render target.
func (d *Device) CreateRenderTarget(width, height int) (uint64, error) {
	return d.newSurface("CreateRenderTarget", renderTarget, width, height)
}

// BindRenderTarget directs rendering to the render target. A zero id
// returns rendering to the current drawable.
func (d *Device) BindRenderTarget(id uint64) error {
	if id == 0 {
		d.bound = 0
		return d.check("BindRenderTarget")
	}
	if _, err := d.surface("BindRenderTarget", renderTarget, id); err != nil {
		return err
	}
	d.bound = id
	return nil
}

// DeleteRenderTarget releases the render target.
func (d *Device) DeleteRenderTarget(id uint64) error {
	s, err := d.surface("DeleteRenderTarget", renderTarget, id)
	if err != nil {
		return err
	}
	s.dc.Close()
	delete(d.surfaces, id)
	if d.bound == id {
		d.bound = 0
	}
	return nil
}

// Clear fills the bound surface with the color.
func (d *Device) Clear(r, g, b, a float64) error {
	s, err := d.target("Clear")
	if err != nil {
		return err
	}
	s.dc.ClearWithColor(gg.RGBA2(r, g, b, a))
	return nil
}

// SetColor sets the fill color used by FillRect.
func (d *Device) SetColor(r, g, b, a float64) error {
	if err := d.check("SetColor"); err != nil {
		return err
	}
	d.color = gg.RGBA2(r, g, b, a)
	return nil
}

// FillRect fills a rectangle of the bound surface with the fill color.
func (d *Device) FillRect(x, y, w, h float64) error {
	s, err := d.target("FillRect")
	if err != nil {
		return err
	}
	if w < 0 || h < 0 {
		return backend.Errorf(backend.InvalidValue, "FillRect(%g, %g, %g, %g)", x, y, w, h)
	}
	s.dc.SetRGBA(d.color.R, d.color.G, d.color.B, d.color.A)
	s.dc.DrawRectangle(x, y, w, h)
	if err := s.dc.Fill(); err != nil {
		return backend.Errorf(backend.InvalidOperation, "FillRect: %v", err)
	}
	return nil
}

// CreateImage creates an image from tightly packed 8 bit RGBA pixels.
func (d *Device) CreateImage(width, height int, pixels []byte) (uint64, error) {
	if err := d.check("CreateImage"); err != nil {
		return 0, err
	}
	size, ok := backend.PixelBytes(int64(width), int64(height))
	if !ok || width == 0 || height == 0 || len(pixels) < size {
		return 0, backend.Errorf(backend.InvalidValue, "CreateImage(%d, %d) with %d bytes", width, height, len(pixels))
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	id := d.alloc()
	d.images[id] = &picture{width: width, height: height, buf: gg.ImageBufFromImage(img)}
	return id, nil
}

// DrawImage draws the image onto the bound surface with its top left corner
// at x, y.
func (d *Device) DrawImage(id uint64, x, y float64) error {
	s, err := d.target("DrawImage")
	if err != nil {
		return err
	}
	p, ok := d.images[id]
	if !ok {
		return backend.Errorf(backend.InvalidValue, "DrawImage: no image %d", id)
	}
	s.dc.DrawImage(p.buf, x, y)
	return nil
}

// DeleteImage releases the image.
func (d *Device) DeleteImage(id uint64) error {
	if err := d.check("DeleteImage"); err != nil {
		return err
	}
	if _, ok := d.images[id]; !ok {
		return backend.Errorf(backend.InvalidValue, "DeleteImage: no image %d", id)
	}
	delete(d.images, id)
	return nil
}

// ReadPixels copies a rectangle of the bound surface into dst as tightly
// packed 8 bit RGBA.
func (d *Device) ReadPixels(x, y, w, h int, dst []byte) error {
	s, err := d.target("ReadPixels")
	if err != nil {
		return err
	}
	if x < 0 || y < 0 || w < 0 || h < 0 || w > s.width-x || h > s.height-y {
		return backend.Errorf(backend.InvalidValue, "ReadPixels(%d, %d, %d, %d) outside %dx%d", x, y, w, h, s.width, s.height)
	}
	if len(dst) < w*h*4 {
		return backend.Errorf(backend.InvalidValue, "ReadPixels: %d bytes for %dx%d", len(dst), w, h)
	}
	img := s.dc.Image().(*image.RGBA)
	for row := 0; row < h; row++ {
		start := img.PixOffset(x, y+row)
		copy(dst[row*w*4:(row+1)*w*4], img.Pix[start:start+w*4])
	}
	return nil
}

// Flush implements backend.Device.
func (d *Device) Flush(ctx context.Context) error {
	if err := d.check("Flush"); err != nil {
		return err
	}
	for _, id := range d.ids() {
		if err := d.surfaces[id].dc.FlushGPU(); err != nil {
			return backend.Errorf(backend.InvalidOperation, "Flush: %v", err)
		}
	}
	return nil
}

// Snapshot implements backend.Device, reading back the bound surface.
func (d *Device) Snapshot(ctx context.Context) (image.Image, error) {
	s, err := d.target("Snapshot")
	if err != nil {
		if backend.IsFatal(err) {
			return nil, err
		}
		return nil, nil
	}
	if err := s.dc.FlushGPU(); err != nil {
		return nil, backend.Errorf(backend.InvalidOperation, "Snapshot: %v", err)
	}
	return s.dc.Image(), nil
}

// Presented returns the last image presented by the drawable, or nil.
func (d *Device) Presented(id uint64) image.Image {
	if s, ok := d.surfaces[id]; ok && s.front != nil {
		return s.front
	}
	return nil
}

func (d *Device) ids() []uint64 {
	out := make([]uint64, 0, len(d.surfaces))
	for id := range d.surfaces {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// State implements backend.Device.
func (d *Device) State(ctx context.Context) (map[string]interface{}, error) {
	drawables, targets := []interface{}{}, []interface{}{}
	for _, id := range d.ids() {
		s := d.surfaces[id]
		desc := map[string]interface{}{"id": id, "width": s.width, "height": s.height}
		switch s.kind {
		case drawable:
			desc["presents"] = s.presents
			drawables = append(drawables, desc)
		case renderTarget:
			targets = append(targets, desc)
		}
	}
	imageIDs := make([]uint64, 0, len(d.images))
	for id := range d.images {
		imageIDs = append(imageIDs, id)
	}
	slices.Sort(imageIDs)
	images := []interface{}{}
	for _, id := range imageIDs {
		p := d.images[id]
		images = append(images, map[string]interface{}{"id": id, "width": p.width, "height": p.height})
	}
	return map[string]interface{}{
		"device":        d.Name(),
		"removed":       d.removed,
		"current":       d.current,
		"bound":         d.bound,
		"color":         []interface{}{d.color.R, d.color.G, d.color.B, d.color.A},
		"drawables":     drawables,
		"rendertargets": targets,
		"images":        images,
	}, nil
}

// Close implements backend.Device.
func (d *Device) Close() {
	if d.closed {
		return
	}
	for _, s := range d.surfaces {
		s.dc.Close()
	}
	d.surfaces = map[uint64]*surface{}
	d.images = map[uint64]*picture{}
	d.closed = true
}

func (d *Device) String() string {
	return fmt.Sprintf("soft(%d surfaces, %d images)", len(d.surfaces), len(d.images))
}
