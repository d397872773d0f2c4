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

// Package hws replays the headless window system calls that create
// drawables and present frames.
package hws

import (
	"context"

	"github.com/google/gfxretrace/retrace/api"
	"github.com/google/gfxretrace/retrace/backend"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/google/gfxretrace/retrace/handle"
	"github.com/pkg/errors"
)

// Drawables is the handle kind of window system drawables.
const Drawables = "drawable"

// WindowSystem is the device interface the api is replayed against.
type WindowSystem interface {
	backend.Device
	CreateDrawable(width, height int) (uint64, error)
	MakeCurrent(id uint64) error
	SwapBuffers(id uint64) error
	DestroyDrawable(id uint64) error
	Present() error
}

// API is the headless window system api. It is installed after the canvas
// api and replaces its generic cvPresent with one that swaps the current
// drawable.
type API struct{}

func init() { api.Register(API{}) }

// Name implements api.API.
func (API) Name() string { return "hws" }

// Index implements api.API.
func (API) Index() uint8 { return 20 }

// Callbacks implements api.API.
func (API) Callbacks(env *api.Env) (dispatch.Table, error) {
	ws, ok := env.Device.(WindowSystem)
	if !ok {
		return nil, errors.Wrapf(api.ErrUnsupportedDevice, "hws on %T", env.Device)
	}
	h := &handlers{ws: ws, drawables: env.Handles.Kind(Drawables)}
	return dispatch.Table{
		{Name: "hwsCreateDrawable", Callback: h.createDrawable},
		{Name: "hwsMakeCurrent", Callback: h.makeCurrent},
		{Name: "hwsSwapBuffers", Callback: h.swapBuffers},
		{Name: "hwsDestroyDrawable", Callback: h.destroyDrawable},
		{Name: "cvPresent", Callback: h.present},
	}, nil
}

type handlers struct {
	ws        WindowSystem
	drawables *handle.Map[uint64]
}

func (h *handlers) createDrawable(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	w, ht := d.Int(0), d.Int(1)
	if err := d.Err(); err != nil {
		return err
	}
	id, err := h.ws.CreateDrawable(int(w), int(ht))
	if err != nil {
		return err
	}
	if captured, err := call.ToUint(c.Ret); err == nil && c.Ret != nil {
		h.drawables.Set(captured, id)
	}
	return nil
}

func (h *handlers) makeCurrent(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	drawable := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	return h.ws.MakeCurrent(h.drawables.Get(drawable))
}

func (h *handlers) swapBuffers(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	drawable := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	return h.ws.SwapBuffers(h.drawables.Get(drawable))
}

func (h *handlers) destroyDrawable(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	drawable := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	id, _ := h.drawables.Lookup(drawable)
	h.drawables.Delete(drawable)
	return h.ws.DestroyDrawable(id)
}

func (h *handlers) present(ctx context.Context, c *call.Call) error {
	return h.ws.Present()
}
