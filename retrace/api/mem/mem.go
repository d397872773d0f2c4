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

// Package mem replays the raw memory calls: buffers the captured process
// allocated and wrote through pointers.
package mem

import (
	"context"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/retrace/api"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/pkg/errors"
)

// ErrNoAddress is returned when an allocation has no recorded result.
const ErrNoAddress = fault.Const("Allocation has no recorded address")

// API is the raw memory api.
type API struct{}

func init() { api.Register(API{}) }

// Name implements api.API.
func (API) Name() string { return "mem" }

// Index implements api.API.
func (API) Index() uint8 { return 0 }

// Callbacks implements api.API.
func (API) Callbacks(env *api.Env) (dispatch.Table, error) {
	h := handlers{env}
	return dispatch.Table{
		{Name: "AllocBuffer", Callback: h.allocBuffer},
		{Name: "WriteBuffer", Callback: h.writeBuffer},
		{Name: "CopyBuffer", Callback: h.copyBuffer},
		{Name: "FreeBuffer", Callback: h.freeBuffer},
	}, nil
}

type handlers struct{ env *api.Env }

// AllocBuffer(size) -> address
func (h handlers) allocBuffer(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	size := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	addr, err := call.ToUint(c.Ret)
	if c.Ret == nil || err != nil || addr == 0 {
		return errors.Wrapf(ErrNoAddress, "%v", c)
	}
	h.env.Regions.Add(ctx, addr, make([]byte, size), size)
	return nil
}

// WriteBuffer(address, data)
func (h handlers) writeBuffer(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	addr, data := d.Uint(0), d.Blob(1)
	if err := d.Err(); err != nil {
		return err
	}
	dst, err := h.env.Regions.Lookup(ctx, addr).Slice(uint64(len(data.Data)))
	if err != nil {
		return errors.Wrap(err, c.Name)
	}
	copy(dst, data.Data)
	return nil
}

// CopyBuffer(dst, src, size)
func (h handlers) copyBuffer(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	dstAddr, srcAddr, size := d.Uint(0), d.Uint(1), d.Uint(2)
	if err := d.Err(); err != nil {
		return err
	}
	dst, err := h.env.Regions.Lookup(ctx, dstAddr).Slice(size)
	if err != nil {
		return errors.Wrapf(err, "%s destination", c.Name)
	}
	src, err := h.env.Regions.Lookup(ctx, srcAddr).Slice(size)
	if err != nil {
		return errors.Wrapf(err, "%s source", c.Name)
	}
	copy(dst, src)
	return nil
}

// FreeBuffer(address)
func (h handlers) freeBuffer(ctx context.Context, c *call.Call) error {
	d := call.Decode(c)
	addr := d.Uint(0)
	if err := d.Err(); err != nil {
		return err
	}
	if addr != 0 {
		h.env.Regions.Delete(addr)
	}
	return nil
}
