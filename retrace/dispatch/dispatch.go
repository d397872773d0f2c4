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

// Package dispatch routes replayed calls to the handlers registered for them
// by name.
package dispatch

import (
	"context"
	"slices"

	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
)

// Callback replays a single call.
type Callback func(ctx context.Context, c *call.Call) error

// Entry binds a call name to the callback that replays it.
type Entry struct {
	Name     string
	Callback Callback
}

// Table is an ordered list of entries, usually one per API.
type Table []Entry

// Registry is the name indexed set of callbacks used by a replay session.
// It is assembled once before replay starts and only read afterwards.
type Registry struct {
	entries map[string]Callback
	unknown Callback
	seen    map[string]bool
	misses  int
}

// New returns an empty registry whose unknown call handler reports each
// unsupported call name.
func New() *Registry {
	r := &Registry{entries: map[string]Callback{}, seen: map[string]bool{}}
	r.unknown = r.ignore
	return r
}

// AddCallbacks adds every entry of t to the registry. An entry replaces any
// earlier one with the same name, which lets a platform table override a
// generic fallback registered before it.
func (r *Registry) AddCallbacks(t Table) {
	for _, e := range t {
		r.entries[e.Name] = e.Callback
	}
}

// SetUnknown replaces the handler for calls with no registered callback.
// A nil callback restores the default.
func (r *Registry) SetUnknown(cb Callback) {
	if cb == nil {
		cb = r.ignore
	}
	r.unknown = cb
}

// Lookup returns the callback registered for name.
func (r *Registry) Lookup(name string) (Callback, bool) {
	cb, ok := r.entries[name]
	return cb, ok
}

// Retrace replays c with the callback registered for its name, or with the
// unknown call handler.
func (r *Registry) Retrace(ctx context.Context, c *call.Call) error {
	if cb, ok := r.entries[c.Name]; ok {
		return cb(ctx, c)
	}
	r.misses++
	return r.unknown(ctx, c)
}

// Names returns the registered call names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Unknown returns the number of calls that had no registered callback.
func (r *Registry) Unknown() int { return r.misses }

func (r *Registry) ignore(ctx context.Context, c *call.Call) error {
	ctx = log.V{"call": c.No}.Bind(ctx)
	if !r.seen[c.Name] {
		r.seen[c.Name] = true
		log.W(ctx, "Unsupported call %s", c.Name)
	} else {
		log.D(ctx, "Ignoring %s", c.Name)
	}
	return nil
}

// Dispatch replays c with the first entry in t that matches its name, or with
// unknown if there is none. It is meant for small fixed tables where a scan
// is as cheap as a map. A nil unknown ignores the call.
func Dispatch(ctx context.Context, t Table, c *call.Call, unknown Callback) error {
	for _, e := range t {
		if e.Name == c.Name {
			return e.Callback(ctx, c)
		}
	}
	if unknown == nil {
		return nil
	}
	return unknown(ctx, c)
}
