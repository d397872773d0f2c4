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

// Package api holds the registry of replayable APIs and the environment their
// call handlers run in.
package api

import (
	"fmt"
	"sort"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/retrace/backend"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/google/gfxretrace/retrace/handle"
	"github.com/google/gfxretrace/retrace/memory"
	"github.com/pkg/errors"
)

// ErrUnsupportedDevice is returned when an API needs a device interface the
// session's device does not implement.
const ErrUnsupportedDevice = fault.Const("Device does not support the API")

// Env is the replay state shared by every call handler of a session.
type Env struct {
	Regions *memory.Regions
	Handles *handle.Set
	Device  backend.Device
}

// NewEnv returns an environment with empty translation tables for dev.
func NewEnv(dev backend.Device) *Env {
	return &Env{Regions: memory.NewRegions(), Handles: handle.NewSet(), Device: dev}
}

// API is a family of calls that can be replayed.
type API interface {
	// Name returns the name of the api.
	Name() string
	// Index orders the api tables. Tables with a higher index are added later
	// and so override entries of the same name.
	Index() uint8
	// Callbacks returns the table of handlers bound to env.
	Callbacks(env *Env) (dispatch.Table, error)
}

var apis = map[string]API{}
var indices = map[uint8]string{}

// Register adds an api to the understood set.
// It is illegal to register the same name or index twice.
func Register(api API) {
	name := api.Name()
	if _, present := apis[name]; present {
		panic(fmt.Errorf("API %s registered more than once", name))
	}
	if other, present := indices[api.Index()]; present {
		panic(fmt.Errorf("API %s used the index %d of %s", name, api.Index(), other))
	}
	apis[name] = api
	indices[api.Index()] = name
}

// Find returns the registered api with the given name, or nil.
func Find(name string) API { return apis[name] }

// All returns every registered api in index order.
func All() []API {
	out := make([]API, 0, len(apis))
	for _, a := range apis {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// Install adds the callbacks of each api to r, in index order.
// An api whose device interface is missing is skipped and reported in the
// returned list, any other failure is returned as an error.
func Install(env *Env, r *dispatch.Registry, list ...API) (skipped []string, err error) {
	sorted := append([]API(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index() < sorted[j].Index() })
	for _, a := range sorted {
		table, err := a.Callbacks(env)
		switch {
		case errors.Cause(err) == ErrUnsupportedDevice:
			skipped = append(skipped, a.Name())
			continue
		case err != nil:
			return skipped, errors.Wrapf(err, "Installing %s", a.Name())
		}
		r.AddCallbacks(table)
	}
	return skipped, nil
}
