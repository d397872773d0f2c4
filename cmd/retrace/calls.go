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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/gfxretrace/core/app"
	"github.com/google/gfxretrace/retrace/api"
	"github.com/google/gfxretrace/retrace/backend/soft"
	"github.com/google/gfxretrace/retrace/dispatch"
)

type callsVerb struct{}

func init() {
	app.AddVerb(&app.Verb{
		Name:      "calls",
		ShortHelp: "Lists the calls the software device can replay",
		Action:    &callsVerb{},
	})
}

func (verb *callsVerb) Run(ctx context.Context, flags flag.FlagSet) error {
	return listCalls(os.Stdout)
}

func listCalls(out io.Writer) error {
	dev := soft.New()
	defer dev.Close()
	registry := dispatch.New()
	if _, err := api.Install(api.NewEnv(dev), registry, api.All()...); err != nil {
		return err
	}
	for _, name := range registry.Names() {
		fmt.Fprintln(out, name)
	}
	return nil
}
