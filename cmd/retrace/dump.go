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
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/trace"
)

type dumpVerb struct{ DumpFlags }

func init() {
	verb := &dumpVerb{}
	app.AddVerb(&app.Verb{
		Name:       "dump",
		ShortHelp:  "Prints the calls of a trace file",
		ShortUsage: "<trace>",
		Action:     verb,
	})
}

func (verb *dumpVerb) Run(ctx context.Context, flags flag.FlagSet) error {
	if flags.NArg() != 1 {
		app.Usage(ctx, "Exactly one trace file expected, got %d", flags.NArg())
		return nil
	}
	file, err := trace.Open(flags.Arg(0))
	if err != nil {
		return log.Errf(ctx, err, "Opening %v", flags.Arg(0))
	}
	defer file.Close()
	return dump(ctx, os.Stdout, file, verb.Flags)
}

func dump(ctx context.Context, out io.Writer, src trace.Source, withFlags bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return app.ErrCancelled
		}
		c, err := src.ParseCall()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return log.Err(ctx, err, "Reading call stream")
		}
		if withFlags && c.Flags != 0 {
			fmt.Fprintf(out, "%v [%v]\n", c, c.Flags)
		} else {
			fmt.Fprintln(out, c)
		}
	}
}
