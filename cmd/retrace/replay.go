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
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gfxretrace/core/app"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/api"
	"github.com/google/gfxretrace/retrace/backend/soft"
	"github.com/google/gfxretrace/retrace/callset"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/google/gfxretrace/retrace/profile"
	"github.com/google/gfxretrace/retrace/replay"
	"github.com/google/gfxretrace/retrace/report"
	"github.com/google/gfxretrace/retrace/snapshot"
	"github.com/google/gfxretrace/retrace/trace"
	"golang.org/x/term"
)

type replayVerb struct{ ReplayFlags }

func init() {
	verb := &replayVerb{ReplayFlags{DumpState: -1}}
	app.AddVerb(&app.Verb{
		Name:       "replay",
		ShortHelp:  "Replays a trace file against the software device",
		ShortUsage: "<trace>",
		Action:     verb,
	})
}

func (verb *replayVerb) Run(ctx context.Context, flags flag.FlagSet) error {
	if flags.NArg() != 1 {
		app.Usage(ctx, "Exactly one trace file expected, got %d", flags.NArg())
		return nil
	}
	ctx = log.PutVerbosity(ctx, verb.verbosity())
	if verb.Wait {
		defer waitForEnter(os.Stdin, os.Stderr)
	}

	path := flags.Arg(0)
	file, err := trace.Open(path)
	if err != nil {
		return log.Errf(ctx, err, "Opening %v", path)
	}
	defer file.Close()

	dev := soft.New()
	defer dev.Close()
	registry := dispatch.New()
	skipped, err := api.Install(api.NewEnv(dev), registry, api.All()...)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		log.I(ctx, "API %s is not supported by %s", name, dev.Name())
	}

	opts := replay.Options{
		Strict:      verb.Strict,
		DumpState:   verb.DumpState >= 0,
		DumpStateAt: uint64(verb.DumpState),
		CallLimit:   verb.CallLimit,
		Verbosity:   verb.verbosity(),
	}
	if verb.Snapshot.Prefix == snapshot.Stdout {
		opts.Report = os.Stderr
	}

	if !verb.Benchmark {
		cfg, closeDB, err := verb.snapshotConfig(ctx, path)
		if err != nil {
			return err
		}
		defer closeDB()
		if opts.Scheduler, err = snapshot.New(cfg, dev); err != nil {
			return log.Err(ctx, err, "Invalid snapshot configuration")
		}
	}

	if verb.Profile || verb.TraceEndpoint != "" {
		p, err := profile.New(ctx, profile.Options{Service: app.Name, Endpoint: verb.TraceEndpoint})
		if err != nil {
			return log.Err(ctx, err, "Starting the profiler")
		}
		defer p.Shutdown(context.Background())
		opts.Profiler = p
	}

	stats, err := replay.New(registry, dev, opts).Run(ctx, file)
	if err != nil {
		return err
	}
	log.I(ctx, "Replayed %d calls, %d unsupported", stats.Calls, stats.Unknown)
	if verb.Profile {
		opts.Profiler.Report(os.Stdout)
	}
	if s := opts.Scheduler.Stats(); s.Failures > 0 || s.Missing > 0 {
		log.W(ctx, "%d snapshot failures, %d missing references", s.Failures, s.Missing)
	}
	return nil
}

// snapshotConfig builds the scheduler configuration from the flags. The
// returned function closes the results database, if one was opened.
func (verb *replayVerb) snapshotConfig(ctx context.Context, path string) (snapshot.Config, func(), error) {
	cfg := snapshot.Config{
		SnapshotPrefix: verb.Snapshot.Prefix,
		ComparePrefix:  verb.Compare.Prefix,
		Format:         verb.Snapshot.Format,
	}
	var err error
	if verb.Snapshot.Calls != "" {
		if cfg.SnapshotCalls, err = callset.Parse(verb.Snapshot.Calls); err != nil {
			return cfg, nil, log.Err(ctx, err, "Invalid -snapshot")
		}
	}
	if verb.Compare.Calls != "" {
		if cfg.CompareCalls, err = callset.Parse(verb.Compare.Calls); err != nil {
			return cfg, nil, log.Err(ctx, err, "Invalid -compare")
		}
	}
	if verb.Compare.DB == "" {
		return cfg, func() {}, nil
	}
	store, err := report.Open(ctx, verb.Compare.DB)
	if err != nil {
		return cfg, nil, err
	}
	run, err := store.Begin(ctx, path, time.Now())
	if err != nil {
		store.Close()
		return cfg, nil, err
	}
	cfg.Recorder = run
	return cfg, func() {
		if sum, err := store.Summarize(ctx, run.ID); err == nil {
			log.I(ctx, "Run %d recorded %d comparisons, lowest precision %.2f bits", run.ID, sum.Comparisons, sum.MinPrecision)
		}
		store.Close()
	}, nil
}

// waitForEnter blocks until a line is read from in, when in is a terminal.
func waitForEnter(in *os.File, out io.Writer) {
	if !term.IsTerminal(int(in.Fd())) {
		return
	}
	fmt.Fprint(out, "Press Enter to exit")
	bufio.NewReader(in).ReadString('\n')
}
