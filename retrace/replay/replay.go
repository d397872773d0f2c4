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

// Package replay drives a call stream through the dispatch registry.
package replay

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/gfxretrace/core/app"
	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/backend"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/dispatch"
	"github.com/google/gfxretrace/retrace/profile"
	"github.com/google/gfxretrace/retrace/snapshot"
	"github.com/google/gfxretrace/retrace/trace"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Options controls a replay Session.
type Options struct {
	// Strict makes fatal backend errors stop the replay with exit code 1.
	Strict bool
	// DumpState enables dumping the backend state after call DumpStateAt,
	// followed by an exit with code 0.
	DumpState   bool
	DumpStateAt uint64
	// CallLimit stops the replay before the first call numbered above it.
	// Zero means no limit.
	CallLimit uint64
	// Verbosity is the diagnostic verbosity. Below zero the frame rate report
	// is suppressed.
	Verbosity int
	// Scheduler takes snapshots and comparisons. It may be nil.
	Scheduler *snapshot.Scheduler
	// Profiler times calls and frames. It may be nil.
	Profiler *profile.Profiler
	// Report receives the frame rate report. Defaults to os.Stdout.
	Report io.Writer
	// State receives the state dump. Defaults to os.Stderr.
	State io.Writer
	// Exit terminates the replay. The default panics with an app.ExitCode
	// which app.Run turns into the process exit code.
	Exit func(code int)
}

// Stats describes a finished replay.
type Stats struct {
	Calls   uint64
	Frames  uint64
	Unknown int
	Elapsed time.Duration
}

// FPS returns the average frames per second.
func (s Stats) FPS() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Frames) / secs
}

// Session replays a single call stream against a device.
type Session struct {
	opts     Options
	registry *dispatch.Registry
	device   backend.Device
}

// New returns a session dispatching through registry to device.
func New(registry *dispatch.Registry, device backend.Device, opts Options) *Session {
	if opts.Report == nil {
		opts.Report = os.Stdout
	}
	if opts.State == nil {
		opts.State = os.Stderr
	}
	if opts.Exit == nil {
		opts.Exit = func(code int) { panic(app.ExitCode(code)) }
	}
	return &Session{opts: opts, registry: registry, device: device}
}

// ErrExited is returned by Run when the exit hook returns instead of stopping
// the process.
const ErrExited = fault.Const("Replay exited")

// Run replays every call from src in order.
func (s *Session) Run(ctx context.Context, src trace.Source) (Stats, error) {
	stats := Stats{}
	var start time.Time
	frameCtx, endFrame := ctx, func() {}
	inFrame := false
	defer func() { endFrame() }()

	for {
		if ctx.Err() != nil {
			return s.finish(stats, start), app.ErrCancelled
		}
		c, err := src.ParseCall()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.finish(stats, start), log.Err(ctx, err, "Reading call stream")
		}
		if s.opts.CallLimit != 0 && c.No > s.opts.CallLimit {
			log.I(ctx, "Call limit %d reached", s.opts.CallLimit)
			break
		}
		if stats.Calls == 0 {
			start = time.Now()
		}
		if !inFrame {
			frameCtx, endFrame = s.opts.Profiler.Frame(ctx, stats.Frames)
			inFrame = true
		}

		err = s.call(frameCtx, c)
		stats.Calls++
		if err != nil {
			return s.finish(stats, start), err
		}
		if c.Flags.IsEndOfFrame() {
			stats.Frames++
			endFrame()
			frameCtx, endFrame, inFrame = ctx, func() {}, false
		}
	}

	stats = s.finish(stats, start)
	if err := s.device.Flush(ctx); err != nil {
		log.W(ctx, "Flush failed: %v", err)
	}
	if s.opts.Verbosity >= 0 {
		p := message.NewPrinter(language.English)
		p.Fprintf(s.opts.Report, "Rendered %d frames in %.6f secs, average of %.3f fps\n",
			stats.Frames, stats.Elapsed.Seconds(), stats.FPS())
	}
	return stats, nil
}

func (s *Session) call(ctx context.Context, c *call.Call) error {
	ctx, end := s.opts.Profiler.Call(ctx, c)
	defer end()

	s.opts.Scheduler.BeforeCall(ctx, c)
	if err := s.registry.Retrace(ctx, c); err != nil {
		if err := s.failed(ctx, c, err); err != nil {
			return err
		}
	}
	if s.opts.DumpState && c.No == s.opts.DumpStateAt {
		if err := DumpState(ctx, s.device, s.opts.State); err != nil {
			log.E(ctx, "Dumping state failed: %v", err)
			s.opts.Exit(int(app.FatalExit))
			return ErrExited
		}
		s.opts.Exit(int(app.SuccessExit))
		return ErrExited
	}
	s.opts.Scheduler.AfterCall(ctx, c)
	return nil
}

func (s *Session) failed(ctx context.Context, c *call.Call, err error) error {
	ctx = log.V{"call": c.No}.Bind(ctx)
	if s.opts.Strict && backend.IsFatal(err) {
		log.F(ctx, false, "%s failed: %v", c.Name, err)
		s.opts.Exit(int(app.FatalExit))
		return ErrExited
	}
	log.W(ctx, "%s failed: %v", c.Name, err)
	return nil
}

func (s *Session) finish(stats Stats, start time.Time) Stats {
	if !start.IsZero() {
		stats.Elapsed = time.Since(start)
	}
	stats.Unknown = s.registry.Unknown()
	return stats
}

// DumpState writes the state of dev to w as indented JSON.
func DumpState(ctx context.Context, dev backend.Device, w io.Writer) error {
	state, err := dev.State(ctx)
	if err != nil {
		return errors.Wrap(err, "Reading device state")
	}
	st, err := structpb.NewStruct(state)
	if err != nil {
		return errors.Wrap(err, "Converting device state")
	}
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return err
	}
	return nil
}
