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

// Package snapshot schedules the capture and comparison of rendered images
// while a trace is replayed.
package snapshot

import (
	"context"
	"fmt"
	stdimage "image"
	"io"
	"os"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/image"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/callset"
)

// Stdout is the snapshot prefix that streams images to the standard output.
const Stdout = "-"

// ErrCompareStdout is returned when the compare prefix is Stdout, as there
// is nothing to read reference images from.
const ErrCompareStdout = fault.Const("Reference images cannot be read from the standard output")

// When says at which point relative to a call an image is captured.
type When int

const (
	// None means the call is not captured.
	None When = iota
	// BeforeCall captures the image before the call is replayed, as the call
	// would destroy it.
	BeforeCall
	// AfterCall captures the image once the call has been replayed.
	AfterCall
)

func (w When) String() string {
	switch w {
	case BeforeCall:
		return "before"
	case AfterCall:
		return "after"
	default:
		return "none"
	}
}

// Decision is the capture plan for one call.
type Decision struct {
	When    When
	Label   uint64 // The call number the image is named after.
	Save    bool   // Write the image out.
	Compare bool   // Compare the image with its reference.
}

// Snapshotter reads back the currently bound color buffer.
type Snapshotter interface {
	Snapshot(ctx context.Context) (stdimage.Image, error)
}

// Result is the outcome of one comparison.
type Result struct {
	Label           uint64
	Call            string
	Reference       string
	Precision       float64
	MeanSquareError float64
}

// Recorder stores comparison results.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Config is the configuration of a Scheduler.
type Config struct {
	// SnapshotPrefix is prepended to the names of written images. Stdout
	// streams them instead. Empty disables snapshots.
	SnapshotPrefix string
	// SnapshotCalls selects the calls to snapshot. It defaults to every frame.
	SnapshotCalls *callset.Set
	// ComparePrefix is prepended to the names of reference images. Empty
	// disables comparisons.
	ComparePrefix string
	// CompareCalls selects the calls to compare. It defaults to every frame.
	CompareCalls *callset.Set
	// Format is the file format of written images.
	Format image.Format
	// Recorder optionally stores every comparison.
	Recorder Recorder
	// Stdout receives streamed images. It defaults to os.Stdout.
	Stdout io.Writer
	// Report receives the comparison report lines. It defaults to os.Stdout,
	// or os.Stderr when images are streamed.
	Report io.Writer
}

// Stats counts what the scheduler has done.
type Stats struct {
	Snapshots int // Images written or streamed.
	Compares  int // Comparisons made.
	Missing   int // Comparisons skipped for lack of a reference.
	Failures  int // Captures, writes or comparisons that failed.
}

// Scheduler decides for each call whether and when the rendered image is
// captured, and then saves and compares it.
type Scheduler struct {
	cfg    Config
	source Snapshotter
	stats  Stats
}

// New returns a scheduler capturing images from source.
func New(cfg Config, source Snapshotter) (*Scheduler, error) {
	if cfg.ComparePrefix == Stdout {
		return nil, ErrCompareStdout
	}
	if cfg.SnapshotPrefix != "" && cfg.SnapshotCalls == nil {
		cfg.SnapshotCalls = callset.MustParse(callset.Frame)
	}
	if cfg.ComparePrefix != "" && cfg.CompareCalls == nil {
		cfg.CompareCalls = callset.MustParse(callset.Frame)
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Report == nil {
		cfg.Report = os.Stdout
		if cfg.SnapshotPrefix == Stdout {
			cfg.Report = os.Stderr
		}
	}
	return &Scheduler{cfg: cfg, source: source}, nil
}

// Enabled returns true if any call may be captured.
func (s *Scheduler) Enabled() bool {
	return s != nil && (s.cfg.SnapshotPrefix != "" || s.cfg.ComparePrefix != "")
}

// Plan returns the capture plan for c.
func (s *Scheduler) Plan(c *call.Call) Decision {
	if !s.Enabled() {
		return Decision{}
	}
	d := Decision{
		Save:    s.cfg.SnapshotPrefix != "" && s.cfg.SnapshotCalls.Contains(c),
		Compare: s.cfg.ComparePrefix != "" && s.cfg.CompareCalls.Contains(c),
	}
	switch {
	case !d.Save && !d.Compare:
		return Decision{}
	case c.Flags.IsSwapRenderTarget():
		// The call replaces the image. A present shows the frame it ends, so
		// the image is named after it; any other target change leaves behind
		// the work of the calls before it.
		d.When, d.Label = BeforeCall, c.No
		if !c.Flags.IsEndOfFrame() && c.No > 0 {
			d.Label = c.No - 1
		}
	default:
		d.When, d.Label = AfterCall, c.No
	}
	return d
}

// BeforeCall captures the image if c is planned to be captured before it is
// replayed.
func (s *Scheduler) BeforeCall(ctx context.Context, c *call.Call) {
	if d := s.Plan(c); d.When == BeforeCall {
		s.capture(ctx, c, d)
	}
}

// AfterCall captures the image if c is planned to be captured after it has
// been replayed.
func (s *Scheduler) AfterCall(ctx context.Context, c *call.Call) {
	if d := s.Plan(c); d.When == AfterCall {
		s.capture(ctx, c, d)
	}
}

// Stats returns the counts of captures so far.
func (s *Scheduler) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return s.stats
}

func (s *Scheduler) capture(ctx context.Context, c *call.Call, d Decision) {
	ctx = log.V{"call": c.No, "snapshot": d.Label}.Bind(ctx)
	img, err := s.source.Snapshot(ctx)
	switch {
	case err != nil:
		s.stats.Failures++
		log.E(ctx, "Reading back snapshot %d failed: %v", d.Label, err)
		return
	case img == nil:
		s.stats.Failures++
		log.W(ctx, "No image to snapshot at call %d", c.No)
		return
	}
	if d.Save {
		s.save(ctx, d.Label, img)
	}
	if d.Compare {
		s.compare(ctx, c, d.Label, img)
	}
}

func (s *Scheduler) save(ctx context.Context, label uint64, img stdimage.Image) {
	if s.cfg.SnapshotPrefix == Stdout {
		if err := image.WritePNM(s.cfg.Stdout, img, fmt.Sprintf("call %d", label)); err != nil {
			s.stats.Failures++
			log.E(ctx, "Streaming snapshot %d failed: %v", label, err)
			return
		}
		s.stats.Snapshots++
		return
	}
	path := fmt.Sprintf("%s%010d%s", s.cfg.SnapshotPrefix, label, s.cfg.Format.Ext())
	if err := s.cfg.Format.Save(path, img); err != nil {
		s.stats.Failures++
		log.E(ctx, "Writing snapshot %s failed: %v", path, err)
		return
	}
	s.stats.Snapshots++
	log.I(ctx, "Wrote %s", path)
}

func (s *Scheduler) compare(ctx context.Context, c *call.Call, label uint64, img stdimage.Image) {
	path := fmt.Sprintf("%s%010d%s", s.cfg.ComparePrefix, label, image.PNG.Ext())
	ref, err := image.Load(path)
	if err != nil {
		s.stats.Missing++
		log.W(ctx, "Reference image %s could not be read, skipping comparison: %v", path, err)
		return
	}
	cmp, err := image.Compare(img, ref)
	if err != nil {
		s.stats.Failures++
		log.E(ctx, "Comparing snapshot %d with %s failed: %v", label, path, err)
		return
	}
	s.stats.Compares++
	fmt.Fprintf(s.cfg.Report, "Snapshot %d average precision of %.2f bits\n", label, cmp.Precision)
	if s.cfg.Recorder == nil {
		return
	}
	r := Result{
		Label:           label,
		Call:            c.Name,
		Reference:       path,
		Precision:       cmp.Precision,
		MeanSquareError: cmp.MeanSquareError,
	}
	if err := s.cfg.Recorder.Record(ctx, r); err != nil {
		s.stats.Failures++
		log.E(ctx, "Recording comparison %d failed: %v", label, err)
	}
}
