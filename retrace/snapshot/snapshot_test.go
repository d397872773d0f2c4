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

package snapshot_test

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/image"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/callset"
	"github.com/google/gfxretrace/retrace/snapshot"
)

type source struct {
	img   stdimage.Image
	err   error
	reads int
}

func (s *source) Snapshot(ctx context.Context) (stdimage.Image, error) {
	s.reads++
	return s.img, s.err
}

type recorder []snapshot.Result

func (r *recorder) Record(ctx context.Context, res snapshot.Result) error {
	*r = append(*r, res)
	return nil
}

func solid(c color.NRGBA) *stdimage.NRGBA {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPlan(t *testing.T) {
	ctx := log.Testing(t)
	all, err := snapshot.New(snapshot.Config{SnapshotPrefix: "x", SnapshotCalls: callset.MustParse("*")}, &source{})
	assert.For(ctx, "new").ThatError(err).Succeeded()
	frames, _ := snapshot.New(snapshot.Config{ComparePrefix: "y"}, &source{})
	disabled, _ := snapshot.New(snapshot.Config{SnapshotCalls: callset.MustParse("*")}, &source{})

	for _, test := range []struct {
		name   string
		s      *snapshot.Scheduler
		c      call.Call
		expect snapshot.Decision
	}{
		{"swap buffers", all, call.Call{No: 10, Flags: call.EndOfFrame | call.SwapRenderTarget},
			snapshot.Decision{When: snapshot.BeforeCall, Label: 10, Save: true}},
		{"target change", all, call.Call{No: 10, Flags: call.SwapRenderTarget},
			snapshot.Decision{When: snapshot.BeforeCall, Label: 9, Save: true}},
		{"first call target change", all, call.Call{No: 0, Flags: call.SwapRenderTarget},
			snapshot.Decision{When: snapshot.BeforeCall, Label: 0, Save: true}},
		{"draw", all, call.Call{No: 10, Flags: call.Render},
			snapshot.Decision{When: snapshot.AfterCall, Label: 10, Save: true}},
		{"end of frame", all, call.Call{No: 10, Flags: call.EndOfFrame},
			snapshot.Decision{When: snapshot.AfterCall, Label: 10, Save: true}},
		{"default frame set", frames, call.Call{No: 4, Flags: call.EndOfFrame | call.SwapRenderTarget},
			snapshot.Decision{When: snapshot.BeforeCall, Label: 4, Compare: true}},
		{"default frame set skips", frames, call.Call{No: 5, Flags: call.Render}, snapshot.Decision{}},
		{"disabled", disabled, call.Call{No: 1}, snapshot.Decision{}},
	} {
		c := test.c
		assert.For(ctx, "%s", test.name).That(test.s.Plan(&c)).Equals(test.expect)
	}
	assert.For(ctx, "enabled").ThatBoolean(all.Enabled()).IsTrue()
	assert.For(ctx, "disabled").ThatBoolean(disabled.Enabled()).IsFalse()
}

func TestSave(t *testing.T) {
	ctx := log.Testing(t)
	dir := t.TempDir()
	src := &source{img: solid(color.NRGBA{1, 2, 3, 0xff})}
	s, _ := snapshot.New(snapshot.Config{
		SnapshotPrefix: filepath.Join(dir, "snap"),
		SnapshotCalls:  callset.MustParse("*"),
		Format:         image.BMP,
	}, src)

	swap := &call.Call{No: 12, Flags: call.SwapRenderTarget}
	s.BeforeCall(ctx, swap)
	s.AfterCall(ctx, swap)
	draw := &call.Call{No: 13, Flags: call.Render}
	s.BeforeCall(ctx, draw)
	s.AfterCall(ctx, draw)

	assert.For(ctx, "reads").ThatInteger(src.reads).Equals(2)
	for _, name := range []string{"snap0000000011.bmp", "snap0000000013.bmp"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.For(ctx, "%s", name).ThatError(err).Succeeded()
	}
	assert.For(ctx, "stats").That(s.Stats()).Equals(snapshot.Stats{Snapshots: 2})
}

func TestStream(t *testing.T) {
	ctx := log.Testing(t)
	out := &bytes.Buffer{}
	s, _ := snapshot.New(snapshot.Config{SnapshotPrefix: snapshot.Stdout, Stdout: out}, &source{img: solid(color.NRGBA{1, 2, 3, 0xff})})
	s.AfterCall(ctx, &call.Call{No: 7, Flags: call.EndOfFrame})
	assert.For(ctx, "pnm").ThatString(out.String()).HasPrefix("P6\n# call 7\n2 2\n255\n\x01\x02\x03")
	assert.For(ctx, "length").ThatInteger(out.Len()).Equals(len("P6\n# call 7\n2 2\n255\n") + 2*2*3)
}

func TestCompare(t *testing.T) {
	ctx := log.Testing(t)
	dir := t.TempDir()
	img := solid(color.NRGBA{0x40, 0x80, 0xc0, 0xff})
	ref := filepath.Join(dir, "ref0000000003.png")
	assert.For(ctx, "reference").ThatError(image.PNG.Save(ref, img)).Succeeded()

	report := &bytes.Buffer{}
	rec := &recorder{}
	s, _ := snapshot.New(snapshot.Config{
		ComparePrefix: filepath.Join(dir, "ref"),
		CompareCalls:  callset.MustParse("3,4"),
		Recorder:      rec,
		Report:        report,
	}, &source{img: img})

	s.AfterCall(ctx, &call.Call{No: 3, Name: "cvFillRect"})
	s.AfterCall(ctx, &call.Call{No: 4, Name: "cvFillRect"})

	assert.For(ctx, "report").ThatString(report.String()).Equals("Snapshot 3 average precision of 8.00 bits\n")
	assert.For(ctx, "stats").That(s.Stats()).Equals(snapshot.Stats{Compares: 1, Missing: 1})
	assert.For(ctx, "recorded").ThatSlice(*rec).DeepEquals([]snapshot.Result{
		{Label: 3, Call: "cvFillRect", Reference: ref, Precision: image.MaxPrecision},
	})
}

func TestCompareStdout(t *testing.T) {
	ctx := log.Testing(t)
	_, err := snapshot.New(snapshot.Config{ComparePrefix: snapshot.Stdout}, &source{})
	assert.For(ctx, "err").ThatError(err).Equals(snapshot.ErrCompareStdout)
}

func TestFailures(t *testing.T) {
	w, buf := log.Buffer()
	ctx := log.PutHandler(context.Background(), log.Brief.Handler(w))
	const errLost = fault.Const("device lost")

	failing := &source{err: errLost}
	s, _ := snapshot.New(snapshot.Config{SnapshotPrefix: "x", SnapshotCalls: callset.MustParse("*")}, failing)
	s.AfterCall(ctx, &call.Call{No: 1})
	assert.For(t, "read failure").ThatString(buf.String()).Equals("E: Reading back snapshot 1 failed: device lost")

	buf.Reset()
	s, _ = snapshot.New(snapshot.Config{SnapshotPrefix: "x", SnapshotCalls: callset.MustParse("*")}, &source{})
	s.AfterCall(ctx, &call.Call{No: 2})
	assert.For(t, "no image").ThatString(buf.String()).Equals("W: No image to snapshot at call 2")

	buf.Reset()
	missing := filepath.Join(t.TempDir(), "missing", "snap")
	s, _ = snapshot.New(snapshot.Config{SnapshotPrefix: missing, SnapshotCalls: callset.MustParse("*")},
		&source{img: solid(color.NRGBA{A: 0xff})})
	s.AfterCall(ctx, &call.Call{No: 3})
	s.AfterCall(ctx, &call.Call{No: 4})
	assert.For(t, "write failure").ThatString(buf.String()).HasPrefix("E: Writing snapshot " + missing + "0000000003.png failed")
	assert.For(t, "replay continues").That(s.Stats()).Equals(snapshot.Stats{Failures: 2})
}
