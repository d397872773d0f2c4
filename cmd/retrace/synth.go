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
	"encoding/binary"
	"flag"
	"math"

	"github.com/google/gfxretrace/core/app"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/trace"
)

type synthVerb struct{ SynthFlags }

func init() {
	verb := &synthVerb{SynthFlags{Frames: 10, Size: 64}}
	app.AddVerb(&app.Verb{
		Name:       "synth",
		ShortHelp:  "Writes a small demonstration trace",
		ShortUsage: "<trace>",
		Action:     verb,
	})
}

func (verb *synthVerb) Run(ctx context.Context, flags flag.FlagSet) error {
	if flags.NArg() != 1 {
		app.Usage(ctx, "Exactly one output file expected, got %d", flags.NArg())
		return nil
	}
	if verb.Frames < 0 || verb.Size <= 0 {
		app.Usage(ctx, "Invalid trace dimensions %d frames of %dx%d", verb.Frames, verb.Size, verb.Size)
		return nil
	}
	out, err := trace.Create(flags.Arg(0), verb.Compress)
	if err != nil {
		return log.Errf(ctx, err, "Creating %v", flags.Arg(0))
	}
	n, err := synthesize(out.Writer, verb.Frames, verb.Size)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return log.Errf(ctx, err, "Writing %v", flags.Arg(0))
	}
	log.I(ctx, "Wrote %d calls in %d frames", n, verb.Frames)
	return nil
}

// Capture time addresses and handles used by the synthesized trace.
const (
	synthWindow = call.Pointer(0x7f3a00001000)
	synthRects  = 0x10000
	synthPixels = 0x20000
	synthImage  = call.Uint(0xc0de0001)
)

type synthesizer struct {
	w   *trace.Writer
	no  uint64
	err error
}

func (s *synthesizer) emit(name string, flags call.Flags, ret call.Value, args ...call.Value) {
	if s.err != nil {
		return
	}
	s.err = s.w.Write(&call.Call{No: s.no, Name: name, Flags: flags, Ret: ret, Args: args})
	s.no++
}

func packFloats(values ...float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// synthesize writes frames frames of a size by size animation to w, using
// every supported API table. It returns the number of calls written.
func synthesize(w *trace.Writer, frames, size int) (uint64, error) {
	s := &synthesizer{w: w}
	fs := float32(size)
	s.emit("hwsCreateDrawable", 0, synthWindow, call.Int(size), call.Int(size))
	s.emit("hwsMakeCurrent", 0, nil, synthWindow)
	s.emit("AllocBuffer", 0, call.Pointer(synthRects), call.Uint(32))
	s.emit("WriteBuffer", 0, nil, call.Pointer(synthRects), &call.Blob{Data: packFloats(
		0, 0, fs/4, fs/4,
		fs*3/4, fs*3/4, fs/4, fs/4,
	)})
	s.emit("cvCreateImage", 0, synthImage, call.Int(2), call.Int(2), &call.Blob{
		Address: synthPixels,
		Data: []byte{
			0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0xff,
			0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0xff,
		},
	})
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(max(frames, 1))
		x := call.Float(math.Floor(t * float64(size/2)))
		s.emit("glPushDebugGroup", call.Marker, nil, call.String("frame"))
		s.emit("cvClear", 0, nil, call.Float(t), call.Float(0), call.Float(1-t), call.Float(1))
		s.emit("cvSetColor", 0, nil, call.Float(1), call.Float(1), call.Float(0), call.Float(1))
		s.emit("cvFillRect", call.Render, nil, x, x, call.Float(size/4), call.Float(size/4))
		s.emit("cvSetColor", 0, nil, call.Float(0), call.Float(1), call.Float(0), call.Float(1))
		s.emit("cvFillRects", call.Render, nil, call.Uint(2), call.Pointer(synthRects))
		s.emit("cvDrawImage", call.Render, nil, synthImage, call.Float(size/2), call.Float(0))
		s.emit("glPopDebugGroup", call.Marker, nil)
		s.emit("hwsSwapBuffers", call.EndOfFrame|call.SwapRenderTarget, nil, synthWindow)
	}
	s.emit("cvDeleteImage", 0, nil, synthImage)
	s.emit("FreeBuffer", 0, nil, call.Pointer(synthRects))
	s.emit("hwsDestroyDrawable", 0, nil, synthWindow)
	return s.no, s.err
}
