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

package profile_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/google/gfxretrace/retrace/profile"
)

func TestTimings(t *testing.T) {
	ctx := log.Testing(t)
	p, err := profile.New(ctx, profile.Options{})
	assert.For(ctx, "new").ThatError(err).Succeeded()
	defer p.Shutdown(ctx)

	fctx, endFrame := p.Frame(ctx, 0)
	for i, name := range []string{"cvClear", "cvFillRect", "cvFillRect", "hwsSwapBuffers"} {
		_, end := p.Call(fctx, &call.Call{No: uint64(i), Name: name})
		end()
	}
	endFrame()

	counts := map[string]int{}
	for _, timing := range p.Timings() {
		counts[timing.Name] = timing.Calls
		assert.For(ctx, "%s total", timing.Name).That(timing.Total >= 0).Equals(true)
	}
	assert.For(ctx, "counts").That(counts).DeepEquals(map[string]int{
		"cvClear": 1, "cvFillRect": 2, "hwsSwapBuffers": 1,
	})

	buf := &bytes.Buffer{}
	p.Report(buf)
	assert.For(ctx, "report").ThatString(buf.String()).Contains("cvFillRect")
	assert.For(ctx, "no frames").ThatString(buf.String()).DoesNotContain("frame")
}

func TestNilProfiler(t *testing.T) {
	ctx := log.Testing(t)
	var p *profile.Profiler
	assert.For(ctx, "nil").ThatPanic(func() {
		c, end := p.Call(context.Background(), &call.Call{Name: "x"})
		end()
		_, end = p.Frame(c, 1)
		end()
		p.Report(&bytes.Buffer{})
	}).DoesNotPanic()
	assert.For(ctx, "timings").ThatSlice(p.Timings()).IsEmpty()
	assert.For(ctx, "shutdown").ThatError(p.Shutdown(ctx)).Succeeded()
}

func TestMean(t *testing.T) {
	ctx := log.Testing(t)
	assert.For(ctx, "zero").That(profile.Timing{}.Mean()).Equals(profile.Timing{}.Total)
	assert.For(ctx, "mean").ThatInteger(int(profile.Timing{Calls: 4, Total: 100}.Mean())).Equals(25)
}
