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


package backend_test

import (
	"math"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/retrace/backend"
)

func TestPixelBytes(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		w, h int64
		n    int
		ok   bool
	}{
		{2, 3, 24, true},
		{0, 5, 0, true},
		{-1, 1, 0, false},
		{1 << 31, 1 << 31, 0, false},
		{1 << 32, 1 << 32, 0, false},
		{math.MaxInt64, 2, 0, false},
	} {
		n, ok := backend.PixelBytes(test.w, test.h)
		assert.For(ctx, "%dx%d ok", test.w, test.h).ThatBoolean(ok).Equals(test.ok)
		assert.For(ctx, "%dx%d bytes", test.w, test.h).ThatInteger(n).Equals(test.n)
	}
}
