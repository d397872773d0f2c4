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

package interval_test

import (
	"testing"

	"github.com/google/gfxretrace/core/assert"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/core/math/interval"
)

var spans = interval.U64SpanList{{0x10, 0x20}, {0x20, 0x28}, {0x40, 0x80}}

func TestIndexOf(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		value  uint64
		expect int
	}{
		{0x00, -1},
		{0x10, 0},
		{0x1f, 0},
		{0x20, 1},
		{0x27, 1},
		{0x28, -1},
		{0x3f, -1},
		{0x40, 2},
		{0x7f, 2},
		{0x80, -1},
		{^uint64(0), -1},
	} {
		assert.For(ctx, "IndexOf(%#x)", test.value).ThatInteger(interval.IndexOf(spans, test.value)).Equals(test.expect)
	}
	assert.For(ctx, "empty").ThatInteger(interval.IndexOf(interval.U64SpanList{}, 5)).Equals(-1)
}

func TestIntersect(t *testing.T) {
	ctx := log.Testing(t)
	for _, test := range []struct {
		name  string
		span  interval.U64Span
		first int
		count int
	}{
		{"before", interval.U64Span{0, 0x10}, 0, 0},
		{"inside first", interval.U64Span{0x12, 0x14}, 0, 1},
		{"across two", interval.U64Span{0x18, 0x22}, 0, 2},
		{"gap", interval.U64Span{0x28, 0x40}, 2, 0},
		{"everything", interval.U64Span{0, 0x100}, 0, 3},
		{"tail", interval.U64Span{0x7f, 0x90}, 2, 1},
		{"after", interval.U64Span{0x80, 0x90}, 3, 0},
		{"empty", interval.U64Span{0x12, 0x12}, 0, 0},
	} {
		first, count := interval.Intersect(spans, test.span)
		assert.For(ctx, "%s first", test.name).ThatInteger(first).Equals(test.first)
		assert.For(ctx, "%s count", test.name).ThatInteger(count).Equals(test.count)
	}
}

func TestSpans(t *testing.T) {
	ctx := log.Testing(t)
	r := interval.U64Range{First: 0x1000, Count: 64}
	s := r.Span()
	assert.For(ctx, "span").That(s).Equals(interval.U64Span{Start: 0x1000, End: 0x1040})
	assert.For(ctx, "range").That(s.Range()).Equals(r)
	assert.For(ctx, "contains").ThatBoolean(s.Contains(0x103f)).IsTrue()
	assert.For(ctx, "end").ThatBoolean(s.Contains(0x1040)).IsFalse()
	assert.For(ctx, "empty").ThatBoolean(interval.U64Span{8, 8}.Contains(8)).IsFalse()
	assert.For(ctx, "overlaps").ThatBoolean(s.Overlaps(interval.U64Span{0x1030, 0x2000})).IsTrue()
	assert.For(ctx, "adjacent").ThatBoolean(s.Overlaps(interval.U64Span{0x1040, 0x2000})).IsFalse()
	assert.For(ctx, "clamped").That(interval.U64Range{First: ^uint64(0) - 1, Count: 8}.Span().End).Equals(^uint64(0))
	assert.For(ctx, "string").ThatString(s).Equals("[0x1000-0x1040)")
}
