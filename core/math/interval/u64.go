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

// Package interval provides half open uint64 intervals and binary searches
// over sorted, non overlapping lists of them.
package interval

import "fmt"

// U64Span is the base interval type understood by the algorithms in this package.
// It is a half open interval that includes the lower bound, but not the upper.
type U64Span struct {
	Start uint64 // the value at which the interval begins
	End   uint64 // the next value not included in the interval.
}

// U64Range is an interval specified by a beginning and size.
type U64Range struct {
	First uint64 // the first value in the interval
	Count uint64 // the count of values in the interval
}

// Range converts a U64Span to a U64Range
func (s U64Span) Range() U64Range { return U64Range{First: s.Start, Count: s.End - s.Start} }

// Span converts a U64Range to a U64Span.
// A range that would run past the end of the address space is clamped.
func (r U64Range) Span() U64Span {
	end := r.First + r.Count
	if end < r.First {
		end = ^uint64(0)
	}
	return U64Span{Start: r.First, End: end}
}

// Contains returns true if v is inside the span. An empty span contains nothing.
func (s U64Span) Contains(v uint64) bool { return s.Start <= v && v < s.End }

// Overlaps returns true if the two spans share at least one value.
func (s U64Span) Overlaps(o U64Span) bool { return s.Start < o.End && o.Start < s.End }

func (s U64Span) String() string { return fmt.Sprintf("[%#x-%#x)", s.Start, s.End) }

func (r U64Range) String() string { return fmt.Sprintf("[%#x+%d]", r.First, r.Count) }

// U64SpanList implements List for an array of U64Span intervals
type U64SpanList []U64Span

func (l U64SpanList) Length() int               { return len(l) }
func (l U64SpanList) GetSpan(index int) U64Span { return l[index] }
