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

package interval

import "sort"

// List is the interface to a sorted list of non overlapping spans.
type List interface {
	// Length returns the number of spans in the list.
	Length() int
	// GetSpan returns the span at index.
	GetSpan(index int) U64Span
}

// Predicate is used as the condition for Search.
type Predicate func(test U64Span) bool

// IndexOf returns the index of the span in l that contains value, or -1.
func IndexOf(l List, value uint64) int {
	index := sort.Search(l.Length(), func(at int) bool {
		return value < l.GetSpan(at).Start
	})
	index--
	if index >= 0 && value < l.GetSpan(index).End {
		return index
	}
	return -1
}

// Search returns the index of the first span in l for which t is true.
// t must be false for some prefix of the list and true for the rest.
// If no span matches, it will return the list length.
func Search(l List, t Predicate) int {
	i := 0
	j := l.Length()
	for i < j {
		h := i + (j-i)/2
		if !t(l.GetSpan(h)) {
			i = h + 1
		} else {
			j = h
		}
	}
	return i
}

// Intersect returns the index of the first span in l that overlaps span and
// the number of consecutive spans that do.
// If nothing overlaps, first is the index at which span would be inserted.
func Intersect(l List, span U64Span) (first, count int) {
	first = Search(l, func(test U64Span) bool { return span.Start < test.End })
	if span.Start == span.End {
		return first, 0
	}
	after := Search(l, func(test U64Span) bool { return span.End <= test.Start })
	if after < first {
		after = first
	}
	return first, after - first
}
