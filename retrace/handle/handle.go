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

// Package handle maps resource identifiers recorded at capture time onto the
// identifiers the replay backend assigned when the resources were recreated.
package handle

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/gfxretrace/core/fault"
	"github.com/pkg/errors"
)

// ErrUnknownHandle is the panic cause when deleting a handle that was never
// mapped.
const ErrUnknownHandle = fault.Const("Unknown handle")

// Map is the remapping table for one kind of resource.
// A handle that has never been seen maps to itself, as some APIs let the
// application choose its own object names.
type Map[T cmp.Ordered] struct {
	kind    string
	entries map[T]T
}

// NewMap returns an empty map for the named resource kind.
func NewMap[T cmp.Ordered](kind string) *Map[T] {
	return &Map[T]{kind: kind, entries: map[T]T{}}
}

// Kind returns the resource kind name of the map.
func (m *Map[T]) Kind() string { return m.kind }

// Get returns the replay value for the recorded handle k, mapping it to
// itself first if it is unknown.
func (m *Map[T]) Get(k T) T {
	if v, ok := m.entries[k]; ok {
		return v
	}
	m.entries[k] = k
	return k
}

// Lookup returns the replay value for k without inserting it.
func (m *Map[T]) Lookup(k T) (T, bool) {
	v, ok := m.entries[k]
	return v, ok
}

// Set maps the recorded handle k to the replay value v.
func (m *Map[T]) Set(k, v T) { m.entries[k] = v }

// Delete forgets the mapping for k, so the name may be reused.
// It panics with ErrUnknownHandle if k was never mapped.
func (m *Map[T]) Delete(k T) {
	if _, ok := m.entries[k]; !ok {
		panic(errors.Wrapf(ErrUnknownHandle, "Deleting %s %v", m.kind, k))
	}
	delete(m.entries, k)
}

// Len returns the number of mapped handles.
func (m *Map[T]) Len() int { return len(m.entries) }

// Keys returns the recorded handles in ascending order.
func (m *Map[T]) Keys() []T {
	out := make([]T, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (m *Map[T]) String() string {
	return fmt.Sprintf("%s[%d]", m.kind, len(m.entries))
}

// Set holds one Map per resource kind for a replay session.
type Set struct {
	kinds map[string]*Map[uint64]
}

// NewSet returns an empty set of maps.
func NewSet() *Set { return &Set{kinds: map[string]*Map[uint64]{}} }

// Kind returns the map for the named resource kind, creating it on first use.
func (s *Set) Kind(name string) *Map[uint64] {
	m, ok := s.kinds[name]
	if !ok {
		m = NewMap[uint64](name)
		s.kinds[name] = m
	}
	return m
}

// Kinds returns the names of the resource kinds in use, sorted.
func (s *Set) Kinds() []string {
	out := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
