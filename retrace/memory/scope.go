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

package memory

import "github.com/google/gfxretrace/core/fault"

// ErrScopeReleased is the panic cause when allocating from a released Scope.
const ErrScopeReleased = fault.Const("Allocation from a released scope")

// Scope hands out temporary buffers that live until the end of the call
// being replayed. Handlers use it for argument conversions.
type Scope struct {
	blocks    []interface{}
	released  bool
	onRelease func(blocks int)
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithReleaseHook calls f with the number of blocks freed each time the scope
// is released.
func WithReleaseHook(f func(blocks int)) ScopeOption {
	return func(s *Scope) { s.onRelease = f }
}

// NewScope returns an empty scope.
func NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Alloc returns a zeroed slice of n elements owned by s.
func Alloc[T any](s *Scope, n int) []T {
	if s.released {
		panic(ErrScopeReleased)
	}
	b := make([]T, n)
	s.blocks = append(s.blocks, b)
	return b
}

// Bytes returns a zeroed buffer of n bytes owned by s.
func (s *Scope) Bytes(n int) []byte { return Alloc[byte](s, n) }

// Len returns the number of live blocks.
func (s *Scope) Len() int { return len(s.blocks) }

// Release frees every block. Releasing twice does nothing.
func (s *Scope) Release() {
	if s.released {
		return
	}
	s.released = true
	n := len(s.blocks)
	s.blocks = nil
	if s.onRelease != nil {
		s.onRelease(n)
	}
}
