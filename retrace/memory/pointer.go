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

import (
	"fmt"

	"github.com/google/gfxretrace/core/fault"
	"github.com/pkg/errors"
)

const (
	// ErrOutOfBounds is returned when a slice runs past the end of the memory
	// a pointer refers to.
	ErrOutOfBounds = fault.Const("Access out of bounds")
	// ErrRawPointer is returned when reading through a pointer that has no
	// replay memory behind it.
	ErrRawPointer = fault.Const("Pointer has no replay memory")
)

// Pointer is a translated captured address.
// It is either null, raw (an address with no replay memory behind it) or
// backed by the bytes of a region, blob or string.
type Pointer struct {
	Address uint64
	buf     []byte
}

// IsNull returns true for the null pointer.
func (p Pointer) IsNull() bool { return p.Address == 0 && p.buf == nil }

// IsRaw returns true if the pointer was not translated.
func (p Pointer) IsRaw() bool { return p.Address != 0 && p.buf == nil }

// Bytes returns the replay memory from the pointer to the end of its buffer.
func (p Pointer) Bytes() []byte { return p.buf }

// Slice returns the n bytes at the pointer.
func (p Pointer) Slice(n uint64) ([]byte, error) {
	if p.buf == nil {
		if n == 0 {
			return nil, nil
		}
		return nil, errors.Wrapf(ErrRawPointer, "%#x", p.Address)
	}
	if n > uint64(len(p.buf)) {
		return nil, errors.Wrapf(ErrOutOfBounds, "%d bytes at %#x, %d available", n, p.Address, len(p.buf))
	}
	return p.buf[:n:n], nil
}

// Offset returns the pointer n bytes further on. Moving past the end of the
// backing memory gives a raw pointer.
func (p Pointer) Offset(n uint64) Pointer {
	out := Pointer{Address: p.Address + n}
	if p.buf != nil && n <= uint64(len(p.buf)) {
		out.buf = p.buf[n:]
	}
	return out
}

func (p Pointer) String() string {
	switch {
	case p.IsNull():
		return "NULL"
	case p.IsRaw():
		return fmt.Sprintf("raw(%#x)", p.Address)
	default:
		return fmt.Sprintf("%#x[%d]", p.Address, len(p.buf))
	}
}
