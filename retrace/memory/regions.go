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

// Package memory translates addresses recorded in the captured process into
// buffers owned by the replayer, and holds the per call scoped allocator.
package memory

import (
	"context"
	"fmt"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/log"
	"github.com/google/gfxretrace/core/math/interval"
	"github.com/pkg/errors"
)

// ErrUnknownRegion is the panic cause when a region that was never added is
// deleted. The trace is corrupt or a handler is wrong, so replay cannot go on.
const ErrUnknownRegion = fault.Const("Unknown memory region")

// RawWarningThreshold is the lowest address for which an untranslated lookup
// is reported. Static data of the captured process usually lives below it.
const RawWarningThreshold = 0x00400000

// Region is a range of captured addresses backed by a replay buffer.
type Region struct {
	Base   uint64 // The captured address of the first byte.
	Size   uint64 // The number of bytes in the region.
	Buffer []byte // The replay buffer, Size bytes long.
}

// Span returns the address span covered by the region.
func (r *Region) Span() interval.U64Span {
	return interval.U64Range{First: r.Base, Count: r.Size}.Span()
}

func (r *Region) String() string { return fmt.Sprintf("%v", r.Span()) }

type regionList []*Region

func (l regionList) Length() int                        { return len(l) }
func (l regionList) GetSpan(index int) interval.U64Span { return l[index].Span() }

// Regions is the table of address translations for a replay session.
// Regions in the table never overlap. It is not safe for concurrent use.
type Regions struct {
	sorted    regionList         // non empty regions ordered by base
	empty     map[uint64]*Region // zero sized regions, which contain no addresses
	warnedRaw bool
}

// NewRegions returns an empty translation table.
func NewRegions() *Regions {
	return &Regions{empty: map[uint64]*Region{}}
}

// Add registers buffer as the replay memory for size bytes at the captured
// address. Adding at address 0 does nothing.
// Any older region that overlaps the new one, or starts at the same address,
// is evicted with a warning.
func (r *Regions) Add(ctx context.Context, address uint64, buffer []byte, size uint64) {
	if address == 0 {
		return
	}
	if uint64(len(buffer)) < size {
		log.W(ctx, "Region at %#x is %d bytes but only %d are backed", address, size, len(buffer))
		size = uint64(len(buffer))
	}
	reg := &Region{Base: address, Size: size, Buffer: buffer[:size]}

	if old, ok := r.empty[address]; ok {
		log.W(ctx, "Region %v replaced by %v", old, reg)
		delete(r.empty, address)
	}
	first, count := interval.Intersect(r.sorted, reg.Span())
	if count == 0 && first < len(r.sorted) && r.sorted[first].Base == address {
		count = 1
	}
	for _, old := range r.sorted[first : first+count] {
		log.W(ctx, "Region %v overlaps %v, evicting the older region", old, reg)
	}

	if size == 0 {
		r.sorted = append(r.sorted[:first], r.sorted[first+count:]...)
		r.empty[address] = reg
		return
	}
	switch count {
	case 0:
		r.sorted = append(r.sorted, nil)
		copy(r.sorted[first+1:], r.sorted[first:])
	default:
		r.sorted = append(r.sorted[:first+1], r.sorted[first+count:]...)
	}
	r.sorted[first] = reg
}

// Delete removes the region starting at address.
// It panics with ErrUnknownRegion if there is none.
func (r *Regions) Delete(address uint64) {
	i := interval.Search(r.sorted, func(s interval.U64Span) bool { return s.Start >= address })
	if i < len(r.sorted) && r.sorted[i].Base == address {
		r.remove(i)
		return
	}
	if _, ok := r.empty[address]; ok {
		delete(r.empty, address)
		return
	}
	panic(errors.Wrapf(ErrUnknownRegion, "Deleting address %#x", address))
}

// DeleteBuffer removes the region backed by buffer.
// It panics with ErrUnknownRegion if there is none.
func (r *Regions) DeleteBuffer(buffer []byte) {
	for i, reg := range r.sorted {
		if sameBuffer(reg.Buffer, buffer) {
			r.remove(i)
			return
		}
	}
	for base, reg := range r.empty {
		if sameBuffer(reg.Buffer, buffer) {
			delete(r.empty, base)
			return
		}
	}
	panic(errors.Wrapf(ErrUnknownRegion, "Deleting buffer of %d bytes", len(buffer)))
}

func (r *Regions) remove(i int) {
	copy(r.sorted[i:], r.sorted[i+1:])
	r.sorted[len(r.sorted)-1] = nil
	r.sorted = r.sorted[:len(r.sorted)-1]
}

func sameBuffer(a, b []byte) bool {
	if cap(a) == 0 || cap(b) == 0 {
		return false
	}
	return &a[:1][0] == &b[:1][0]
}

// Find returns the region containing address, or nil.
func (r *Regions) Find(address uint64) *Region {
	if i := interval.IndexOf(r.sorted, address); i >= 0 {
		return r.sorted[i]
	}
	return nil
}

// Lookup translates a captured address.
// An address inside a region gives a pointer into that region's buffer. Any
// other address is returned as a raw pointer, on the assumption that it
// already refers to memory the replayer can see.
func (r *Regions) Lookup(ctx context.Context, address uint64) Pointer {
	if address == 0 {
		return Pointer{}
	}
	if reg := r.Find(address); reg != nil {
		offset := address - reg.Base
		return Pointer{Address: address, buf: reg.Buffer[offset:reg.Size:reg.Size]}
	}
	if address >= RawWarningThreshold && !r.warnedRaw {
		r.warnedRaw = true
		log.W(ctx, "Address %#x is not in any region, using it as a raw pointer", address)
	}
	return Pointer{Address: address}
}

// Len returns the number of regions, including empty ones.
func (r *Regions) Len() int { return len(r.sorted) + len(r.empty) }

// All returns every non empty region in address order.
func (r *Regions) All() []*Region {
	return append([]*Region(nil), r.sorted...)
}
