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
	"context"

	"github.com/google/gfxretrace/retrace/call"
)

// Translate converts a call argument into a pointer usable by the replayer.
//
// Numbers and pointers are looked up as captured addresses. Blobs point at
// their own bytes and strings at a NUL terminated copy. Arrays and structs
// translate as their first element, which is how a pointer to an aggregate
// is laid out in memory.
//
// When bind is true a blob with a recorded address is also registered as a
// region, so that later calls may refer to its bytes by address. A blob that
// fits inside an existing region is written into that region instead, and
// its data then aliases the region buffer.
func (r *Regions) Translate(ctx context.Context, v call.Value, bind bool) Pointer {
	switch v := v.(type) {
	case nil, call.Null:
		return Pointer{}
	case call.Uint:
		return r.Lookup(ctx, uint64(v))
	case call.Int:
		return r.Lookup(ctx, uint64(v))
	case call.Pointer:
		return r.Lookup(ctx, uint64(v))
	case *call.Blob:
		if bind && v.Address != 0 && !v.Bound {
			r.bind(ctx, v)
		}
		data := v.Data
		if data == nil {
			data = []byte{}
		}
		return Pointer{Address: v.Address, buf: data}
	case call.String:
		buf := make([]byte, len(v)+1)
		copy(buf, v)
		return Pointer{buf: buf}
	case call.Array:
		if len(v) == 0 {
			return Pointer{}
		}
		return r.Translate(ctx, v[0], bind)
	case *call.Struct:
		if len(v.Members) == 0 {
			return Pointer{}
		}
		return r.Translate(ctx, v.Members[0].Value, bind)
	default:
		u, err := call.ToUint(v)
		if err != nil {
			return Pointer{}
		}
		return r.Lookup(ctx, u)
	}
}

// TranslateAll translates every element of an array or struct, depth first.
// Any other value gives a single pointer.
func (r *Regions) TranslateAll(ctx context.Context, v call.Value, bind bool) []Pointer {
	switch v := v.(type) {
	case call.Array:
		out := make([]Pointer, 0, len(v))
		for _, e := range v {
			out = append(out, r.TranslateAll(ctx, e, bind)...)
		}
		return out
	case *call.Struct:
		out := make([]Pointer, 0, len(v.Members))
		for _, m := range v.Members {
			out = append(out, r.TranslateAll(ctx, m.Value, bind)...)
		}
		return out
	default:
		return []Pointer{r.Translate(ctx, v, bind)}
	}
}

func (r *Regions) bind(ctx context.Context, v *call.Blob) {
	v.Bound = true
	n := uint64(len(v.Data))
	if reg := r.Find(v.Address); reg != nil {
		offset := v.Address - reg.Base
		if n <= reg.Size-offset {
			dst := reg.Buffer[offset : offset+n : offset+n]
			copy(dst, v.Data)
			v.Data = dst
			return
		}
	}
	r.Add(ctx, v.Address, v.Data, n)
}
