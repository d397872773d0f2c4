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

// Package trace reads and writes recorded call streams.
//
// A trace file is the magic "GFXR", a varint format version and then a
// sequence of records. Each record is a varint byte length followed by an
// encoded call. Integers use the protobuf varint and zig-zag encodings.
// Files may be gzip compressed as a whole.
package trace

import (
	"io"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/retrace/call"
)

const (
	// ErrIncorrectMagic is returned when the stream does not start with the
	// trace magic.
	ErrIncorrectMagic = fault.Const("Incorrect trace magic header")
	// ErrTruncated is returned when the stream ends part way through a record.
	ErrTruncated = fault.Const("Trace truncated")
	// ErrUnknownValue is returned for a value tag this build does not know.
	ErrUnknownValue = fault.Const("Unknown value tag")

	// Version is the format version written by Writer.
	Version = 1

	magic            = "GFXR"
	initalBufferSize = 4096
	maxVarintSize    = 10
	maxDepth         = 64
	// maxRecordSize bounds the length prefix of a single record.
	maxRecordSize = 1 << 30
	// readChunkSize is the most a record buffer grows by before the bytes
	// backing it have actually arrived.
	readChunkSize = 1 << 20
)

// Source is a stream of calls in trace order.
type Source interface {
	// ParseCall returns the next call of the stream, or io.EOF once the stream
	// is exhausted.
	ParseCall() (*call.Call, error)
}

// value tags
const (
	tagNone uint64 = iota
	tagNull
	tagBool
	tagInt
	tagUint
	tagFloat
	tagString
	tagPointer
	tagBlob
	tagArray
	tagStruct
)

// Slice is an in memory Source.
type Slice struct {
	calls []*call.Call
}

// NewSlice returns a Source that returns each of calls in turn.
func NewSlice(calls ...*call.Call) *Slice { return &Slice{calls: calls} }

// ParseCall implements Source.
func (s *Slice) ParseCall() (*call.Call, error) {
	if len(s.calls) == 0 {
		return nil, io.EOF
	}
	c := s.calls[0]
	s.calls = s.calls[1:]
	return c, nil
}
