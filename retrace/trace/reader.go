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

package trace

import (
	"bufio"
	"compress/gzip"
	"io"
	"math"
	"os"
	"slices"

	"github.com/golang/protobuf/proto"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/pkg/errors"
)

// Reader decodes calls from a trace stream.
// They should only be constructed by NewReader.
type Reader struct {
	from    *bufio.Reader
	buf     []byte
	pb      *proto.Buffer
	version uint64
	records uint64
}

// NewReader returns a Reader for the stream from, after checking the magic and
// header. A gzip compressed stream is decompressed transparently.
func NewReader(from io.Reader) (*Reader, error) {
	br := bufio.NewReader(from)
	if head, _ := br.Peek(2); len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		z, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "Opening compressed trace")
		}
		br = bufio.NewReader(z)
	}
	r := &Reader{
		from: br,
		buf:  make([]byte, 0, initalBufferSize),
		pb:   proto.NewBuffer(nil),
	}
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(br, head); err != nil || string(head) != magic {
		return nil, ErrIncorrectMagic
	}
	version, err := r.readVarint()
	if err != nil {
		return nil, errors.Wrap(ErrTruncated, "Reading header")
	}
	if version == 0 || version > Version {
		return nil, errors.Errorf("Unsupported trace version %d", version)
	}
	r.version = version
	return r, nil
}

// Version returns the format version of the stream.
func (r *Reader) Version() uint64 { return r.version }

func (r *Reader) readVarint() (uint64, error) {
	data, _ := r.from.Peek(maxVarintSize)
	if len(data) == 0 {
		return 0, io.EOF
	}
	v, n := proto.DecodeVarint(data)
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	r.from.Discard(n)
	return v, nil
}

// ParseCall implements Source.
func (r *Reader) ParseCall() (*call.Call, error) {
	size, err := r.readVarint()
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case err != nil:
		return nil, errors.Wrapf(ErrTruncated, "Record %d length", r.records)
	}
	if size > maxRecordSize {
		return nil, errors.Wrapf(ErrTruncated, "Record %d claims %d bytes", r.records, size)
	}
	if err := r.readRecord(int(size)); err != nil {
		return nil, errors.Wrapf(ErrTruncated, "Record %d needs %d bytes", r.records, size)
	}
	r.pb.SetBuf(r.buf)
	c, err := r.decodeCall()
	if err != nil {
		return nil, errors.Wrapf(err, "Decoding record %d", r.records)
	}
	r.records++
	return c, nil
}

// readRecord fills r.buf with the next size bytes of the stream. The buffer
// only grows as data arrives, so a bogus length fails at the end of the stream
// rather than up front.
func (r *Reader) readRecord(size int) error {
	if size <= cap(r.buf) {
		r.buf = r.buf[:size]
		_, err := io.ReadFull(r.from, r.buf)
		return err
	}
	r.buf = r.buf[:0]
	for len(r.buf) < size {
		n := min(size-len(r.buf), readChunkSize)
		start := len(r.buf)
		r.buf = slices.Grow(r.buf, n)[:start+n]
		if _, err := io.ReadFull(r.from, r.buf[start:]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) decodeCall() (*call.Call, error) {
	pb := r.pb
	c := &call.Call{}
	var err error
	if c.No, err = pb.DecodeVarint(); err != nil {
		return nil, err
	}
	if c.Name, err = pb.DecodeStringBytes(); err != nil {
		return nil, err
	}
	flags, err := pb.DecodeVarint()
	if err != nil {
		return nil, err
	}
	c.Flags = call.Flags(flags)
	count, err := pb.DecodeVarint()
	if err != nil {
		return nil, err
	}
	if count > uint64(len(pb.Unread())) {
		return nil, io.ErrUnexpectedEOF
	}
	c.Args = make([]call.Value, count)
	for i := range c.Args {
		if c.Args[i], err = r.decodeValue(0); err != nil {
			return nil, err
		}
	}
	if c.Ret, err = r.decodeValue(0); err != nil {
		return nil, err
	}
	return c, nil
}

// decodeValue returns nil for tagNone.
func (r *Reader) decodeValue(depth int) (call.Value, error) {
	if depth > maxDepth {
		return nil, errors.New("Values nested too deeply")
	}
	pb := r.pb
	tag, err := pb.DecodeVarint()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNone:
		return nil, nil
	case tagNull:
		return call.Null{}, nil
	case tagBool:
		v, err := pb.DecodeVarint()
		return call.Bool(v != 0), err
	case tagInt:
		v, err := pb.DecodeZigzag64()
		return call.Int(int64(v)), err
	case tagUint:
		v, err := pb.DecodeVarint()
		return call.Uint(v), err
	case tagFloat:
		v, err := pb.DecodeFixed64()
		return call.Float(math.Float64frombits(v)), err
	case tagString:
		v, err := pb.DecodeStringBytes()
		return call.String(v), err
	case tagPointer:
		v, err := pb.DecodeVarint()
		return call.Pointer(v), err
	case tagBlob:
		addr, err := pb.DecodeVarint()
		if err != nil {
			return nil, err
		}
		data, err := pb.DecodeRawBytes(true)
		return &call.Blob{Address: addr, Data: data}, err
	case tagArray:
		count, err := pb.DecodeVarint()
		if err != nil {
			return nil, err
		}
		if count > uint64(len(pb.Unread())) {
			return nil, io.ErrUnexpectedEOF
		}
		out := make(call.Array, count)
		for i := range out {
			if out[i], err = r.decodeValue(depth + 1); err != nil {
				return nil, err
			}
			if out[i] == nil {
				out[i] = call.Null{}
			}
		}
		return out, nil
	case tagStruct:
		s := &call.Struct{}
		if s.Name, err = pb.DecodeStringBytes(); err != nil {
			return nil, err
		}
		count, err := pb.DecodeVarint()
		if err != nil {
			return nil, err
		}
		if count > uint64(len(pb.Unread())) {
			return nil, io.ErrUnexpectedEOF
		}
		s.Members = make([]call.Member, count)
		for i := range s.Members {
			m := &s.Members[i]
			if m.Name, err = pb.DecodeStringBytes(); err != nil {
				return nil, err
			}
			if m.Value, err = r.decodeValue(depth + 1); err != nil {
				return nil, err
			}
			if m.Value == nil {
				m.Value = call.Null{}
			}
		}
		return s, nil
	}
	return nil, errors.Wrapf(ErrUnknownValue, "tag %d", tag)
}

// File is a Reader over a trace file on disk.
type File struct {
	*Reader
	file *os.File
}

// Open opens the trace file at path for reading.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "Opening %v", path)
	}
	return &File{Reader: r, file: file}, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.file.Close() }
