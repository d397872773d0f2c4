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
	"compress/gzip"
	"io"
	"math"
	"os"

	"github.com/golang/protobuf/proto"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/pkg/errors"
)

// Writer encodes calls to a trace stream.
// They should only be constructed by NewWriter.
type Writer struct {
	buf     *proto.Buffer
	sizebuf *proto.Buffer
	to      io.Writer
}

// NewWriter constructs and returns a new Writer that writes to the supplied
// output stream.
// This method will write the trace magic and header to the underlying stream.
func NewWriter(to io.Writer) (*Writer, error) {
	w := &Writer{
		buf:     proto.NewBuffer(make([]byte, 0, initalBufferSize)),
		sizebuf: proto.NewBuffer(make([]byte, 0, maxVarintSize)),
		to:      to,
	}
	if _, err := io.WriteString(to, magic); err != nil {
		return nil, err
	}
	w.sizebuf.EncodeVarint(Version)
	_, err := to.Write(w.sizebuf.Bytes())
	w.sizebuf.Reset()
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends c to the stream.
func (w *Writer) Write(c *call.Call) error {
	w.buf.EncodeVarint(c.No)
	w.buf.EncodeStringBytes(c.Name)
	w.buf.EncodeVarint(uint64(c.Flags))
	w.buf.EncodeVarint(uint64(len(c.Args)))
	for _, a := range c.Args {
		if a == nil {
			a = call.Null{}
		}
		if err := w.writeValue(a); err != nil {
			w.buf.Reset()
			return err
		}
	}
	if c.Ret == nil {
		w.buf.EncodeVarint(tagNone)
	} else if err := w.writeValue(c.Ret); err != nil {
		w.buf.Reset()
		return err
	}
	return w.flushChunk()
}

func (w *Writer) writeValue(v call.Value) error {
	b := w.buf
	switch v := v.(type) {
	case nil, call.Null:
		b.EncodeVarint(tagNull)
	case call.Bool:
		b.EncodeVarint(tagBool)
		if v {
			b.EncodeVarint(1)
		} else {
			b.EncodeVarint(0)
		}
	case call.Int:
		b.EncodeVarint(tagInt)
		b.EncodeZigzag64(uint64(v))
	case call.Uint:
		b.EncodeVarint(tagUint)
		b.EncodeVarint(uint64(v))
	case call.Float:
		b.EncodeVarint(tagFloat)
		b.EncodeFixed64(math.Float64bits(float64(v)))
	case call.String:
		b.EncodeVarint(tagString)
		b.EncodeStringBytes(string(v))
	case call.Pointer:
		b.EncodeVarint(tagPointer)
		b.EncodeVarint(uint64(v))
	case *call.Blob:
		b.EncodeVarint(tagBlob)
		b.EncodeVarint(v.Address)
		b.EncodeRawBytes(v.Data)
	case call.Array:
		b.EncodeVarint(tagArray)
		b.EncodeVarint(uint64(len(v)))
		for _, e := range v {
			if err := w.writeValue(e); err != nil {
				return err
			}
		}
	case *call.Struct:
		b.EncodeVarint(tagStruct)
		b.EncodeStringBytes(v.Name)
		b.EncodeVarint(uint64(len(v.Members)))
		for _, m := range v.Members {
			b.EncodeStringBytes(m.Name)
			if err := w.writeValue(m.Value); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("Cannot encode value of type %T", v)
	}
	return nil
}

func (w *Writer) flushChunk() error {
	size := len(w.buf.Bytes())
	w.sizebuf.EncodeVarint(uint64(size))
	_, err := w.to.Write(w.sizebuf.Bytes())
	w.sizebuf.Reset()
	if err != nil {
		return err
	}
	_, err = w.to.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// FileWriter is a Writer to a file on disk.
type FileWriter struct {
	*Writer
	closers []io.Closer
}

// Create creates the trace file at path, gzip compressing it if compress is
// set.
func Create(path string, compress bool) (*FileWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	out := &FileWriter{closers: []io.Closer{file}}
	var to io.Writer = file
	if compress {
		z := gzip.NewWriter(file)
		out.closers = append([]io.Closer{z}, out.closers...)
		to = z
	}
	if out.Writer, err = NewWriter(to); err != nil {
		out.Close()
		return nil, err
	}
	return out, nil
}

// Close flushes and closes the file.
func (f *FileWriter) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
