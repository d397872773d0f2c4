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

// Package backend defines the contract between the replayer and the graphics
// implementation that calls are replayed against.
package backend

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// Device is a graphics implementation the replayer drives.
type Device interface {
	// Name returns a human readable name of the device.
	Name() string
	// Flush blocks until all submitted work has completed.
	Flush(ctx context.Context) error
	// Snapshot reads back the color buffer of the current render target.
	// It returns a nil image if nothing is bound.
	Snapshot(ctx context.Context) (image.Image, error)
	// State describes every object the device holds, as a tree of maps,
	// slices and scalars.
	State(ctx context.Context) (map[string]interface{}, error)
	// Close releases the device.
	Close()
}

// Code classifies a device failure.
type Code int

const (
	// InvalidOperation means the call is not allowed in the current state.
	InvalidOperation Code = iota + 1
	// InvalidValue means an argument is out of range.
	InvalidValue
	// OutOfMemory means the device could not allocate a resource.
	OutOfMemory
	// NotSupported means the device does not implement the operation.
	NotSupported
	// DeviceRemoved means the device is gone and no further call can succeed.
	DeviceRemoved
)

var codeNames = map[Code]string{
	InvalidOperation: "invalid operation",
	InvalidValue:     "invalid value",
	OutOfMemory:      "out of memory",
	NotSupported:     "not supported",
	DeviceRemoved:    "device removed",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// IsFatal returns true for codes after which replay cannot meaningfully
// continue.
func (c Code) IsFatal() bool { return c == DeviceRemoved }

// Error is a failure reported by a device.
type Error struct {
	Op   string
	Code Code
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Code) }

// Errorf returns a new device error for the operation.
func Errorf(code Code, op string, args ...interface{}) error {
	return errors.WithStack(&Error{Op: fmt.Sprintf(op, args...), Code: code})
}

// CodeOf returns the Code of the first device error wrapped by err, or 0.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsFatal returns true if err wraps a device error with a fatal code.
func IsFatal(err error) bool { return CodeOf(err).IsFatal() }

// PixelBytes returns the size of a width by height image of tightly packed 8
// bit RGBA pixels. ok is false for negative dimensions or when the size does
// not fit in an int.
func PixelBytes(width, height int64) (n int, ok bool) {
	if width < 0 || height < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(width), uint64(height))
	if hi != 0 || lo > math.MaxInt/4 {
		return 0, false
	}
	return int(lo * 4), true
}
