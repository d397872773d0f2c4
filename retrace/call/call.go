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

// Package call holds the in memory form of a recorded graphics API call.
package call

import (
	"fmt"
	"strings"

	"github.com/google/gfxretrace/core/fault"
)

// Call is one recorded invocation of a graphics API function.
// A Call is immutable once parsed.
type Call struct {
	No    uint64  // Ordinal of the call in the trace.
	Name  string  // Name of the function called.
	Args  []Value // Arguments in declaration order.
	Ret   Value   // Return value, or nil if the function returns nothing.
	Flags Flags   // Producer set characteristics of the call.
}

// Arg returns the i'th argument, or Null if the call has fewer arguments.
func (c *Call) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return Null{}
	}
	if c.Args[i] == nil {
		return Null{}
	}
	return c.Args[i]
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = str(a)
	}
	s := fmt.Sprintf("%d %s(%s)", c.No, c.Name, strings.Join(args, ", "))
	if c.Ret != nil {
		s += " = " + c.Ret.String()
	}
	return s
}

// Decoder reads typed arguments from a call, remembering the first failure.
//
//	d := call.Decode(c)
//	w, h := d.Uint(0), d.Uint(1)
//	if err := d.Err(); err != nil {
//		return err
//	}
type Decoder struct {
	c   *Call
	err error
}

// Decode returns a Decoder for the arguments of c.
func Decode(c *Call) *Decoder { return &Decoder{c: c} }

func (d *Decoder) fail(i int, err error) {
	if d.err == nil {
		d.err = &ArgError{Call: d.c.Name, Index: i, Value: d.c.Arg(i), Err: err}
	}
}

// Value returns argument i.
func (d *Decoder) Value(i int) Value { return d.c.Arg(i) }

// Uint returns argument i as an unsigned integer.
func (d *Decoder) Uint(i int) uint64 {
	v, err := ToUint(d.c.Arg(i))
	if err != nil {
		d.fail(i, err)
	}
	return v
}

// Int returns argument i as a signed integer.
func (d *Decoder) Int(i int) int64 {
	v, err := ToInt(d.c.Arg(i))
	if err != nil {
		d.fail(i, err)
	}
	return v
}

// Float returns argument i as a floating point number.
func (d *Decoder) Float(i int) float64 {
	v, err := ToFloat(d.c.Arg(i))
	if err != nil {
		d.fail(i, err)
	}
	return v
}

// Bool returns argument i as a boolean.
func (d *Decoder) Bool(i int) bool {
	v, err := ToBool(d.c.Arg(i))
	if err != nil {
		d.fail(i, err)
	}
	return v
}

// Blob returns argument i, which must be a blob or Null.
func (d *Decoder) Blob(i int) *Blob {
	switch v := d.c.Arg(i).(type) {
	case *Blob:
		return v
	case Null:
		return &Blob{}
	}
	d.fail(i, ErrNotBlob)
	return &Blob{}
}

// Err returns the first conversion failure, or nil.
func (d *Decoder) Err() error { return d.err }

// ErrNotBlob is returned when a blob argument holds another kind of value.
const ErrNotBlob = fault.Const("Value is not a blob")

// ArgError describes an argument that could not be converted.
type ArgError struct {
	Call  string
	Index int
	Value Value
	Err   error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("%s argument %d (%v): %v", e.Call, e.Index, e.Value, e.Err)
}

// Unwrap returns the conversion error.
func (e *ArgError) Unwrap() error { return e.Err }

// Cause returns the conversion error, for use with errors.Cause.
func (e *ArgError) Cause() error { return e.Err }
