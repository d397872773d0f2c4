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

package call

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/gfxretrace/core/fault"
)

// Value is an argument or return value of a recorded call.
// It is one of Null, Bool, Int, Uint, Float, String, Pointer, *Blob, Array or
// *Struct.
type Value interface {
	fmt.Stringer
	isValue()
}

type (
	// Null is the null pointer or absent value.
	Null struct{}
	// Bool is a boolean value.
	Bool bool
	// Int is a signed integer value, including enums.
	Int int64
	// Uint is an unsigned integer value, including handles.
	Uint uint64
	// Float is a floating point value.
	Float float64
	// String is a NUL free string value.
	String string
	// Pointer is an address in the captured process.
	Pointer uint64
	// Array is an ordered list of values.
	Array []Value
)

// Blob is a block of memory captured with the call.
type Blob struct {
	// Address is the address of the memory in the captured process, or 0 when
	// the producer did not record one.
	Address uint64
	// Data is the captured bytes.
	Data []byte
	// Bound is set once the bytes have been registered as a region, so later
	// calls can refer to them by Address.
	Bound bool
}

// Member is a named field of a Struct.
type Member struct {
	Name  string
	Value Value
}

// Struct is a composite value with named members.
type Struct struct {
	Name    string
	Members []Member
}

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Uint) isValue()    {}
func (Float) isValue()   {}
func (String) isValue()  {}
func (Pointer) isValue() {}
func (*Blob) isValue()   {}
func (Array) isValue()   {}
func (*Struct) isValue() {}

func (Null) String() string      { return "NULL" }
func (v Bool) String() string    { return strconv.FormatBool(bool(v)) }
func (v Int) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Uint) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v Float) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string  { return strconv.Quote(string(v)) }
func (v Pointer) String() string { return fmt.Sprintf("%#x", uint64(v)) }

func (v *Blob) String() string {
	if v.Address != 0 {
		return fmt.Sprintf("blob(%d)@%#x", len(v.Data), v.Address)
	}
	return fmt.Sprintf("blob(%d)", len(v.Data))
}

func (v Array) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = str(e)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *Struct) String() string {
	parts := make([]string, len(v.Members))
	for i, m := range v.Members {
		parts[i] = m.Name + " = " + str(m.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Field returns the value of the member called name, or Null.
func (v *Struct) Field(name string) Value {
	for _, m := range v.Members {
		if m.Name == name {
			return m.Value
		}
	}
	return Null{}
}

func str(v Value) string {
	if v == nil {
		return "NULL"
	}
	return v.String()
}

// ErrNotNumeric is returned when a numeric conversion is applied to a value
// that has no numeric meaning.
const ErrNotNumeric = fault.Const("Value is not numeric")

// ErrOutOfRange is returned when a numeric conversion would lose the sign or
// the integer part of the value.
const ErrOutOfRange = fault.Const("Value out of range")

// ToUint returns v as an unsigned integer.
// Null converts to 0, and pointers to their address.
func ToUint(v Value) (uint64, error) {
	switch v := v.(type) {
	case nil, Null:
		return 0, nil
	case Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case Int:
		if v < 0 {
			return 0, ErrOutOfRange
		}
		return uint64(v), nil
	case Uint:
		return uint64(v), nil
	case Pointer:
		return uint64(v), nil
	case Float:
		if v < 0 || v >= 1<<64 || v != Float(math.Trunc(float64(v))) {
			return 0, ErrOutOfRange
		}
		return uint64(v), nil
	case *Blob:
		return v.Address, nil
	}
	return 0, ErrNotNumeric
}

// ToInt returns v as a signed integer.
func ToInt(v Value) (int64, error) {
	switch v := v.(type) {
	case Int:
		return int64(v), nil
	case Float:
		if v < math.MinInt64 || v >= 1<<63 || v != Float(math.Trunc(float64(v))) {
			return 0, ErrOutOfRange
		}
		return int64(v), nil
	}
	u, err := ToUint(v)
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt64 {
		return 0, ErrOutOfRange
	}
	return int64(u), nil
}

// ToFloat returns v as a floating point number.
func ToFloat(v Value) (float64, error) {
	switch v := v.(type) {
	case Float:
		return float64(v), nil
	case Int:
		return float64(v), nil
	}
	u, err := ToUint(v)
	return float64(u), err
}

// ToBool returns v as a boolean, where any non zero number is true.
func ToBool(v Value) (bool, error) {
	if b, ok := v.(Bool); ok {
		return bool(b), nil
	}
	f, err := ToFloat(v)
	return f != 0, err
}
