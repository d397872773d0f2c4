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
package assert

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// OnSlice holds a slice or array under test.
// The checks panic when the value is neither.
type OnSlice struct {
	Assertion
	slice reflect.Value
}

// ThatSlice starts a check on a slice or array.
func (a Assertion) ThatSlice(slice interface{}) OnSlice {
	return OnSlice{Assertion: a, slice: reflect.ValueOf(slice)}
}

func (o OnSlice) length() int {
	if !o.slice.IsValid() {
		return 0
	}
	return o.slice.Len()
}

// IsEmpty checks the slice has no elements.
func (o OnSlice) IsEmpty() bool {
	return o.Compare(o.length(), "length ==", 0).Test(o.length() == 0)
}

// IsNotEmpty checks the slice has elements.
func (o OnSlice) IsNotEmpty() bool {
	return o.Compare(o.length(), "length >", 0).Test(o.length() > 0)
}

// IsLength checks the slice has exactly length elements.
func (o OnSlice) IsLength(length int) bool {
	return o.Compare(o.length(), "length ==", length).Test(o.length() == length)
}

// Equals checks each element is == to the element of expected.
func (o OnSlice) Equals(expected interface{}) bool {
	return o.elements(reflect.ValueOf(expected), func(a, b interface{}) bool { return a == b })
}

// DeepEquals checks each element deeply equals the element of expected.
func (o OnSlice) DeepEquals(expected interface{}) bool {
	return o.elements(reflect.ValueOf(expected), cmpEqual)
}

// elements compares the slices element by element, reporting every mismatch.
func (o OnSlice) elements(expected reflect.Value, same func(a, b interface{}) bool) bool {
	got, want := o.length(), 0
	if expected.IsValid() {
		want = expected.Len()
	}
	ok := got == want
	if !ok {
		o.note("Length", fmt.Sprintf("%d, expected %d", got, want))
	}
	for i := 0; i < got || i < want; i++ {
		switch {
		case i >= got:
			o.note(fmt.Sprintf("-[%d]", i), pretty(expected.Index(i).Interface()))
		case i >= want:
			o.note(fmt.Sprintf("+[%d]", i), pretty(o.slice.Index(i).Interface()))
		default:
			g, e := o.slice.Index(i).Interface(), expected.Index(i).Interface()
			if !same(g, e) {
				o.note(fmt.Sprintf("*[%d]", i), pretty(g)+" ==> "+pretty(e))
				ok = false
			}
		}
	}
	return o.Test(ok)
}

func cmpEqual(a, b interface{}) bool { return cmp.Equal(a, b, deepOptions...) }
