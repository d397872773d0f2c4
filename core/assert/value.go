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

import "reflect"

// OnValue holds a value of any type under test.
type OnValue struct {
	Assertion
	value interface{}
}

// That starts a check on value.
func (a Assertion) That(value interface{}) OnValue {
	return OnValue{Assertion: a, value: value}
}

// isNil also reports typed nils.
func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// IsNil checks the value is nil, including typed nils.
func (o OnValue) IsNil() bool {
	return o.Compare(o.value, "is", "nil").Test(isNil(o.value))
}

// IsNotNil checks the value is neither nil nor a typed nil.
func (o OnValue) IsNotNil() bool {
	return o.Compare(o.value, "is not", "nil").Test(!isNil(o.value))
}

// Equals checks the value is == to expect, which must have the same type.
func (o OnValue) Equals(expect interface{}) bool {
	return o.Compare(o.value, "==", expect).Test(o.value == expect)
}

// NotEquals checks the value is != to test.
func (o OnValue) NotEquals(test interface{}) bool {
	return o.Compare(o.value, "!=", test).Test(o.value != test)
}

// DeepEquals checks the value deeply equals expect, reporting a diff.
func (o OnValue) DeepEquals(expect interface{}) bool {
	return o.deepEqual(o.value, expect)
}

// DeepNotEquals checks the value differs deeply from test.
func (o OnValue) DeepNotEquals(test interface{}) bool {
	return o.Compare(o.value, "deep !=", test).Test(!cmpEqual(o.value, test))
}
