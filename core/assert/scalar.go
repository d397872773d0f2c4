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

import "fmt"

// OnBoolean is the result of calling ThatBoolean on an Assertion.
// It provides boolean assertion tests.
type OnBoolean struct {
	Assertion
	value bool
}

// ThatBoolean returns an OnBoolean for boolean based assertions.
func (a Assertion) ThatBoolean(value bool) OnBoolean {
	return OnBoolean{Assertion: a, value: value}
}

// Equals asserts that the supplied boolean is equal to the expected boolean.
func (o OnBoolean) Equals(expect bool) bool {
	return o.Compare(o.value, "==", expect).Test(o.value == expect)
}

// IsTrue asserts that the supplied boolean is true
func (o OnBoolean) IsTrue() bool { return o.Equals(true) }

// IsFalse asserts that the supplied boolean is false
func (o OnBoolean) IsFalse() bool { return o.Equals(false) }

// OnInteger is the result of calling ThatInteger on an Assertion.
// It provides numeric assertion tests.
type OnInteger struct {
	Assertion
	value int
}

// ThatInteger returns an OnInteger for integer based assertions.
func (a Assertion) ThatInteger(value int) OnInteger {
	return OnInteger{Assertion: a, value: value}
}

// Equals asserts that the supplied integer is equal to the expected integer.
func (o OnInteger) Equals(expect int) bool {
	return o.Compare(o.value, "==", expect).Test(o.value == expect)
}

// NotEquals asserts that the supplied integer is not equal to the test integer.
func (o OnInteger) NotEquals(test int) bool {
	return o.Compare(o.value, "!=", test).Test(o.value != test)
}

// IsAtLeast asserts that the integer is at least the supplied minimum.
func (o OnInteger) IsAtLeast(min int) bool {
	return o.Compare(o.value, ">=", min).Test(o.value >= min)
}

// IsAtMost asserts that the integer is at most the supplied maximum.
func (o OnInteger) IsAtMost(max int) bool {
	return o.Compare(o.value, "<=", max).Test(o.value <= max)
}

// OnFloat is the result of calling ThatFloat on an Assertion.
// It provides numeric assertion tests.
type OnFloat struct {
	Assertion
	value float64
}

// ThatFloat returns an OnFloat for floating point based assertions.
func (a Assertion) ThatFloat(value float64) OnFloat {
	return OnFloat{Assertion: a, value: value}
}

// IsAtLeast asserts that the float is at least the supplied minimum.
func (o OnFloat) IsAtLeast(min float64) bool {
	return o.Compare(o.value, ">=", min).Test(o.value >= min)
}

// IsAtMost asserts that the float is at most the supplied maximum.
func (o OnFloat) IsAtMost(max float64) bool {
	return o.Compare(o.value, "<=", max).Test(o.value <= max)
}

// Equals asserts that the float equals v within the given tolerance.
func (o OnFloat) Equals(v, tolerance float64) bool {
	min, max := v-tolerance, v+tolerance
	return o.Compare(o.value, "within", fmt.Sprintf("[%g, %g]", min, max)).Test(o.value >= min && o.value <= max)
}
