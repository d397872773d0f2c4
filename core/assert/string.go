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
	"strings"
)

// OnString holds a string under test.
type OnString struct {
	Assertion
	value string
}

// ThatString starts a check on a string. Byte slices are converted directly,
// other values with fmt.Sprint.
func (a Assertion) ThatString(value interface{}) OnString {
	switch v := value.(type) {
	case string:
		return OnString{Assertion: a, value: v}
	case []byte:
		return OnString{Assertion: a, value: string(v)}
	}
	return OnString{Assertion: a, value: fmt.Sprint(value)}
}

// Equals checks the string equals expect, reporting where they diverge.
func (o OnString) Equals(expect string) bool {
	if o.value == expect {
		return true
	}
	o.Compare(o.value, "==", expect)
	i := 0
	for i < len(o.value) && i < len(expect) && o.value[i] == expect[i] {
		i++
	}
	switch {
	case i == len(expect):
		o.note("Longer by", pretty(o.value[i:]))
	case i == len(o.value):
		o.note("Shorter by", pretty(expect[i:]))
	default:
		o.note(fmt.Sprintf("Differs at %d", i), pretty(o.value[i:]))
	}
	return o.Test(false)
}

// NotEquals checks the string differs from test.
func (o OnString) NotEquals(test string) bool {
	return o.Compare(o.value, "!=", test).Test(o.value != test)
}

// Contains checks the string contains substr.
func (o OnString) Contains(substr string) bool {
	return o.Compare(o.value, "contains", substr).Test(strings.Contains(o.value, substr))
}

// DoesNotContain checks the string does not contain substr.
func (o OnString) DoesNotContain(substr string) bool {
	return o.Compare(o.value, "does not contain", substr).Test(!strings.Contains(o.value, substr))
}

// HasPrefix checks the string starts with prefix.
func (o OnString) HasPrefix(prefix string) bool {
	return o.Compare(o.value, "starts with", prefix).Test(strings.HasPrefix(o.value, prefix))
}

// HasSuffix checks the string ends with suffix.
func (o OnString) HasSuffix(suffix string) bool {
	return o.Compare(o.value, "ends with", suffix).Test(strings.HasSuffix(o.value, suffix))
}
