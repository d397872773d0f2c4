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
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// OnError is the result of calling ThatError on an Assertion.
// It provides assertion tests that are specific to error types.
type OnError struct {
	Assertion
	err error
}

// ThatError returns an OnError for error type assertions.
func (a Assertion) ThatError(err error) OnError {
	return OnError{Assertion: a, err: err}
}

// Succeeded asserts that the error value was nil.
func (o OnError) Succeeded() bool {
	return o.Compare(o.err, "", "success").Test(o.err == nil)
}

// Failed asserts that the error value was not nil.
func (o OnError) Failed() bool {
	return o.Compare(o.err, "", "failure").Test(o.err != nil)
}

// Equals asserts that the error value matches the expected error.
func (o OnError) Equals(expect error) bool {
	return o.Compare(o.err, "==", expect).Test(o.err == expect)
}

// HasMessage asserts that the error string matches the expected message.
func (o OnError) HasMessage(expect string) bool {
	return o.Compare(o.err, "has message", expect).Test(o.err != nil && o.err.Error() == expect)
}

// HasCause asserts that the error cause matches expected error.
func (o OnError) HasCause(expect error) bool {
	cause := pkgerrors.Cause(o.err)
	return o.Compare(o.err, "cause ==", expect).note("Cause", pretty(cause)).Test(cause == expect)
}

// Is asserts that expect is found in the chain of errors wrapped by the value.
func (o OnError) Is(expect error) bool {
	return o.Compare(o.err, "is", expect).Test(errors.Is(o.err, expect))
}

// OnPanic is the result of calling ThatPanic on an Assertion.
// It holds the value recovered from the function under test.
type OnPanic struct {
	Assertion
	panicked bool
	value    interface{}
}

// ThatPanic runs f and returns an OnPanic for assertions on whether and how it
// panicked.
func (a Assertion) ThatPanic(f func()) (o OnPanic) {
	o.Assertion = a
	defer func() {
		if r := recover(); r != nil {
			o.panicked, o.value = true, r
		}
	}()
	f()
	return o
}

// Panics asserts that the function panicked.
func (o OnPanic) Panics() bool {
	return o.Compare(o.value, "", "panic").Test(o.panicked)
}

// DoesNotPanic asserts that the function completed normally.
func (o OnPanic) DoesNotPanic() bool {
	return o.Compare(o.value, "", "no panic").Test(!o.panicked)
}

// WithError asserts that the function panicked with an error wrapping expect.
func (o OnPanic) WithError(expect error) bool {
	err, _ := o.value.(error)
	return o.Compare(fmt.Sprint(o.value), "is", expect).Test(o.panicked && errors.Is(err, expect))
}
