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

// Package fault holds the constant error types and error collectors shared by
// the replayer packages.
package fault

import "strings"

// Const is the type for constant error values.
type Const string

// Error implements error for Const returning the string value of the const.
func (e Const) Error() string { return string(e) }

// InvalidErrorType is the error returned by From when the type is not an error.
const InvalidErrorType = Const("Invalid type for error")

// From converts a recovered value to an error.
// A nil value gives a nil error, and a value that is not an error gives
// InvalidErrorType.
func From(value interface{}) error {
	switch err := value.(type) {
	case nil:
		return nil
	case error:
		return err
	default:
		return InvalidErrorType
	}
}

// List collects every error passed to it, ignoring nils.
type List []error

// Collect adds err to the list if it is not nil.
func (l *List) Collect(err error) {
	if err != nil {
		*l = append(*l, err)
	}
}

// First returns the first error collected, or nil.
func (l List) First() error {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

// Err returns nil for an empty list, the single error for a list of one, or
// the list itself.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return l
	}
}

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (l List) Unwrap() []error { return l }
