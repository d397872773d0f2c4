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
package log

import "context"

// TB is the part of testing.TB the test handler writes to.
type TB interface {
	Fatal(...interface{})
	Error(...interface{})
	Log(...interface{})
}

// Testing returns a background context logging to t in the Normal style.
// Fatal messages stop the test and errors fail it, so a test that expects an
// error to be logged should install its own handler instead.
func Testing(t TB) context.Context {
	return SubTest(context.Background(), t)
}

// SubTest returns ctx logging to t, for use in t.Run bodies.
func SubTest(ctx context.Context, t TB) context.Context {
	return PutHandler(ctx, TestHandler(t, Normal))
}

// TestHandler returns a Handler writing messages to t in style s.
func TestHandler(t TB, s Style) Handler {
	if t == nil {
		panic("log.TestHandler needs a test")
	}
	return NewHandler(func(m *Message) {
		text := s.Print(m)
		switch {
		case m.Severity >= Fatal:
			t.Fatal(text)
		case m.Severity >= Error:
			t.Error(text)
		default:
			t.Log(text)
		}
	}, nil)
}
