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

import (
	"context"
	"fmt"
)

// Err returns an error for cause that carries msg and the values bound to the
// logger, so that a failure reported far from its origin keeps the call it
// came from.
func (l *Logger) Err(cause error, msg string) error {
	return &contextError{cause: cause, msg: l.Message(Error, false, msg)}
}

// Errf is Err with a formatted message.
func (l *Logger) Errf(cause error, format string, args ...interface{}) error {
	return &contextError{cause: cause, msg: l.Messagef(Error, false, format, args...)}
}

// Err is From(ctx).Err(cause, msg).
func Err(ctx context.Context, cause error, msg string) error {
	return From(ctx).Err(cause, msg)
}

// Errf is From(ctx).Errf(cause, format, args...).
func Errf(ctx context.Context, cause error, format string, args ...interface{}) error {
	return From(ctx).Errf(cause, format, args...)
}

type contextError struct {
	cause error
	msg   *Message
}

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *contextError) Cause() error { return e.cause }

func (e *contextError) Unwrap() error { return e.cause }

func (e *contextError) Error() string {
	text := e.msg.Text
	if len(e.msg.Values) > 0 {
		text = fmt.Sprintf("%s %s", text, ValuesSingleLine.print(e.msg.Values))
	}
	if e.cause != nil {
		text = fmt.Sprintf("%s\n   Cause: %v", text, e.cause)
	}
	return text
}
