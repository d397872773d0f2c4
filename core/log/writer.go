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
	"bytes"
	"io"
	"os"
	"strings"
)

// Writer is a function that writes out a formatted log message.
type Writer func(text string, severity Severity)

// Std returns a Writer that writes to stdout if the message severity is less
// than an error, otherwise it writes to stderr.
func Std() Writer {
	return func(text string, severity Severity) {
		out := os.Stdout
		if severity >= Error {
			out = os.Stderr
		}
		out.WriteString(text)
		out.WriteString("\n")
	}
}

// Stderr returns a Writer that writes to stderr for all severities.
// The replayer keeps stdout for image streams, so diagnostics go here.
func Stderr() Writer {
	return To(os.Stderr)
}

// To returns a Writer that writes each message as a line to w.
func To(w io.Writer) Writer {
	return func(text string, severity Severity) {
		io.WriteString(w, text)
		io.WriteString(w, "\n")
	}
}

// Buffer returns a Writer that writes to the returned buffer.
// Messages are separated with newlines, with no trailing newline.
func Buffer() (Writer, *bytes.Buffer) {
	buf, nl := &bytes.Buffer{}, false
	return func(text string, severity Severity) {
		if nl {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
		nl = true
	}, buf
}

// lineWriter splits written data into lines, emitting each complete line.
type lineWriter struct {
	emit    func(string)
	pending string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	s := w.pending + string(p)
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		w.emit(strings.TrimSuffix(s[:i], "\r"))
		s = s[i+1:]
	}
	w.pending = s
	return len(p), nil
}

func (w *lineWriter) Close() error {
	if w.pending != "" {
		w.emit(w.pending)
		w.pending = ""
	}
	return nil
}
