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
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Assertion is a check under construction, started by For.
// Its report rows are buffered and only reach the Output when the check
// fails.
type Assertion struct {
	to    Output
	fatal bool
	title string
	rows  []row
}

type row struct{ key, text string }

// deepOptions makes cmp look inside unexported fields and treat nil and empty
// containers as equal.
var deepOptions = []cmp.Option{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.EquateEmpty(),
}

// Critical makes a failure of the assertion stop the test.
func (a *Assertion) Critical() *Assertion {
	a.fatal = true
	return a
}

// Compare adds the Got and Expect rows to the report.
func (a *Assertion) Compare(value interface{}, op string, expect ...interface{}) *Assertion {
	a.note("Got", pretty(value))
	parts := make([]string, 0, len(expect)+1)
	if op != "" {
		parts = append(parts, op)
	}
	for _, e := range expect {
		parts = append(parts, pretty(e))
	}
	return a.note("Expect", strings.Join(parts, " "))
}

// note adds a row to the report.
func (a *Assertion) note(key, text string) *Assertion {
	a.rows = append(a.rows, row{key, text})
	return a
}

// Test reports the assertion if condition is false, and returns condition.
func (a *Assertion) Test(condition bool) bool {
	if !condition {
		a.report()
	}
	return condition
}

// deepEqual is Test for a deep comparison, reporting a diff on failure.
func (a *Assertion) deepEqual(value, expect interface{}) bool {
	diff := cmp.Diff(expect, value, deepOptions...)
	if diff == "" {
		return true
	}
	a.note("Diff", "(-expect +got)")
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		a.note("", line)
	}
	a.report()
	return false
}

func (a *Assertion) report() {
	buf := &bytes.Buffer{}
	if a.fatal {
		buf.WriteString("Critical:")
	} else {
		buf.WriteString("Error:")
	}
	buf.WriteString(a.title)
	tabs := tabwriter.NewWriter(buf, 1, 4, 1, ' ', 0)
	for _, r := range a.rows {
		fmt.Fprintf(tabs, "\n    %s\t%s", r.key, r.text)
	}
	tabs.Flush()
	if a.fatal {
		a.to.Fatal(buf.String())
	} else {
		a.to.Error(buf.String())
	}
}

// pretty formats a value for a report row. Strings and errors are quoted with
// backticks.
func pretty(v interface{}) string {
	switch v := v.(type) {
	case error:
		return "`" + v.Error() + "`"
	case string:
		return "`" + v + "`"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v (%T)", v, v)
	}
}
