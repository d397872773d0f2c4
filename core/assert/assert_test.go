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

package assert_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/gfxretrace/core/assert"
	pkgerrors "github.com/pkg/errors"
)

// fakeT records what an assertion would have reported to a testing.T.
type fakeT struct {
	logs, errors, fatals []string
}

func (f *fakeT) Log(args ...interface{})   { f.logs = append(f.logs, fmt.Sprint(args...)) }
func (f *fakeT) Error(args ...interface{}) { f.errors = append(f.errors, fmt.Sprint(args...)) }
func (f *fakeT) Fatal(args ...interface{}) { f.fatals = append(f.fatals, fmt.Sprint(args...)) }

func (f *fakeT) failed() bool { return len(f.errors)+len(f.fatals) > 0 }

func check(t *testing.T, name string, pass bool, run func(m assert.Manager) bool) {
	f := &fakeT{}
	got := run(assert.To(f))
	if got != pass {
		t.Errorf("%s: assertion returned %v, expected %v", name, got, pass)
	}
	if f.failed() == pass {
		t.Errorf("%s: reported failure %v, expected %v (errors: %v)", name, f.failed(), !pass, f.errors)
	}
}

type point struct{ x, y int }

var errSentinel = errors.New("sentinel")

func TestAssertions(t *testing.T) {
	for _, test := range []struct {
		name string
		pass bool
		run  func(m assert.Manager) bool
	}{
		{"equals", true, func(m assert.Manager) bool { return m.For("v").That(3).Equals(3) }},
		{"equals type", false, func(m assert.Manager) bool { return m.For("v").That(uint32(3)).Equals(3) }},
		{"not equals", true, func(m assert.Manager) bool { return m.For("v").That(3).NotEquals(4) }},
		{"typed nil", true, func(m assert.Manager) bool { return m.For("v").That((*point)(nil)).IsNil() }},
		{"not nil", false, func(m assert.Manager) bool { return m.For("v").That(nil).IsNotNil() }},
		{"deep", true, func(m assert.Manager) bool { return m.For("v").That([]point{{1, 2}}).DeepEquals([]point{{1, 2}}) }},
		{"deep diff", false, func(m assert.Manager) bool { return m.For("v").That(point{1, 2}).DeepEquals(point{1, 3}) }},
		{"deep empty", true, func(m assert.Manager) bool { return m.For("v").That([]byte{}).DeepEquals([]byte(nil)) }},
		{"deep not", true, func(m assert.Manager) bool { return m.For("v").That(point{1, 2}).DeepNotEquals(point{2, 1}) }},
		{"true", true, func(m assert.Manager) bool { return m.For("v").ThatBoolean(true).IsTrue() }},
		{"false", false, func(m assert.Manager) bool { return m.For("v").ThatBoolean(true).IsFalse() }},
		{"integer", true, func(m assert.Manager) bool { return m.For("v").ThatInteger(5).IsAtLeast(5) }},
		{"integer max", false, func(m assert.Manager) bool { return m.For("v").ThatInteger(6).IsAtMost(5) }},
		{"float", true, func(m assert.Manager) bool { return m.For("v").ThatFloat(0.333).Equals(1.0/3, 0.001) }},
		{"float out", false, func(m assert.Manager) bool { return m.For("v").ThatFloat(0.3).Equals(1.0/3, 0.001) }},
		{"string", true, func(m assert.Manager) bool { return m.For("v").ThatString("frame").Equals("frame") }},
		{"string longer", false, func(m assert.Manager) bool { return m.For("v").ThatString("frames").Equals("frame") }},
		{"string shorter", false, func(m assert.Manager) bool { return m.For("v").ThatString("fr").Equals("frame") }},
		{"string bytes", true, func(m assert.Manager) bool { return m.For("v").ThatString([]byte("ab")).HasPrefix("a") }},
		{"contains", true, func(m assert.Manager) bool { return m.For("v").ThatString("hello").Contains("ell") }},
		{"suffix", false, func(m assert.Manager) bool { return m.For("v").ThatString("hello").HasSuffix("he") }},
		{"succeeded", true, func(m assert.Manager) bool { return m.For("v").ThatError(nil).Succeeded() }},
		{"failed", false, func(m assert.Manager) bool { return m.For("v").ThatError(nil).Failed() }},
		{"cause", true, func(m assert.Manager) bool {
			return m.For("v").ThatError(pkgerrors.Wrap(errSentinel, "ctx")).HasCause(errSentinel)
		}},
		{"is", true, func(m assert.Manager) bool {
			return m.For("v").ThatError(fmt.Errorf("x: %w", errSentinel)).Is(errSentinel)
		}},
		{"message", true, func(m assert.Manager) bool { return m.For("v").ThatError(errSentinel).HasMessage("sentinel") }},
		{"slice", true, func(m assert.Manager) bool { return m.For("v").ThatSlice([]int{1, 2}).Equals([]int{1, 2}) }},
		{"slice longer", false, func(m assert.Manager) bool { return m.For("v").ThatSlice([]int{1, 2}).Equals([]int{1}) }},
		{"slice deep", true, func(m assert.Manager) bool {
			return m.For("v").ThatSlice([][]int{{1}}).DeepEquals([][]int{{1}})
		}},
		{"slice empty", true, func(m assert.Manager) bool { return m.For("v").ThatSlice([]string{}).IsEmpty() }},
		{"slice length", false, func(m assert.Manager) bool { return m.For("v").ThatSlice([]string{"a"}).IsLength(2) }},
		{"panics", true, func(m assert.Manager) bool { return m.For("v").ThatPanic(func() { panic(errSentinel) }).Panics() }},
		{"panic error", true, func(m assert.Manager) bool {
			return m.For("v").ThatPanic(func() { panic(fmt.Errorf("w: %w", errSentinel)) }).WithError(errSentinel)
		}},
		{"no panic", false, func(m assert.Manager) bool { return m.For("v").ThatPanic(func() {}).Panics() }},
	} {
		check(t, test.name, test.pass, test.run)
	}
}

func TestOutputLayout(t *testing.T) {
	f := &fakeT{}
	assert.To(f).For("region %d", 3).That(1).Equals(2)
	if len(f.errors) != 1 {
		t.Fatalf("expected one error, got %v", f.errors)
	}
	msg := f.errors[0]
	for _, want := range []string{"Error:region 3", "Got", "Expect", "=="} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}

func TestCritical(t *testing.T) {
	f := &fakeT{}
	assert.To(f).For("fatal").Critical().That(1).Equals(2)
	if len(f.fatals) != 1 || len(f.errors) != 0 {
		t.Errorf("expected a single fatal, got errors %v fatals %v", f.errors, f.fatals)
	}
}
