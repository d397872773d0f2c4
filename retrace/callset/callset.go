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

// Package callset parses the call selection expressions used to choose which
// calls are snapshotted or compared.
//
// An expression is a list of terms separated by commas or white space. A call
// is in the set if any term matches it. The terms are:
//
//	*               every call
//	N               call N
//	N-M             calls N to M inclusive
//	N-              call N onwards
//	-M              calls up to M
//	frame           calls that end a frame
//	rendertarget    calls that change the render target
//	draw            calls that render
//	@path           the terms read from a file, one or more per line
//
// A range may be followed by "/S" to select every S'th call counted from its
// start, or by "/frame", "/rendertarget" or "/draw" to select only calls of
// that kind within it.
package callset

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/math/interval"
	"github.com/google/gfxretrace/retrace/call"
	"github.com/pkg/errors"
)

// ErrSyntax is the cause of every parse failure.
const ErrSyntax = fault.Const("Invalid call set")

// Frame is the expression used when a snapshot or compare prefix is given
// without a call set.
const Frame = "frame"

var kinds = map[string]call.Flags{
	"frame":        call.EndOfFrame,
	"rendertarget": call.SwapRenderTarget,
	"draw":         call.Render,
}

type term struct {
	span  interval.U64Span // the calls numbers covered, End is exclusive
	step  uint64
	flags call.Flags
}

func (t term) matches(c *call.Call) bool {
	if !t.span.Contains(c.No) {
		return false
	}
	if t.step > 1 && (c.No-t.span.Start)%t.step != 0 {
		return false
	}
	return t.flags == 0 || c.Flags&t.flags != 0
}

// Set is an immutable predicate over calls.
type Set struct {
	terms []term
	text  string
}

// Parse parses expr into a Set. An empty expression matches nothing.
func Parse(expr string) (*Set, error) {
	s := &Set{text: expr}
	if err := s.parse(expr, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) *Set {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

const maxIncludeDepth = 8

func (s *Set) parse(expr string, depth int) error {
	fields := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	for _, f := range fields {
		if strings.HasPrefix(f, "@") {
			if err := s.include(f[1:], depth); err != nil {
				return err
			}
			continue
		}
		t, err := parseTerm(f)
		if err != nil {
			return err
		}
		s.terms = append(s.terms, t)
	}
	return nil
}

func (s *Set) include(path string, depth int) error {
	if depth >= maxIncludeDepth {
		return errors.Wrapf(ErrSyntax, "Too many nested includes at %s", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "Reading call set")
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if err := s.parse(line, depth+1); err != nil {
			return errors.Wrapf(err, "In %s", path)
		}
	}
	return scanner.Err()
}

func parseTerm(text string) (term, error) {
	if f, ok := kinds[text]; ok {
		return term{span: everything, flags: f}, nil
	}
	rng, suffix, hasSuffix := strings.Cut(text, "/")
	t, err := parseRange(rng)
	if err != nil {
		return term{}, errors.Wrapf(ErrSyntax, "%q: %v", text, err)
	}
	if !hasSuffix {
		return t, nil
	}
	if f, ok := kinds[suffix]; ok {
		t.flags = f
		return t, nil
	}
	step, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil || step == 0 {
		return term{}, errors.Wrapf(ErrSyntax, "%q: bad step %q", text, suffix)
	}
	t.step = step
	return t, nil
}

var everything = interval.U64Span{Start: 0, End: math.MaxUint64}

func parseRange(text string) (term, error) {
	if text == "*" {
		return term{span: everything}, nil
	}
	first, last, isRange := strings.Cut(text, "-")
	if !isRange {
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return term{}, err
		}
		return term{span: span(n, n)}, nil
	}
	lo, hi := uint64(0), uint64(math.MaxUint64)
	if first == "" && last == "" {
		return term{}, errors.New("empty range")
	}
	if first != "" {
		n, err := strconv.ParseUint(first, 10, 64)
		if err != nil {
			return term{}, err
		}
		lo = n
	}
	if last != "" {
		n, err := strconv.ParseUint(last, 10, 64)
		if err != nil {
			return term{}, err
		}
		hi = n
	}
	if hi < lo {
		return term{}, errors.Errorf("range end %d is before its start %d", hi, lo)
	}
	return term{span: span(lo, hi)}, nil
}

// span returns the span holding first to last inclusive. Call numbers are
// never the maximum uint64, so an open range ends there.
func span(first, last uint64) interval.U64Span {
	if last == math.MaxUint64 {
		return interval.U64Span{Start: first, End: math.MaxUint64}
	}
	return interval.U64Span{Start: first, End: last + 1}
}

// Contains returns true if c is selected by the set.
func (s *Set) Contains(c *call.Call) bool {
	if s == nil {
		return false
	}
	for _, t := range s.terms {
		if t.matches(c) {
			return true
		}
	}
	return false
}

// IsEmpty returns true if the set can match no call.
func (s *Set) IsEmpty() bool { return s == nil || len(s.terms) == 0 }

func (s *Set) String() string {
	if s == nil {
		return ""
	}
	return s.text
}
