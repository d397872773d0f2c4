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
	"time"
)

type (
	filterKeyTy  string
	clockKeyTy   string
	tagKeyTy     string
	processKeyTy string
	traceKeyTy   string
)

const (
	filterKey  filterKeyTy  = "log.filterKey"
	clockKey   clockKeyTy   = "log.clockKey"
	tagKey     tagKeyTy     = "log.tagKey"
	processKey processKeyTy = "log.processKey"
	traceKey   traceKeyTy   = "log.traceKey"
)

// Filter is the filter of log messages.
type Filter interface {
	// ShowSeverity returns true if the message of severity s should be shown.
	ShowSeverity(s Severity) bool
}

// SeverityFilter implements the Filter interface which filters out any messages
// below the severity value.
type SeverityFilter Severity

// ShowSeverity returns true if the message of severity s should be shown.
func (f SeverityFilter) ShowSeverity(s Severity) bool { return Severity(f) <= s }

// PutFilter returns a new context with the Filter assigned to f.
func PutFilter(ctx context.Context, f Filter) context.Context {
	return context.WithValue(ctx, filterKey, f)
}

// GetFilter returns the Filter assigned to ctx.
func GetFilter(ctx context.Context) Filter {
	out, _ := ctx.Value(filterKey).(Filter)
	return out
}

// Clock is the interface implemented by types that tell the time.
type Clock interface {
	Time() time.Time
}

// FixedClock is a Clock that returns a fixed time.
type FixedClock time.Time

// Time returns the fixed clock time.
func (c FixedClock) Time() time.Time { return time.Time(c) }

// NoClock is a Clock that disables printing of the time.
var NoClock = FixedClock(time.Time{})

// PutClock returns a new context with the Clock assigned to c.
func PutClock(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, clockKey, c)
}

// GetClock returns the Clock assigned to ctx.
func GetClock(ctx context.Context) Clock {
	out, _ := ctx.Value(clockKey).(Clock)
	return out
}

// PutTag returns a new context with the tag assigned to t.
func PutTag(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, tagKey, t)
}

// GetTag returns the Tag assigned to ctx.
func GetTag(ctx context.Context) string {
	out, _ := ctx.Value(tagKey).(string)
	return out
}

// PutProcess returns a new context with the process name assigned to p.
func PutProcess(ctx context.Context, p string) context.Context {
	return context.WithValue(ctx, processKey, p)
}

// GetProcess returns the process name assigned to ctx.
func GetProcess(ctx context.Context) string {
	out, _ := ctx.Value(processKey).(string)
	return out
}

// trace is a single entry in a stack of Enter()s.
type trace struct {
	name   string
	parent *trace
}

// Enter returns a new context with the trace-stack pushed by name.
func Enter(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, traceKey, &trace{
		name:   name,
		parent: getTrace(ctx),
	})
}

func getTrace(ctx context.Context) *trace {
	out, _ := ctx.Value(traceKey).(*trace)
	return out
}

// GetTrace returns the trace-stack.
func GetTrace(ctx context.Context) []string {
	var out []string
	for t := getTrace(ctx); t != nil; t = t.parent {
		out = append(out, t.name)
	}
	return out
}
