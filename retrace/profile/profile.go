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

// Package profile times replayed calls and frames with OpenTelemetry spans.
//
// Every call becomes a span named after the call, and every frame a span
// named "frame". Call spans are aggregated in process for the -profile report
// and, when an endpoint is given, exported over OTLP/HTTP.
package profile

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/gfxretrace/retrace/call"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentation = "github.com/google/gfxretrace/retrace/profile"
	frameSpan       = "frame"

	callKey  = attribute.Key("retrace.call")
	frameKey = attribute.Key("retrace.frame")
)

// Options configures a Profiler.
type Options struct {
	// Service is the reported service name.
	Service string
	// Endpoint is the OTLP/HTTP collector URL. Spans are only aggregated
	// locally when it is empty.
	Endpoint string
}

// Profiler records call and frame spans.
// A nil Profiler is valid and records nothing.
type Profiler struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	timer    *callTimer
}

// New returns a Profiler using opts.
func New(ctx context.Context, opts Options) (*Profiler, error) {
	if opts.Service == "" {
		opts.Service = "retrace"
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(opts.Service)))
	if err != nil {
		return nil, err
	}
	timer := &callTimer{byName: map[string]*Timing{}}
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(timer),
	}
	if opts.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
		if err != nil {
			return nil, errors.Wrap(err, "Creating trace exporter")
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &Profiler{provider: tp, tracer: tp.Tracer(instrumentation), timer: timer}, nil
}

// Call starts the span for c. The returned function ends it.
func (p *Profiler) Call(ctx context.Context, c *call.Call) (context.Context, func()) {
	if p == nil {
		return ctx, func() {}
	}
	ctx, span := p.tracer.Start(ctx, c.Name, trace.WithAttributes(callKey.Int64(int64(c.No))))
	return ctx, func() { span.End() }
}

// Frame starts the span for frame n. The returned function ends it.
func (p *Profiler) Frame(ctx context.Context, n uint64) (context.Context, func()) {
	if p == nil {
		return ctx, func() {}
	}
	ctx, span := p.tracer.Start(ctx, frameSpan, trace.WithAttributes(frameKey.Int64(int64(n))))
	return ctx, func() { span.End() }
}

// Timings returns the aggregated call timings, slowest first.
func (p *Profiler) Timings() []Timing {
	if p == nil {
		return nil
	}
	return p.timer.timings()
}

// Report writes the aggregated call timings to w.
func (p *Profiler) Report(w io.Writer) {
	for _, t := range p.Timings() {
		fmt.Fprintf(w, "%-32s %8d calls %12v total %10v mean\n", t.Name, t.Calls, t.Total, t.Mean())
	}
}

// Shutdown flushes and stops exporting spans.
func (p *Profiler) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// Timing is the accumulated time spent in one call name.
type Timing struct {
	Name  string
	Calls int
	Total time.Duration
}

// Mean returns the average duration of a call.
func (t Timing) Mean() time.Duration {
	if t.Calls == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Calls)
}

// callTimer is a span processor summing the durations of call spans.
type callTimer struct {
	mutex  sync.Mutex
	byName map[string]*Timing
}

var _ sdktrace.SpanProcessor = (*callTimer)(nil)

func (c *callTimer) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (c *callTimer) OnEnd(s sdktrace.ReadOnlySpan) {
	if !isCall(s) {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	t, ok := c.byName[s.Name()]
	if !ok {
		t = &Timing{Name: s.Name()}
		c.byName[s.Name()] = t
	}
	t.Calls++
	t.Total += s.EndTime().Sub(s.StartTime())
}

func (c *callTimer) Shutdown(context.Context) error   { return nil }
func (c *callTimer) ForceFlush(context.Context) error { return nil }

func (c *callTimer) timings() []Timing {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]Timing, 0, len(c.byName))
	for _, t := range c.byName {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func isCall(s sdktrace.ReadOnlySpan) bool {
	for _, kv := range s.Attributes() {
		if kv.Key == callKey {
			return true
		}
	}
	return false
}
