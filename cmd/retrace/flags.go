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

package main

import (
	"github.com/google/gfxretrace/core/app/flags"
	"github.com/google/gfxretrace/core/image"
)

type (
	SnapshotFlags struct {
		Prefix string       `help:"write snapshots to files starting with this prefix, or - to stream them to stdout" env:"SNAPSHOT_PREFIX"`
		Calls  string       `name:"snapshot" fullname:"snapshot" help:"the calls to snapshot, defaults to every frame" env:"SNAPSHOT"`
		Format image.Format `fullname:"format" help:"the snapshot file format: png, bmp or tiff" env:"FORMAT"`
	}
	CompareFlags struct {
		Prefix string `help:"compare against reference images starting with this prefix" env:"COMPARE_PREFIX"`
		Calls  string `name:"compare" fullname:"compare" help:"the calls to compare, defaults to every frame" env:"COMPARE"`
		DB     string `name:"db" help:"also record the comparisons in this sqlite database" env:"COMPARE_DB"`
	}
	ReplayFlags struct {
		Benchmark     bool          `help:"only measure the frame rate, disabling snapshots and comparisons" env:"BENCHMARK"`
		Profile       bool          `help:"print the time spent in each call" env:"PROFILE"`
		Snapshot      SnapshotFlags `name:"snapshot"`
		Compare       CompareFlags  `name:"compare"`
		Verbose       flags.Counter `name:"v" help:"increase the verbosity, may be repeated"`
		Quiet         flags.Counter `name:"q" help:"decrease the verbosity, may be repeated"`
		DumpState     int64         `name:"dump-state" help:"dump the device state after this call and exit" env:"DUMP_STATE"`
		CallLimit     uint64        `name:"call-limit" help:"stop the replay after this call" env:"CALL_LIMIT"`
		Strict        bool          `help:"stop the replay on fatal device errors" env:"STRICT"`
		Wait          bool          `help:"wait for Enter before exiting when run from a terminal" env:"WAIT"`
		TraceEndpoint string        `name:"trace-endpoint" help:"export call spans to this OTLP/HTTP endpoint" env:"TRACE_ENDPOINT"`
	}
	DumpFlags struct {
		Flags bool `help:"show the call flags"`
	}
	SynthFlags struct {
		Frames   int  `help:"the number of frames to write"`
		Size     int  `help:"the drawable width and height"`
		Compress bool `help:"gzip compress the trace"`
	}
)

// verbosity returns the log verbosity selected by -v and -q.
func (f *ReplayFlags) verbosity() int { return int(f.Verbose) - int(f.Quiet) }
