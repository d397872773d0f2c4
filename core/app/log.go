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

package app

import (
	"context"
	"os"

	"github.com/google/gfxretrace/core/log"
	"golang.org/x/term"
)

// LogHandler is the primary application logger target.
// It is assigned to the main context on startup and is closed on shutdown.
var LogHandler log.Handler = log.NewHandler(func(*log.Message) {}, nil)

// AppFlags are the flags accepted before the verb.
type AppFlags struct {
	FullHelp bool `flag:"-"`
	Log      LogFlags
}

// LogFlags controls the diagnostic output of the application.
type LogFlags struct {
	Style log.Style `help:"the log style to use: raw, brief, normal or detailed"`
	File  string    `help:"a file to write the log to instead of stderr"`
}

func logDefaults() LogFlags {
	style := log.Normal
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		style = log.Detailed
	}
	return LogFlags{Style: style}
}

// wrapHandler makes a fatal message that asks for the process to stop end
// the application.
func wrapHandler(to log.Handler) log.Handler {
	to = log.Synchronized(to)
	return log.NewHandler(func(m *log.Message) {
		to.Handle(m)
		if m.StopProcess {
			to.Close()
			panic(FatalExit)
		}
	}, to.Close)
}

func prepareContext(flags *LogFlags) context.Context {
	LogHandler = wrapHandler(flags.Style.Handler(log.Stderr()))
	ctx := context.Background()
	ctx = log.PutProcess(ctx, Name)
	ctx = log.PutVerbosity(ctx, log.DefaultVerbosity)
	ctx = log.PutHandler(ctx, LogHandler)
	return ctx
}

func updateContext(ctx context.Context, flags *LogFlags) context.Context {
	if flags.File == "" {
		LogHandler = wrapHandler(flags.Style.Handler(log.Stderr()))
		return log.PutHandler(ctx, LogHandler)
	}
	file, err := os.Create(flags.File)
	if err != nil {
		log.E(ctx, "Failed to create log file %v: %v", flags.File, err)
		return ctx
	}
	LogHandler = wrapHandler(log.NewHandler(flags.Style.Handler(log.To(file)).Handle, func() { file.Close() }))
	return log.PutHandler(ctx, LogHandler)
}
