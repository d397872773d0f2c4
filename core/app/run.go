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

// Package app provides the entry point for the command line tools, with a
// verb based command structure, context bound logging and orderly exit.
package app

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/core/log"
)

var (
	// Name is the full name of the application
	Name string
	// ExitFuncForTesting can be set to change the behaviour when there is a command line parsing failure.
	// It defaults to os.Exit
	ExitFuncForTesting = os.Exit
	// ShortHelp should be set to add a help message to the usage text.
	ShortHelp = ""
	// ShortUsage is usage text for the additional non-flag arguments.
	ShortUsage = ""
	// UsageFooter is printed at the bottom of the usage text
	UsageFooter = ""
)

// ExitCode is the type for named return values from the application main entry point.
type ExitCode int

const (
	// SuccessExit is the exit code for succesful exit.
	SuccessExit ExitCode = iota
	// FatalExit is the exit code if something fatal happened.
	FatalExit
	// UsageExit is the exit code if the usage function was invoked
	UsageExit
)

// ErrCancelled is returned by tasks that stopped because the application was
// interrupted.
const ErrCancelled = fault.Const("Cancelled")

// Main is the signature of the application entry point passed to Run.
type Main func(ctx context.Context) error

func init() {
	Name = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
}

// Run parses the application flags, builds the root context and runs main
// with it. The context is cancelled on interrupt.
// Run does not return if main fails: the error is logged and the process
// exits with FatalExit. A panic of an ExitCode exits with that code, any other
// panic is logged and re-raised.
func Run(main Main) {
	ctx := context.Background()
	// Defer the panic handling
	defer func() {
		switch cause := recover().(type) {
		case nil:
		case ExitCode:
			ExitFuncForTesting(int(cause))
		default:
			log.F(ctx, false, "Panic: %v", cause)
			panic(cause)
		}
	}()

	flags := &AppFlags{Log: logDefaults()}
	verbMainPrepare(flags)
	ctx = prepareContext(&flags.Log)
	if err := globalVerbs.Flags.Parse(&flags.FullHelp, os.Args[1:]...); err != nil {
		Usage(ctx, "%v", err)
	}
	if flags.FullHelp {
		usage(ctx, "", true)
		panic(SuccessExit)
	}
	ctx = updateContext(ctx, &flags.Log)
	defer LogHandler.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := main(ctx); err != nil {
		log.F(ctx, false, "Main failed\nError: %v", err)
		panic(FatalExit)
	}
}
