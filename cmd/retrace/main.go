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

// The retrace command replays recorded graphics call streams.
package main

import (
	"github.com/google/gfxretrace/core/app"

	// Registers the API tables used by the replay verbs.
	_ "github.com/google/gfxretrace/retrace/api/cv"
	_ "github.com/google/gfxretrace/retrace/api/hws"
	_ "github.com/google/gfxretrace/retrace/api/mem"
)

func main() {
	app.ShortHelp = "retrace replays recorded graphics call streams."
	app.ShortUsage = "<verb> [verb-flags] <trace>"
	app.Run(app.VerbMain)
}
