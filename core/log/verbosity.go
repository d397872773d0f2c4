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

import "context"

// DefaultVerbosity is the verbosity level used when none is configured.
const DefaultVerbosity = 0

// VerbositySeverity returns the least important severity shown at the given
// verbosity level.
//
//	-2 or less: fatal only
//	-1:         errors
//	 0:         warnings
//	 1:         info
//	 2:         debug
//	 3 or more: verbose
func VerbositySeverity(verbosity int) Severity {
	switch {
	case verbosity <= -2:
		return Fatal
	case verbosity == -1:
		return Error
	case verbosity == 0:
		return Warning
	case verbosity == 1:
		return Info
	case verbosity == 2:
		return Debug
	default:
		return Verbose
	}
}

// VerbosityFilter returns the Filter that shows messages at the given
// verbosity level.
func VerbosityFilter(verbosity int) Filter {
	return SeverityFilter(VerbositySeverity(verbosity))
}

// PutVerbosity returns a new context with the severity filter set for the
// given verbosity level.
func PutVerbosity(ctx context.Context, verbosity int) context.Context {
	return PutFilter(ctx, VerbosityFilter(verbosity))
}
