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

package call

import "strings"

// Flags is a bitfield describing characteristics of a call, set by the trace
// producer.
type Flags uint32

const (
	// EndOfFrame marks the call that completes a frame.
	EndOfFrame Flags = 1 << iota
	// SwapRenderTarget marks a call that changes or presents the render target,
	// destroying the contents a snapshot would want to see.
	SwapRenderTarget
	// Render marks a call that draws into the current render target.
	Render
	// Marker marks a debug marker call with no rendering effect.
	Marker
)

var flagNames = []string{"EndOfFrame", "SwapRenderTarget", "Render", "Marker"}

// IsEndOfFrame returns true if the call represents the end of a frame.
func (f Flags) IsEndOfFrame() bool { return (f & EndOfFrame) != 0 }

// IsSwapRenderTarget returns true if the call swaps or changes the render target.
func (f Flags) IsSwapRenderTarget() bool { return (f & SwapRenderTarget) != 0 }

// IsRender returns true if the call renders into the current target.
func (f Flags) IsRender() bool { return (f & Render) != 0 }

// IsMarker returns true if the call is a debug marker.
func (f Flags) IsMarker() bool { return (f & Marker) != 0 }

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for i, name := range flagNames {
		if f&(1<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
