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

package image

import (
	"bufio"
	"fmt"
	"image"
	"io"
)

// WritePNM streams img to w as a binary portable anymap.
// Opaque images are written as a P6 pixmap, images with transparency as a P7
// arbitrary map with an RGB_ALPHA tuple type. Each comment is written as a
// "# " line in the header.
func WritePNM(w io.Writer, img image.Image, comments ...string) error {
	n := NRGBA(img)
	width, height := n.Rect.Dx(), n.Rect.Dy()
	opaque := Opaque(n)
	out := bufio.NewWriter(w)
	if opaque {
		fmt.Fprintln(out, "P6")
	} else {
		fmt.Fprintln(out, "P7")
	}
	for _, c := range comments {
		fmt.Fprintf(out, "# %s\n", c)
	}
	if opaque {
		fmt.Fprintf(out, "%d %d\n255\n", width, height)
	} else {
		fmt.Fprintf(out, "WIDTH %d\nHEIGHT %d\nDEPTH 4\nMAXVAL 255\nTUPLTYPE RGB_ALPHA\nENDHDR\n", width, height)
	}
	for y := 0; y < height; y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+width*4]
		if !opaque {
			out.Write(row)
			continue
		}
		for i := 0; i < len(row); i += 4 {
			out.Write(row[i : i+3])
		}
	}
	return out.Flush()
}
