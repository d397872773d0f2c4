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

// Package image holds the image conversion, encoding and comparison helpers
// used for snapshots.
package image

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// NRGBA returns img as a non-premultiplied 8 bit image with its bounds moved
// to the origin. img is returned unchanged if it already is one.
func NRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// Opaque returns true if every pixel of img has full alpha.
func Opaque(img *image.NRGBA) bool {
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return false
			}
		}
	}
	return true
}

// Comparison is the result of comparing an image against a reference.
type Comparison struct {
	// Precision is the agreement between the images expressed in bits per
	// channel, from 0 (nothing in common) to 8 (identical).
	Precision float64
	// MeanSquareError is the mean of the squared per channel differences, with
	// channels normalized to [0, 1].
	MeanSquareError float64
}

// ErrSizeMismatch is returned when comparing images of different dimensions.
var ErrSizeMismatch = errors.New("Image dimensions are not identical")

// MaxPrecision is the precision reported for identical images.
const MaxPrecision = 8

// Compare compares img against ref channel by channel.
func Compare(img, ref image.Image) (Comparison, error) {
	a, b := NRGBA(img), NRGBA(ref)
	if a.Rect.Size() != b.Rect.Size() {
		return Comparison{}, errors.Wrapf(ErrSizeMismatch, "%dx%d vs %dx%d",
			a.Rect.Dx(), a.Rect.Dy(), b.Rect.Dx(), b.Rect.Dy())
	}
	w, h := a.Rect.Dx(), a.Rect.Dy()
	count := w * h * 4
	if count == 0 {
		return Comparison{Precision: MaxPrecision}, nil
	}
	absErr, sqrErr := 0.0, 0.0
	for y := 0; y < h; y++ {
		p := a.Pix[y*a.Stride : y*a.Stride+w*4]
		q := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for i := range p {
			d := math.Abs(float64(p[i])-float64(q[i])) / 0xff
			absErr += d
			sqrErr += d * d
		}
	}
	return Comparison{
		Precision:       precision(absErr / float64(count)),
		MeanSquareError: sqrErr / float64(count),
	}, nil
}

// precision converts a mean absolute error in [0, 1] into bits.
func precision(mae float64) float64 {
	if mae <= 0 {
		return MaxPrecision
	}
	return math.Max(0, math.Min(MaxPrecision, -math.Log2(mae)))
}

// Precision returns the per channel precision in bits of img compared
// against ref.
func Precision(img, ref image.Image) (float64, error) {
	c, err := Compare(img, ref)
	return c.Precision, err
}
