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
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is a file format snapshots can be saved in.
type Format int

const (
	// PNG is the default snapshot format, and the only one used for
	// reference images.
	PNG Format = iota
	// BMP writes uncompressed Windows bitmaps.
	BMP
	// TIFF writes deflate compressed TIFF images.
	TIFF
)

var formats = []struct {
	name, ext string
}{
	PNG:  {"png", ".png"},
	BMP:  {"bmp", ".bmp"},
	TIFF: {"tiff", ".tiff"},
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formats) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formats[f].name
}

// Ext returns the file extension, including the dot, for the format.
func (f Format) Ext() string { return formats[f].ext }

// Set implements flag.Value.
func (f *Format) Set(name string) error {
	for i, e := range formats {
		if strings.EqualFold(e.name, name) {
			*f = Format(i)
			return nil
		}
	}
	return fmt.Errorf("Unknown image format %q, valid options are: png, bmp, tiff", name)
}

// UnmarshalText allows formats to be read from the environment.
func (f *Format) UnmarshalText(text []byte) error { return f.Set(string(text)) }

// Encode writes img to w in the format f.
func (f Format) Encode(w io.Writer, img image.Image) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("Cannot encode %v", f)
	}
}

// Save writes img to the file at path in the format f.
func (f Format) Save(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := f.Encode(w, img); err != nil {
		file.Close()
		return errors.Wrapf(err, "Encoding %v", path)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load reads and decodes the image file at path. The format is detected from
// the file contents.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "Decoding %v", path)
	}
	return img, nil
}
