// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mirror

import (
	"fmt"
	"strings"
)

// ImageFormat is the encoding of the streamed frames.
//
// The zero value is PNG, which keeps the two panel colors exact. JPEG is
// smaller for large zoom factors but smears the pixel edges.
type ImageFormat int

// Supported formats.
const (
	PNG ImageFormat = iota
	JPEG
)

var formats = [...]struct {
	name string
	mime string
}{
	PNG:  {"png", "image/png"},
	JPEG: {"jpeg", "image/jpeg"},
}

func (f ImageFormat) valid() bool {
	return f >= 0 && int(f) < len(formats)
}

// String returns the name accepted by Set.
func (f ImageFormat) String() string {
	if !f.valid() {
		return fmt.Sprintf("ImageFormat(%d)", int(f))
	}
	return formats[f].name
}

func (f ImageFormat) mimeType() string {
	if !f.valid() {
		return "application/octet-stream"
	}
	return formats[f].mime
}

// Set implements flag.Value. It accepts "png", "jpeg" and "jpg", in any case.
// f is left unchanged on error.
func (f *ImageFormat) Set(value string) error {
	v := strings.ToLower(value)
	if v == "jpg" {
		v = "jpeg"
	}
	for i, e := range formats {
		if e.name == v {
			*f = ImageFormat(i)
			return nil
		}
	}
	return fmt.Errorf("mirror: unknown image format %q, want png or jpeg", value)
}
