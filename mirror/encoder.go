// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mirror

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"sync"
)

// bufferPool stores reusable []byte instances.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return []byte(nil)
	},
}

type pngBufferPool sync.Pool

func (p *pngBufferPool) Get() *png.EncoderBuffer {
	buf, _ := (*sync.Pool)(p).Get().(*png.EncoderBuffer)
	return buf
}

func (p *pngBufferPool) Put(buf *png.EncoderBuffer) {
	(*sync.Pool)(p).Put(buf)
}

// Frames are tiny and change often; speed matters more than size.
var pngEncoder = png.Encoder{
	CompressionLevel: png.BestSpeed,
	BufferPool:       &pngBufferPool{},
}

var jpegOptions = jpeg.Options{Quality: 90}

func (d *Display) encodeLocked(format ImageFormat) ([]byte, error) {
	buf := bytes.NewBuffer(bufferPool.Get().([]byte)[:0])
	switch format {
	case PNG:
		if err := pngEncoder.Encode(buf, d.frame); err != nil {
			return nil, err
		}
	case JPEG:
		if err := jpeg.Encode(buf, d.frame, &jpegOptions); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("mirror: unhandled image format %s", format)
	}
	return buf.Bytes(), nil
}

// snapshot returns a copy of the current frame encoded in format. The caller
// should return it to bufferPool.
func (d *Display) snapshot(format ImageFormat) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	encoded, ok := d.encoded[format]
	if !ok {
		var err error
		if encoded, err = d.encodeLocked(format); err != nil {
			return nil, err
		}
		d.encoded[format] = encoded
	}
	return append(bufferPool.Get().([]byte)[:0], encoded...), nil
}
