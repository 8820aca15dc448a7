// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mirror provides a display.Drawer that mirrors the OLED panel to web
// browsers.
//
// Every HTTP client gets the current frame, then a new one on every change,
// as a "MJPEG" stream (multipart/x-mixed-replace). Frames are PNG by default,
// which suits the two color pixel art of the panel; JPEG can be selected with
// Opts.Format or the "format" URL parameter.
//
// Pixels are magnified by Opts.Zoom so a 128x64 panel is readable on a
// desktop screen.
package mirror

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"sync"

	"github.com/GermanBionicSystems/oleddemo/ssd1306/image1bit"
	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
)

// Opts for mirror devices.
type Opts struct {
	// W and H are the panel size in pixels.
	W, H int
	// Zoom is the magnification factor. Defaults to 4.
	Zoom int
	// Format is the default image format sent to clients.
	Format ImageFormat
	// On and Off are the colors of lit and dark pixels.
	On, Off color.NRGBA
}

// Display is an OLED panel mirror that serves its frames over HTTP.
type Display struct {
	defaultFormat ImageFormat

	mu sync.Mutex
	// panel holds the 1 bit frame as palette indexes, 0 is Off.
	panel *image.Paletted
	// frame is panel magnified, as sent to clients.
	frame    *image.RGBA
	clients  map[*client]struct{}
	encoded  map[ImageFormat][]byte
	sequence int
}

// New returns a Display showing a blank panel.
func New(opts *Opts) *Display {
	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = 4
	}
	on, off := opts.On, opts.Off
	if on == (color.NRGBA{}) && off == (color.NRGBA{}) {
		on = color.NRGBA{0x80, 0xD0, 0xFF, 0xFF}
		off = color.NRGBA{0x10, 0x10, 0x10, 0xFF}
	}
	d := &Display{
		defaultFormat: opts.Format,
		panel:         image.NewPaletted(image.Rect(0, 0, opts.W, opts.H), color.Palette{off, on}),
		frame:         image.NewRGBA(image.Rect(0, 0, opts.W*zoom, opts.H*zoom)),
		clients:       map[*client]struct{}{},
		encoded:       map[ImageFormat][]byte{},
	}
	d.renderLocked()
	return d
}

func (d *Display) String() string {
	return fmt.Sprintf("mirror.Display{%s}", d.panel.Rect.Max)
}

// Halt implements conn.Resource and ends all client streams asynchronously.
func (d *Display) Halt() error {
	d.mu.Lock()
	for c := range d.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
	d.mu.Unlock()
	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.panel.Rect
}

// Draw implements display.Drawer.
func (d *Display) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delta := sp.Sub(r.Min)
	r = r.Intersect(d.panel.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			var i uint8
			if image1bit.BitModel.Convert(src.At(x+delta.X, y+delta.Y)).(image1bit.Bit) {
				i = 1
			}
			d.panel.SetColorIndex(x, y, i)
		}
	}
	d.renderLocked()
	d.changedLocked()
	return nil
}

// Frames returns the number of frames drawn so far.
func (d *Display) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sequence
}

func (d *Display) renderLocked() {
	xdraw.NearestNeighbor.Scale(d.frame, d.frame.Rect, d.panel, d.panel.Rect, draw.Src, nil)
}

// changedLocked drops cached encodings and wakes up the clients.
func (d *Display) changedLocked() {
	d.sequence++
	for f, b := range d.encoded {
		if b != nil {
			//lint:ignore SA6002 b is []byte and thus pointer-like
			bufferPool.Put(b)
		}
		delete(d.encoded, f)
	}
	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

var _ display.Drawer = (*Display)(nil)
var _ http.Handler = (*Display)(nil)
