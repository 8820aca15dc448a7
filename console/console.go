// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package console implements a monochrome display.Drawer that repaints the
// panel in a terminal using ANSI color codes.
//
// Useful to run the demo on a laptop while the OLED breakout is still in the
// mail.
package console

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/GermanBionicSystems/oleddemo/ssd1306/image1bit"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W int
	H int
	// On and Off are the colors of lit and dark pixels. Defaults to a light
	// blue on black, like most cheap SSD1306 panels.
	On, Off color.NRGBA
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is an OLED panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	on, off string

	img *image1bit.VerticalLSB
	buf bytes.Buffer
	// painted is set after the first frame; later frames overwrite it.
	painted bool
}

// New returns a Dev that repaints on w. A nil w means stdout.
func New(w io.Writer, opts *Opts) *Dev {
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	on, off := opts.On, opts.Off
	if on == (color.NRGBA{}) && off == (color.NRGBA{}) {
		on = color.NRGBA{0x80, 0xD0, 0xFF, 0xFF}
		off = color.NRGBA{0, 0, 0, 0xFF}
	}
	return &Dev{
		w:   w,
		on:  p.Block(on),
		off: p.Block(off),
		img: image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("console.Dev{%s}", d.img.Rect.Max)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the prompt is not corrupted.
func (d *Dev) Halt() error {
	_, err := io.WriteString(d.w, "\n\033[0m")
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.img, r, src, sp)
	return d.refresh()
}

// refresh prints the whole panel, one terminal line per pixel row.
func (d *Dev) refresh() error {
	d.buf.Reset()
	if d.painted {
		// Move the cursor back to the top left corner of the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", d.img.Rect.Dy())
	}
	for y := d.img.Rect.Min.Y; y < d.img.Rect.Max.Y; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := d.img.Rect.Min.X; x < d.img.Rect.Max.X; x++ {
			if d.img.BitAt(x, y) {
				_, _ = d.buf.WriteString(d.on)
			} else {
				_, _ = d.buf.WriteString(d.off)
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.painted = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
