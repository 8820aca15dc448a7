// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/GermanBionicSystems/oleddemo/ssd1306/image1bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

// DefaultOpts is the configuration of the common 0.96" 128x64 breakout.
var DefaultOpts = Opts{
	W:    128,
	H:    64,
	Addr: 0x3C,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// Sequential selects the sequential COM pin configuration. Try toggling
	// this if every other line is missing, typically on 32 pixels high
	// panels.
	Sequential bool
	// MirrorVertical flips the COM scan direction.
	MirrorVertical bool
	// MirrorHorizontal flips the segment remap.
	MirrorHorizontal bool
	// SwapTopBottom swaps the top and bottom halves of the panel.
	SwapTopBottom bool
	// Addr is the I²C address of the controller. 0 means 0x3C.
	Addr uint16
}

// Dev is an open handle to the display controller.
type Dev struct {
	c    conn.Conn
	kind controller
	rect image.Rectangle

	// shown mirrors the controller RAM, in image1bit.VerticalLSB format: one
	// page of W bytes per band of 8 rows.
	shown []byte
	// scratch is lazily allocated for Draw() calls that are not a full frame
	// VerticalLSB. It starts from shown on every call.
	scratch *image1bit.VerticalLSB
	// stale forces the next update to send the whole frame.
	stale  bool
	halted bool
}

// NewI2C returns a Dev that talks to the controller over I²C.
//
// The controller is detected, reset to a known state and turned on. The bus
// should run at 400kHz, the maximum supported by the chip. A nil opts means
// DefaultOpts.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	return newDev(&i2c.Dev{Bus: b, Addr: o.Addr}, &o)
}

func newDev(c conn.Conn, opts *Opts) (*Dev, error) {
	d := &Dev{c: c, stale: true}
	status, _ := d.readStatus()
	d.kind = detect(status)

	if opts.W < 8 || opts.W > 128 || opts.W&7 != 0 {
		return nil, fmt.Errorf("%s: invalid width %d", d.kind, opts.W)
	}
	if opts.H < 8 || opts.H > d.kind.maxHeight() || opts.H&7 != 0 {
		return nil, fmt.Errorf("%s: invalid height %d", d.kind, opts.H)
	}
	d.rect = image.Rect(0, 0, opts.W, opts.H)
	d.shown = make([]byte, opts.W*opts.H/8)

	if err := d.command(initSequence(opts, d.kind)...); err != nil {
		return nil, fmt.Errorf("%s: init failed: %w", d.kind, err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s.Dev{%s, %s}", d.kind, d.c, d.rect.Max)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// The panel is updated when the function returns. A full frame
// *image1bit.VerticalLSB is sent without copy.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.rect && img.Rect == d.rect && sp == (image.Point{}) {
		return d.update(img.Pix)
	}
	if d.scratch == nil {
		d.scratch = image1bit.NewVerticalLSB(d.rect)
	}
	copy(d.scratch.Pix, d.shown)
	draw.Src.Draw(d.scratch, r, src, sp)
	return d.update(d.scratch.Pix)
}

// Write sends a raw frame in image1bit.VerticalLSB.Pix format.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.shown) {
		return 0, fmt.Errorf("%s: invalid pixel stream length; expected %d bytes, got %d bytes", d.kind, len(d.shown), len(pixels))
	}
	if err := d.update(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// SetContrast changes the panel brightness.
func (d *Dev) SetContrast(level byte) error {
	return d.command(cmdSetContrast, level)
}

// Contrast implements display.DisplayContrast.
func (d *Dev) Contrast(level display.Contrast) error {
	if level < 0 || level > 255 {
		return fmt.Errorf("%s: invalid contrast %d: %w", d.kind, level, display.ErrInvalidCommand)
	}
	return d.SetContrast(byte(level))
}

// Invert switches between white on black and black on white.
func (d *Dev) Invert(blackOnWhite bool) error {
	if blackOnWhite {
		return d.command(cmdInvertDisplay)
	}
	return d.command(cmdNormalDisplay)
}

// Halt implements conn.Resource. It turns the panel off.
//
// Any later command turns it back on.
func (d *Dev) Halt() error {
	if err := d.command(cmdDisplayOff); err != nil {
		return err
	}
	d.halted = true
	return nil
}

// update sends the part of next that differs from what the panel shows.
func (d *Dev) update(next []byte) error {
	b, ok := d.dirty(next)
	if !ok {
		return nil
	}
	w := d.rect.Dx()
	for page := b.Min.Y; page < b.Max.Y; page++ {
		row := next[page*w : (page+1)*w]
		if err := d.command(pageAddress(d.kind, page, b.Min.X)...); err != nil {
			d.stale = true
			return err
		}
		if err := d.data(row[b.Min.X:b.Max.X]); err != nil {
			d.stale = true
			return err
		}
		copy(d.shown[page*w+b.Min.X:], row[b.Min.X:b.Max.X])
	}
	return nil
}

func (d *Dev) command(c ...byte) error {
	if d.halted {
		c = append([]byte{cmdDisplayOn}, c...)
		d.halted = false
	}
	return d.c.Tx(append([]byte{ctrlCommand}, c...), nil)
}

func (d *Dev) data(p []byte) error {
	if d.halted {
		if err := d.command(); err != nil {
			return err
		}
	}
	return d.c.Tx(append([]byte{ctrlData}, p...), nil)
}

// readStatus reads the status byte. Bits 0-5 are the chip ID, bit 6 is set
// when the display is off and bit 7 while busy.
func (d *Dev) readStatus() (byte, error) {
	r := make([]byte, 1)
	err := d.c.Tx([]byte{ctrlCommand}, r)
	return r[0], err
}

var _ display.Drawer = &Dev{}
var _ display.DisplayContrast = &Dev{}
