// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package textscreen renders lines of bitmap text into a 1 bit framebuffer
// and pushes it to a display.Drawer on demand.
//
// Rendering and flushing are separate steps: UpdateTextLine only touches the
// framebuffer, Flush sends it. Clear and ShowText do both.
package textscreen

import (
	"fmt"
	"image"
	"unicode/utf8"

	"github.com/GermanBionicSystems/oleddemo/font5x8"
	"github.com/GermanBionicSystems/oleddemo/ssd1306/image1bit"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
)

// Screen is a text framebuffer bound to a display.
type Screen struct {
	d   display.Drawer
	buf *image1bit.VerticalLSB
}

// New returns a Screen with a framebuffer the size of d.
func New(d display.Drawer) *Screen {
	return &Screen{d: d, buf: image1bit.NewVerticalLSB(d.Bounds())}
}

func (s *Screen) String() string {
	return fmt.Sprintf("textscreen.Screen{%s}", s.d)
}

// Image returns the framebuffer. It is only pushed to the display by Flush.
func (s *Screen) Image() *image1bit.VerticalLSB {
	return s.buf
}

// Bounds returns the framebuffer bounds.
func (s *Screen) Bounds() image.Rectangle {
	return s.buf.Rect
}

// Clear blanks the framebuffer and flushes it.
func (s *Screen) Clear() error {
	s.buf.Fill(image1bit.Off)
	return s.Flush()
}

// ShowText draws text with its top left corner at (x, y), magnified by scale,
// and flushes.
func (s *Screen) ShowText(text string, x, y, scale int) error {
	if err := s.draw(text, x, y, scale, s.buf.Rect.Max.X-x); err != nil {
		return err
	}
	return s.Flush()
}

// UpdateTextLine blanks the band of width pixels starting at (x, y), one line
// high at the given scale, then draws text in it.
//
// The display is not updated; call Flush.
func (s *Screen) UpdateTextLine(text string, x, y, scale, width int) error {
	if scale < 1 {
		return fmt.Errorf("textscreen: invalid scale %d", scale)
	}
	s.buf.FillRect(image.Rect(x, y, x+width, y+font5x8.Height*scale), image1bit.Off)
	return s.draw(text, x, y, scale, width)
}

// Flush sends the framebuffer to the display.
func (s *Screen) Flush() error {
	return s.d.Draw(s.buf.Rect, s.buf, image.Point{})
}

// Halt implements conn.Resource.
func (s *Screen) Halt() error {
	return s.d.Halt()
}

func (s *Screen) draw(text string, x, y, scale, width int) error {
	if scale < 1 {
		return fmt.Errorf("textscreen: invalid scale %d", scale)
	}
	text = Fit(text, width, scale)
	if text == "" {
		return nil
	}
	// Render at scale 1 into an alpha mask, then magnify onto the framebuffer.
	n := utf8.RuneCountInString(text)
	line := image.NewAlpha(image.Rect(0, 0, n*font5x8.Advance, font5x8.Height))
	d := font.Drawer{
		Dst:  line,
		Src:  image.Opaque,
		Face: font5x8.Face,
		Dot:  fixed.P(0, font5x8.Face.Ascent),
	}
	d.DrawString(text)
	dr := image.Rect(x, y, x+line.Rect.Dx()*scale, y+line.Rect.Dy()*scale)
	xdraw.NearestNeighbor.Scale(s.buf, dr, line, line.Rect, xdraw.Over, nil)
	return nil
}

// Fit truncates text to the characters whose glyph fits entirely in width
// pixels at the given scale.
func Fit(text string, width, scale int) string {
	if scale < 1 || width < font5x8.Width*scale {
		return ""
	}
	fits := (width-font5x8.Width*scale)/(font5x8.Advance*scale) + 1
	i := 0
	for j := range text {
		if i == fits {
			return text[:j]
		}
		i++
	}
	return text
}
