// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package font5x8 is the small monospace font used on 128x64 OLED panels.
//
// Each glyph is 5x7 pixels in a cell 8 pixels high and 6 pixels wide, so 21
// characters fit on 8 lines of a 128x64 panel. Only printable ASCII is
// covered; other runes are drawn as '?'.
package font5x8

import (
	"image"

	"golang.org/x/image/font/basicfont"
)

const (
	// Width is the glyph width in pixels.
	Width = 5
	// Advance is the horizontal distance between two glyphs.
	Advance = 6
	// Height is the line height in pixels.
	Height = 8

	first = ' '
	last  = '~'
)

// Face is a font.Face. The dot is on the baseline, 7 pixels below the top of
// the cell.
var Face = &basicfont.Face{
	Advance: Advance,
	Width:   Width,
	Height:  Height,
	Ascent:  7,
	Descent: 1,
	Mask:    mask(),
	Ranges: []basicfont.Range{
		{Low: first, High: last + 1, Offset: 0},
		{Low: '\ufffd', High: '\ufffe', Offset: '?' - first},
	},
}

// mask expands the column bitmaps into the vertical strip of glyph cells
// basicfont.Face expects.
func mask() *image.Alpha {
	n := len(glyphs) / Width
	m := image.NewAlpha(image.Rect(0, 0, Width, n*Height))
	for g := 0; g < n; g++ {
		for x := 0; x < Width; x++ {
			col := glyphs[g*Width+x]
			for y := 0; y < Height; y++ {
				if col&(1<<uint(y)) != 0 {
					m.Pix[(g*Height+y)*m.Stride+x] = 0xFF
				}
			}
		}
	}
	return m
}

// Columns returns the raw column bitmaps of r, bit 0 being the top row.
func Columns(r rune) [Width]byte {
	if r < first || r > last {
		r = '?'
	}
	var c [Width]byte
	i := int(r-first) * Width
	copy(c[:], glyphs[i:i+Width])
	return c
}
