// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package snapshot provides a display.Drawer that saves every frame as a PNG
// file, for regression captures and documentation.
//
// Each file holds the magnified panel and, unless disabled, a caption strip
// with the frame number.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/GermanBionicSystems/oleddemo/ssd1306/image1bit"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
)

// Opts for snapshot devices.
type Opts struct {
	// W and H are the panel size in pixels.
	W, H int
	// Dir is the output directory. It is created as needed.
	Dir string
	// Zoom is the magnification factor. Defaults to 4.
	Zoom int
	// NoCaption removes the caption strip.
	NoCaption bool
	// On and Off are the colors of lit and dark pixels.
	On, Off color.NRGBA
}

// Dev writes frames to Opts.Dir.
type Dev struct {
	dir     string
	zoom    int
	caption font.Face
	on, off color.NRGBA
	panel   *image1bit.VerticalLSB
	n       int
}

// New returns a Dev. The output directory is created.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("snapshot: invalid size %dx%d", opts.W, opts.H)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	d := &Dev{
		dir:   opts.Dir,
		zoom:  opts.Zoom,
		on:    opts.On,
		off:   opts.Off,
		panel: image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
	if d.zoom <= 0 {
		d.zoom = 4
	}
	if d.on == (color.NRGBA{}) && d.off == (color.NRGBA{}) {
		d.on = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
		d.off = color.NRGBA{0x00, 0x00, 0x00, 0xFF}
	}
	if !opts.NoCaption {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		d.caption = truetype.NewFace(f, &truetype.Options{Size: 14})
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("snapshot.Dev{%s}", d.dir)
}

// Halt implements conn.Resource. It is a no-op.
func (d *Dev) Halt() error {
	return nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.panel.Rect
}

// Draw implements display.Drawer. Each call writes one file.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.panel, r, src, sp)
	name := filepath.Join(d.dir, fmt.Sprintf("frame-%04d.png", d.n))
	if err := d.render().SavePNG(name); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	d.n++
	return nil
}

// Frames returns the number of files written.
func (d *Dev) Frames() int {
	return d.n
}

// captionHeight is the height of the caption strip, in pixels.
const captionHeight = 24

func (d *Dev) render() *gg.Context {
	w, h := d.panel.Rect.Dx()*d.zoom, d.panel.Rect.Dy()*d.zoom
	total := h
	if d.caption != nil {
		total += captionHeight
	}

	// Colorize at native size first, then magnify without smoothing.
	colored := image.NewPaletted(d.panel.Rect, color.Palette{d.off, d.on})
	for y := 0; y < d.panel.Rect.Dy(); y++ {
		for x := 0; x < d.panel.Rect.Dx(); x++ {
			if d.panel.BitAt(x, y) {
				colored.SetColorIndex(x, y, 1)
			}
		}
	}
	big := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(big, big.Rect, colored, colored.Rect, draw.Src, nil)

	dc := gg.NewContext(w, total)
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.Clear()
	dc.DrawImage(big, 0, 0)
	if d.caption != nil {
		dc.SetFontFace(d.caption)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawStringAnchored(fmt.Sprintf("frame %d", d.n), 6, float64(h)+captionHeight/2, 0, 0.5)
	}
	return dc
}

var _ display.Drawer = &Dev{}
