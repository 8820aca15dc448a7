// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package console

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
)

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, &Opts{W: 4, H: 2})
	if got, want := d.Bounds(), image.Rect(0, 0, 4, 2); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	if err := d.Draw(image.Rect(1, 1, 2, 2), &image.Uniform{color.White}, image.Point{}); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if n := strings.Count(s, "\n"); n != 2 {
		t.Fatalf("got %d lines, want 2: %q", n, s)
	}
	if n := strings.Count(s, d.on); n != 1 {
		t.Fatalf("got %d lit pixels, want 1: %q", n, s)
	}
	if n := strings.Count(s, d.off); n != 7 {
		t.Fatalf("got %d dark pixels, want 7: %q", n, s)
	}
	if strings.HasPrefix(s, "\033[2A") {
		t.Fatal("first frame must not move the cursor up")
	}

	out.Reset()
	if err := d.Draw(d.Bounds(), &image.Uniform{color.Black}, image.Point{}); err != nil {
		t.Fatal(err)
	}
	s = out.String()
	if !strings.HasPrefix(s, "\033[2A") {
		t.Fatalf("next frame must overwrite the previous one: %q", s)
	}
	if strings.Contains(s, d.on) {
		t.Fatal("frame not cleared")
	}
}

func TestColors(t *testing.T) {
	on := color.NRGBA{0xFF, 0, 0, 0xFF}
	off := color.NRGBA{0, 0, 0xFF, 0xFF}
	d := New(&bytes.Buffer{}, &Opts{W: 1, H: 1, On: on, Off: off, Palette: ansi256.Default})
	if d.on != ansi256.Default.Block(on) || d.off != ansi256.Default.Block(off) {
		t.Fatal("custom colors ignored")
	}
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, &Opts{W: 8, H: 8})
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "\n\033[0m" {
		t.Fatalf("Halt() wrote %q", got)
	}
	if s := d.String(); s != "console.Dev{(8,8)}" {
		t.Fatal(s)
	}
}
