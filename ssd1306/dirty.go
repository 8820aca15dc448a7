// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"bytes"
	"image"
)

// dirty returns the smallest band that differs between the panel RAM and
// next. X is in columns, Y is in pages. ok is false when nothing changed.
func (d *Dev) dirty(next []byte) (image.Rectangle, bool) {
	w := d.rect.Dx()
	pages := d.rect.Dy() / 8
	if d.stale {
		d.stale = false
		return image.Rect(0, 0, w, pages), true
	}

	top, bottom := 0, pages
	for ; top < bottom; top++ {
		if !bytes.Equal(d.shown[top*w:(top+1)*w], next[top*w:(top+1)*w]) {
			break
		}
	}
	if top == bottom {
		return image.Rectangle{}, false
	}
	for ; bottom > top+1; bottom-- {
		if !bytes.Equal(d.shown[(bottom-1)*w:bottom*w], next[(bottom-1)*w:bottom*w]) {
			break
		}
	}

	left, right := 0, w
	for ; left < right && d.sameColumn(next, left, top, bottom); left++ {
	}
	for ; right > left+1 && d.sameColumn(next, right-1, top, bottom); right-- {
	}
	return image.Rect(left, top, right, bottom), true
}

func (d *Dev) sameColumn(next []byte, col, top, bottom int) bool {
	w := d.rect.Dx()
	for page := top; page < bottom; page++ {
		if d.shown[page*w+col] != next[page*w+col] {
			return false
		}
	}
	return true
}
