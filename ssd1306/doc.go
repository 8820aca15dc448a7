// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 drives a small monochrome OLED panel managed by a SSD1306,
// SH1106 or SH1107 controller over I²C.
//
// The controller variant is read from the status byte at startup and the init
// sequence is chosen accordingly.
//
// Frames are pushed with differential updates: only the smallest band of
// pages and columns that changed since the previous frame is sent. On a
// 400kHz bus a full 128x64 frame takes about 25ms, a single text line about
// 3ms.
//
// The panel keeps showing the last frame until the next Draw() or Write();
// nothing is sent implicitly.
//
// # Wiring
//
// Connect SDA and SCL to the host I²C bus. Most breakout boards already carry
// pull-up resistors; hosts that expose the bus pins through i2c.Pins get the
// internal pull-ups enabled by package board as well.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
//
// https://cdn.velleman.eu/downloads/29/infosheets/sh1106_datasheet.pdf
//
// https://www.displayfuture.com/Display/datasheet/controller/SH1107.pdf
package ssd1306
