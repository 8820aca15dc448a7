// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oleddemo is a container for the SSD1306 text demo.
//
// board brings the panel up over I²C, demo plays the sequence on it and
// cmd/oleddemo wires both to the host. ssd1306, textscreen and font5x8 do the
// drawing; console, mirror and snapshot preview it without hardware.
package oleddemo
