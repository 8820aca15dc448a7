// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

// Command bytes, see page 28 of the SSD1306 datasheet.
const (
	cmdSetLowColumn       = 0x00
	cmdSetHighColumn      = 0x10
	cmdMemoryMode         = 0x20
	cmdColumnAddr         = 0x21
	cmdPageAddr           = 0x22
	cmdDeactivateScroll   = 0x2E
	cmdSetStartLine       = 0x40
	cmdSetContrast        = 0x81
	cmdChargePump         = 0x8D
	cmdSegRemapNormal     = 0xA0
	cmdSegRemapReversed   = 0xA1
	cmdDisplayAllOnResume = 0xA4
	cmdNormalDisplay      = 0xA6
	cmdInvertDisplay      = 0xA7
	cmdSetMultiplex       = 0xA8
	cmdDCDCSetting        = 0xAD
	cmdDisplayOff         = 0xAE
	cmdDisplayOn          = 0xAF
	cmdPageStart          = 0xB0
	cmdComScanInc         = 0xC0
	cmdComScanDec         = 0xC8
	cmdSetDisplayOffset   = 0xD3
	cmdSetDisplayClockDiv = 0xD5
	cmdSetPrecharge       = 0xD9
	cmdSetComPins         = 0xDA
	cmdSetVcomDetect      = 0xDB
)

// Control bytes prefixing every I²C transaction.
const (
	ctrlCommand = 0x00
	ctrlData    = 0x40
)

// controller is the chip family detected at startup.
type controller string

const (
	ssd1306 controller = "SSD1306"
	sh1106  controller = "SH1106"
	sh1107  controller = "SH1107"
)

// detect maps the low nibble of the status byte to a controller.
//
// Documented values are 0x03 (SSD1306 128x32), 0x06 (SSD1306 128x64), 0x07 or
// 0x0F (SH1107) and 0x08 (SH1106). Anything else is treated as a SSD1306.
func detect(status byte) controller {
	switch status & 0x0F {
	case 0x07, 0x0F:
		return sh1107
	case 0x08:
		return sh1106
	default:
		return ssd1306
	}
}

// columnOffset is the number of unused RAM columns on the left side.
//
// The SH1106 has 132 columns of RAM for a 128 pixels wide panel.
func (c controller) columnOffset() byte {
	if c == sh1106 {
		return 2
	}
	return 0
}

// maxHeight is the largest panel height the controller can multiplex.
func (c controller) maxHeight() int {
	if c == sh1107 {
		return 128
	}
	return 64
}

// initSequence returns the full reset command stream for the controller.
func initSequence(opts *Opts, c controller) []byte {
	if c == sh1107 {
		return []byte{
			cmdDisplayOff,
			cmdSetMultiplex, byte(opts.H - 1),
			cmdMemoryMode,
			cmdPageStart,
			cmdDCDCSetting, 0x81,
			cmdSetDisplayClockDiv, 0x50,
			cmdSetVcomDetect, 0x35,
			cmdSetPrecharge, 0x22,
			cmdDisplayOn,
		}
	}

	comScan := byte(cmdComScanDec)
	if opts.MirrorVertical {
		comScan = cmdComScanInc
	}
	segRemap := byte(cmdSegRemapReversed)
	if opts.MirrorHorizontal {
		segRemap = cmdSegRemapNormal
	}
	// COM pins hardware configuration, page 40.
	comPins := byte(0x02)
	if !opts.Sequential {
		comPins |= 0x10
	}
	if opts.SwapTopBottom {
		comPins |= 0x20
	}

	// Page 64 has the recommended flow.
	return []byte{
		cmdDisplayOff,
		cmdSetDisplayOffset, 0x00,
		cmdSetStartLine,
		segRemap,
		comScan,
		cmdSetComPins, comPins,
		cmdSetContrast, 0xFF,
		cmdDisplayAllOnResume,
		cmdNormalDisplay,
		// Max oscillator frequency; I²C tearing is less visible that way.
		cmdSetDisplayClockDiv, 0xF0,
		cmdChargePump, 0x14,
		cmdSetPrecharge, 0xF1,
		cmdSetVcomDetect, 0x40,
		cmdDeactivateScroll,
		cmdSetMultiplex, byte(opts.H - 1),
		cmdMemoryMode, 0x00,
		cmdColumnAddr, 0, byte(opts.W - 1),
		cmdPageAddr, 0, byte(opts.H/8 - 1),
		cmdDisplayOn,
	}
}

// pageAddress positions the RAM pointer at the start of a page band.
func pageAddress(c controller, page, col int) []byte {
	col += int(c.columnOffset())
	return []byte{
		cmdPageStart | byte(page),
		cmdSetLowColumn | byte(col&0x0F),
		cmdSetHighColumn | byte(col>>4),
	}
}
