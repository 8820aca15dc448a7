// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package board brings up the OLED panel: console, I²C bus and display
// controller, in that order, and hands out a text screen bound to it.
//
// A failing display does not stop the bring-up. The board then drives an
// offline drawer so the caller can run unchanged.
package board

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/GermanBionicSystems/oleddemo/ssd1306"
	"github.com/GermanBionicSystems/oleddemo/ssd1306/image1bit"
	"github.com/GermanBionicSystems/oleddemo/textscreen"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Opts configures the bring-up. The zero value is valid.
type Opts struct {
	// Logger is the console. Defaults to log.Default().
	Logger *log.Logger
	// Clock times the settle delay. Defaults to the real clock.
	Clock clockwork.Clock
	// SettleDelay is the pause after the console starts. Defaults to 1s.
	SettleDelay time.Duration
	// Speed is the I²C clock. Defaults to 400kHz.
	Speed physic.Frequency
	// Display is the panel geometry and wiring. Defaults to
	// ssd1306.DefaultOpts.
	Display *ssd1306.Opts
	// Contrast, when not 0, replaces the controller reset value.
	Contrast display.Contrast
	// Invert shows black text on a white background.
	Invert bool
	// Mirrors receive a copy of every frame sent to the panel.
	Mirrors []display.Drawer
	// Verbose logs driver details.
	Verbose bool
}

// Board is the initialized panel.
type Board struct {
	log    *log.Logger
	dev    display.Drawer
	online bool
	screen *textscreen.Screen
}

// Init configures b and starts the display controller on it.
//
// The returned Board is always usable. The error reports a display startup
// failure, which has already been logged; the panel then stays dark.
func Init(ctx context.Context, b i2c.Bus, opts *Opts) (*Board, error) {
	o := withDefaults(opts)
	if err := settle(ctx, &o); err != nil {
		return nil, err
	}

	o.Logger.Print("Configurando I2C do OLED (I2C1)...")
	configureBus(b, o.Speed, o.Logger)

	o.Logger.Print("Iniciando SSD1306...")
	var panel display.Drawer
	dev, initErr := ssd1306.NewI2C(b, o.Display)
	if initErr != nil {
		o.Logger.Printf("Erro ao inicializar o SSD1306: %v", initErr)
		panel = offline{image.Rect(0, 0, o.Display.W, o.Display.H)}
	} else {
		if o.Verbose {
			o.Logger.Printf("board: using %s", dev)
		}
		tune(dev, &o)
		panel = dev
	}
	return start(panel, initErr == nil, &o), initErr
}

// InitSimulated runs the same bring-up against d, with no bus to configure.
func InitSimulated(ctx context.Context, d display.Drawer, opts *Opts) (*Board, error) {
	o := withDefaults(opts)
	if err := settle(ctx, &o); err != nil {
		return nil, err
	}
	o.Logger.Print("Configurando I2C do OLED (I2C1)...")
	if o.Verbose {
		o.Logger.Printf("board: no bus, simulating %s", d)
	}
	o.Logger.Print("Iniciando SSD1306...")
	return start(d, true, &o), nil
}

func withDefaults(opts *Opts) Opts {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = time.Second
	}
	if o.Speed == 0 {
		o.Speed = 400 * physic.KiloHertz
	}
	if o.Display == nil {
		d := ssd1306.DefaultOpts
		o.Display = &d
	}
	return o
}

func settle(ctx context.Context, o *Opts) error {
	if o.SettleDelay < 0 {
		return nil
	}
	select {
	case <-o.Clock.After(o.SettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// configureBus enables the pull-ups, assigns the pin roles and sets the
// clock. Problems are logged; most hosts preconfigure the pins anyway.
func configureBus(b i2c.Bus, speed physic.Frequency, l *log.Logger) {
	if p, ok := b.(i2c.Pins); ok {
		setupPin(p.SDA(), i2c.SDA, l)
		setupPin(p.SCL(), i2c.SCL, l)
	}
	if err := b.SetSpeed(speed); err != nil {
		l.Printf("board: %s: keeping the current clock, %s failed: %v", b, speed, err)
	}
}

func setupPin(p gpio.PinIO, f pin.Func, l *log.Logger) {
	if p == nil || p == gpio.INVALID {
		l.Printf("board: %s pin is not exposed by the bus", f)
		return
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		l.Printf("board: %s: pull-up failed: %v", p, err)
	}
	if pf, ok := p.(pin.PinFunc); ok {
		if err := pf.SetFunc(f); err != nil {
			l.Printf("board: %s: setting %s failed: %v", p, f, err)
		}
	}
}

func tune(dev *ssd1306.Dev, o *Opts) {
	if o.Contrast != 0 {
		if err := dev.Contrast(o.Contrast); err != nil {
			o.Logger.Printf("board: %v", err)
		}
	}
	if o.Invert {
		if err := dev.Invert(true); err != nil {
			o.Logger.Printf("board: %v", err)
		}
	}
}

func start(panel display.Drawer, online bool, o *Opts) *Board {
	var d display.Drawer = panel
	if len(o.Mirrors) != 0 {
		d = &tee{panel: panel, mirrors: o.Mirrors, log: o.Logger}
	}
	bd := &Board{log: o.Logger, dev: d, online: online, screen: textscreen.New(d)}
	o.Logger.Print("Tela limpa.")
	if err := bd.screen.Clear(); err != nil {
		o.Logger.Printf("board: %v", err)
	}
	return bd
}

func (b *Board) String() string {
	return fmt.Sprintf("board.Board{%s}", b.dev)
}

// Screen returns the text screen bound to the panel and its mirrors.
func (b *Board) Screen() *textscreen.Screen {
	return b.screen
}

// Online reports whether the display controller answered at startup.
func (b *Board) Online() bool {
	return b.online
}

// Halt turns the panel and the mirrors off. The bus is left open.
func (b *Board) Halt() error {
	return b.screen.Halt()
}

// offline stands in for a panel that failed to start.
type offline struct {
	rect image.Rectangle
}

func (o offline) String() string          { return "offline" }
func (o offline) Halt() error             { return nil }
func (o offline) ColorModel() color.Model { return image1bit.BitModel }
func (o offline) Bounds() image.Rectangle { return o.rect }

func (o offline) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	return nil
}

// tee sends frames to the panel, then to every mirror. Only the panel's
// errors are returned.
type tee struct {
	panel   display.Drawer
	mirrors []display.Drawer
	log     *log.Logger
}

func (t *tee) String() string {
	return fmt.Sprintf("%s+%d", t.panel, len(t.mirrors))
}

func (t *tee) Halt() error {
	err := t.panel.Halt()
	for _, m := range t.mirrors {
		if err2 := m.Halt(); err2 != nil {
			t.log.Printf("board: %s: %v", m, err2)
		}
	}
	return err
}

func (t *tee) ColorModel() color.Model { return t.panel.ColorModel() }
func (t *tee) Bounds() image.Rectangle { return t.panel.Bounds() }

func (t *tee) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	err := t.panel.Draw(r, src, sp)
	for _, m := range t.mirrors {
		if err2 := m.Draw(r, src, sp); err2 != nil {
			t.log.Printf("board: %s: %v", m, err2)
		}
	}
	return err
}

var _ display.Drawer = offline{}
var _ display.Drawer = &tee{}
