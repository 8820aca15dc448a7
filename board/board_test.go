// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// funcPin is a gpiotest.Pin that accepts function changes and remembers the
// calls made to it.
type funcPin struct {
	gpiotest.Pin
	calls []string
}

func (p *funcPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.calls = append(p.calls, "In("+pull.String()+")")
	return p.Pin.In(pull, edge)
}

func (p *funcPin) SetFunc(f pin.Func) error {
	p.calls = append(p.calls, "SetFunc("+string(f)+")")
	p.Fn = string(f)
	return nil
}

// testBus records writes and exposes its pins.
type testBus struct {
	i2ctest.Record
	sda, scl *funcPin
	speed    physic.Frequency
	speedErr error
}

func (b *testBus) SetSpeed(f physic.Frequency) error {
	b.speed = f
	return b.speedErr
}

func (b *testBus) SDA() gpio.PinIO { return b.sda }
func (b *testBus) SCL() gpio.PinIO { return b.scl }

func newTestBus() *testBus {
	return &testBus{
		sda: &funcPin{Pin: gpiotest.Pin{N: "GPIO14", Num: 14}},
		scl: &funcPin{Pin: gpiotest.Pin{N: "GPIO15", Num: 15}},
	}
}

// consoleLines returns the logged lines that are not driver details.
func consoleLines(buf *bytes.Buffer) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.HasPrefix(l, "board: ") {
			out = append(out, l)
		}
	}
	return out
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	bus := newTestBus()
	b, err := Init(context.Background(), bus, &Opts{Logger: log.New(&buf, "", 0), SettleDelay: -1})
	if err != nil {
		t.Fatal(err)
	}
	if !b.Online() {
		t.Fatal("expected the panel to be online")
	}

	want := []string{
		"Configurando I2C do OLED (I2C1)...",
		"Iniciando SSD1306...",
		"Tela limpa.",
	}
	if diff := cmp.Diff(strings.Split(strings.TrimSpace(buf.String()), "\n"), want); diff != "" {
		t.Fatalf("console difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(bus.sda.calls, []string{"In(PullUp)", "SetFunc(I2C_SDA)"}); diff != "" {
		t.Errorf("SDA difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(bus.scl.calls, []string{"In(PullUp)", "SetFunc(I2C_SCL)"}); diff != "" {
		t.Errorf("SCL difference (-got +want):\n%s", diff)
	}
	if bus.sda.P != gpio.PullUp || bus.scl.P != gpio.PullUp {
		t.Error("pull-ups not enabled")
	}
	if bus.speed != 400*physic.KiloHertz {
		t.Errorf("speed = %s", bus.speed)
	}

	// The init sequence, then the cleared frame: 8 pages of address + data.
	if n := len(bus.Ops); n != 1+2*8 {
		t.Fatalf("got %d transactions", n)
	}
	for _, op := range bus.Ops {
		if op.Addr != 0x3C {
			t.Fatalf("unexpected address %#x", op.Addr)
		}
	}
	last := bus.Ops[len(bus.Ops)-1].W
	if last[0] != 0x40 || len(last) != 129 || bytes.Count(last[1:], []byte{0}) != 128 {
		t.Fatalf("last page is not blank: %#v", last)
	}
	if b.Screen().Image().Count() != 0 {
		t.Fatal("framebuffer not cleared")
	}
}

func TestInitDisplayFailure(t *testing.T) {
	var buf bytes.Buffer
	bus := &i2ctest.Playback{DontPanic: true}
	b, err := Init(context.Background(), bus, &Opts{Logger: log.New(&buf, "", 0), SettleDelay: -1})
	if err == nil {
		t.Fatal("expected a startup error")
	}
	if b == nil || b.Online() {
		t.Fatal("expected an offline board")
	}
	lines := consoleLines(&buf)
	if len(lines) != 4 {
		t.Fatalf("unexpected console:\n%s", buf.String())
	}
	if lines[0] != "Configurando I2C do OLED (I2C1)..." || lines[1] != "Iniciando SSD1306..." || lines[3] != "Tela limpa." {
		t.Fatalf("unexpected console:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[2], "Erro ao inicializar o SSD1306") {
		t.Fatalf("failure not reported: %q", lines[2])
	}
	if !strings.Contains(buf.String(), "board: I2C_SDA pin is not exposed by the bus") {
		t.Fatalf("missing pin warning:\n%s", buf.String())
	}

	// The screen keeps working on the offline drawer.
	s := b.Screen()
	if err := s.ShowText("Iniciando...", 25, 28, 1); err != nil {
		t.Fatal(err)
	}
	if got, want := s.Bounds(), image.Rect(0, 0, 128, 64); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	if err := b.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestInitBusWarnings(t *testing.T) {
	var buf bytes.Buffer
	bus := newTestBus()
	bus.speedErr = errors.New("fixed clock")
	if _, err := Init(context.Background(), bus, &Opts{Logger: log.New(&buf, "", 0), SettleDelay: -1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "keeping the current clock") {
		t.Fatalf("missing speed warning:\n%s", buf.String())
	}
	if got := len(consoleLines(&buf)); got != 3 {
		t.Fatalf("got %d console lines", got)
	}
}

func TestInitTuning(t *testing.T) {
	bus := newTestBus()
	opts := Opts{
		Logger:      log.New(&bytes.Buffer{}, "", 0),
		SettleDelay: -1,
		Contrast:    0x20,
		Invert:      true,
	}
	if _, err := Init(context.Background(), bus, &opts); err != nil {
		t.Fatal(err)
	}
	want := []i2ctest.IO{
		{Addr: 0x3C, W: []byte{0x00, 0x81, 0x20}},
		{Addr: 0x3C, W: []byte{0x00, 0xA7}},
	}
	if diff := cmp.Diff(bus.Ops[1:3], want); diff != "" {
		t.Fatalf("Ops difference (-got +want):\n%s", diff)
	}
}

func TestInitSettle(t *testing.T) {
	var buf bytes.Buffer
	clock := clockwork.NewFakeClock()
	done := make(chan error)
	go func() {
		_, err := Init(context.Background(), newTestBus(), &Opts{Logger: log.New(&buf, "", 0), Clock: clock})
		done <- err
	}()
	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("Init returned before the settle delay")
	default:
	}
	clock.Advance(time.Second)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Configurando I2C do OLED (I2C1)...") {
		t.Fatalf("unexpected console:\n%s", buf.String())
	}
}

func TestInitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, err := Init(ctx, newTestBus(), &Opts{Logger: log.New(&bytes.Buffer{}, "", 0), Clock: clockwork.NewFakeClock()})
	if !errors.Is(err, context.Canceled) || b != nil {
		t.Fatalf("Init() = %v, %v", b, err)
	}
}

// countingDrawer counts the frames pushed to a displaytest.Drawer.
type countingDrawer struct {
	displaytest.Drawer
	frames  int
	err     error
	halted  bool
	haltErr error
}

func (c *countingDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	c.frames++
	if c.err != nil {
		return c.err
	}
	return c.Drawer.Draw(r, src, sp)
}

func (c *countingDrawer) Halt() error {
	c.halted = true
	return c.haltErr
}

func newDrawer() *countingDrawer {
	return &countingDrawer{Drawer: displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 128, 64))}}
}

func TestInitSimulatedMirrors(t *testing.T) {
	var buf bytes.Buffer
	panel, good, bad := newDrawer(), newDrawer(), newDrawer()
	bad.err = errors.New("unplugged")
	b, err := InitSimulated(context.Background(), panel, &Opts{
		Logger:      log.New(&buf, "", 0),
		SettleDelay: -1,
		Mirrors:     []display.Drawer{good, bad},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !b.Online() {
		t.Fatal("simulated board must be online")
	}
	if err := b.Screen().ShowText("Concluido!", 10, 20, 2); err != nil {
		t.Fatal(err)
	}
	for name, d := range map[string]*countingDrawer{"panel": panel, "good": good, "bad": bad} {
		if d.frames != 2 {
			t.Errorf("%s got %d frames, want 2", name, d.frames)
		}
	}
	if !strings.Contains(buf.String(), "unplugged") {
		t.Errorf("mirror error not logged:\n%s", buf.String())
	}
	if diff := cmp.Diff(consoleLines(&buf), []string{
		"Configurando I2C do OLED (I2C1)...",
		"Iniciando SSD1306...",
		"Tela limpa.",
	}); diff != "" {
		t.Errorf("console difference (-got +want):\n%s", diff)
	}
	if err := b.Halt(); err != nil {
		t.Fatal(err)
	}
	if !panel.halted || !good.halted || !bad.halted {
		t.Fatal("Halt() not propagated")
	}
}

func TestHaltReportsPanelError(t *testing.T) {
	var buf bytes.Buffer
	panel, m := newDrawer(), newDrawer()
	panel.haltErr = errors.New("nack")
	m.haltErr = errors.New("gone")
	b, err := InitSimulated(context.Background(), panel, &Opts{
		Logger:      log.New(&buf, "", 0),
		SettleDelay: -1,
		Mirrors:     []display.Drawer{m},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Halt(); err == nil || err.Error() != "nack" {
		t.Fatalf("Halt() = %v", err)
	}
	if !m.halted {
		t.Fatal("mirror not halted")
	}
	if !strings.Contains(buf.String(), "gone") {
		t.Fatalf("mirror error not logged:\n%s", buf.String())
	}
}
