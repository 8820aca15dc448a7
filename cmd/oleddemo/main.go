// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oleddemo shows a greeting, a scrolling counter and a final message on a
// SSD1306 OLED panel connected over I²C.
//
// The panel can be mirrored to the terminal, to web browsers and to PNG files,
// or replaced by them with -sim.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/oleddemo/board"
	"github.com/GermanBionicSystems/oleddemo/console"
	"github.com/GermanBionicSystems/oleddemo/demo"
	"github.com/GermanBionicSystems/oleddemo/demo/demotest"
	"github.com/GermanBionicSystems/oleddemo/mirror"
	"github.com/GermanBionicSystems/oleddemo/snapshot"
	"github.com/GermanBionicSystems/oleddemo/ssd1306"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	addr := i2c.Addr(ssd1306.DefaultOpts.Addr)
	hz := 400 * physic.KiloHertz
	var format mirror.ImageFormat
	busName := flag.String("bus", "", "I²C bus to use")
	flag.Var(&addr, "addr", "I²C address of the panel")
	flag.Var(&hz, "hz", "I²C bus speed")
	w := flag.Int("width", ssd1306.DefaultOpts.W, "panel width")
	h := flag.Int("height", ssd1306.DefaultOpts.H, "panel height")
	sequential := flag.Bool("sequential", false, "sequential COM pins; try it if every other line is missing")
	mirrorV := flag.Bool("mirror-v", false, "flip the panel vertically")
	mirrorH := flag.Bool("mirror-h", false, "flip the panel horizontally")
	contrast := flag.Int("contrast", 0, "panel contrast, 1-255; 0 keeps the default")
	invert := flag.Bool("invert", false, "black text on a white background")
	sim := flag.Bool("sim", false, "no hardware; show the panel on the previews only")
	term := flag.Bool("console", false, "mirror the panel on the terminal")
	httpAddr := flag.String("http", "", "serve the panel as a video stream on this address, e.g. :8010")
	zoom := flag.Int("zoom", 4, "magnification of the HTTP and PNG previews")
	flag.Var(&format, "format", "HTTP preview image format, png or jpeg")
	snapshots := flag.String("snapshots", "", "write every frame as a PNG file in this directory")
	dry := flag.Bool("dry", false, "print the panel calls and holds instead of running the demo")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	log.SetFlags(0)
	if *verbose {
		log.SetFlags(log.Lmicroseconds)
	}
	if *dry {
		return dryRun()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var previews []display.Drawer
	if *term || (*sim && *httpAddr == "" && *snapshots == "") {
		previews = append(previews, console.New(nil, &console.Opts{W: *w, H: *h}))
	}
	if *httpAddr != "" {
		m := mirror.New(&mirror.Opts{W: *w, H: *h, Zoom: *zoom, Format: format})
		srv := &http.Server{Addr: *httpAddr, Handler: m}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("oleddemo: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Printf("oleddemo: %v", err)
			}
		}()
		previews = append(previews, m)
	}
	if *snapshots != "" {
		s, err := snapshot.New(&snapshot.Opts{W: *w, H: *h, Dir: *snapshots, Zoom: *zoom})
		if err != nil {
			return err
		}
		previews = append(previews, s)
	}

	opts := board.Opts{
		Display: &ssd1306.Opts{
			W:                *w,
			H:                *h,
			Sequential:       *sequential,
			MirrorVertical:   *mirrorV,
			MirrorHorizontal: *mirrorH,
			Addr:             uint16(addr),
		},
		Speed:    hz,
		Contrast: display.Contrast(*contrast),
		Invert:   *invert,
		Verbose:  *verbose,
	}

	// Display failures are logged by the board; the demo still runs, on the
	// previews if nothing else.
	var b *board.Board
	if *sim {
		opts.Mirrors = previews[1:]
		b, _ = board.InitSimulated(ctx, previews[0], &opts)
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		bus, err := i2creg.Open(*busName)
		if err != nil {
			return err
		}
		defer bus.Close()
		opts.Mirrors = previews
		b, _ = board.Init(ctx, bus, &opts)
	}
	if b == nil {
		// Interrupted while settling.
		return nil
	}
	defer halt(b)

	if err := demo.New(b.Screen(), nil).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// halt turns the panel off. A failure there usually means the bus stopped
// answering, which is worth a line on the console.
func halt(r conn.Resource) {
	if err := r.Halt(); err != nil {
		log.Printf("oleddemo: %s: %v", r, err)
	}
}

// dryRun plays the demo on a recorder and prints what the panel would do.
func dryRun() error {
	rec := &demotest.Recorder{}
	clock := demotest.NewClock()
	if err := demo.New(rec, &demo.Opts{Clock: clock, SkipIdle: true}).Run(context.Background()); err != nil {
		return err
	}
	out := colorable.NewColorableStdout()
	for _, op := range rec.Ops() {
		fmt.Fprintln(out, op)
	}
	var total time.Duration
	for _, d := range clock.Holds() {
		total += d
	}
	fmt.Fprintf(out, "%d holds, %s in total, then idle\n", len(clock.Holds()), total)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "oleddemo: %s.\n", err)
		os.Exit(1)
	}
}
