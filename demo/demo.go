// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package demo runs the text demo on a panel: a greeting, a scrolling
// counter and a final message that stays on screen.
package demo

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// State is the stage the demo is in.
type State int32

const (
	// Intro shows the greeting.
	Intro State = iota
	// Counting writes the numbered lines.
	Counting
	// Done shows the final message until the context is cancelled.
	Done
)

func (s State) String() string {
	switch s {
	case Intro:
		return "Intro"
	case Counting:
		return "Counting"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Panel is what the demo needs from a display.
//
// UpdateTextLine only changes the framebuffer; Flush sends it. Clear and
// ShowText update the display immediately.
type Panel interface {
	Clear() error
	ShowText(text string, x, y, scale int) error
	UpdateTextLine(text string, x, y, scale, width int) error
	Flush() error
}

// Screen text and placement.
const (
	IntroText = "Iniciando..."
	DoneText  = "Concluido!"

	// Iterations is the number of counter lines, numbered from 0.
	Iterations = 21
	// LineWidth is the width of the band blanked under each line.
	LineWidth = 128

	lineFormat = "Linha de teste N: %d"
	// linesPerScreen is the number of 8 pixel lines on a 64 pixel panel.
	linesPerScreen = 8
	lineHeight     = 8
)

// Holds between the steps.
const (
	StartHold = time.Second
	IntroHold = 2 * time.Second
	LineHold  = 150 * time.Millisecond
	DoneHold  = time.Second
)

// LineText is the counter line for n.
func LineText(n int) string {
	return fmt.Sprintf(lineFormat, n)
}

// LineY is the top row of the counter line for n.
func LineY(n int) int {
	return (n % linesPerScreen) * lineHeight
}

// ScrollsAt reports whether the screen is cleared before drawing line n.
func ScrollsAt(n int) bool {
	return n > 0 && n%linesPerScreen == 0
}

// Opts configures a Runner. The zero value is valid.
type Opts struct {
	// Clock times the holds. Defaults to the real clock.
	Clock clockwork.Clock
	// Logger receives panel errors. Defaults to log.Default().
	Logger *log.Logger
	// SkipIdle makes Run return once the final message is shown.
	SkipIdle bool
}

// Runner drives a Panel through the demo.
type Runner struct {
	panel    Panel
	clock    clockwork.Clock
	log      *log.Logger
	skipIdle bool
	state    atomic.Int32
}

// New returns a Runner for panel.
func New(panel Panel, opts *Opts) *Runner {
	r := &Runner{panel: panel}
	if opts != nil {
		r.clock = opts.Clock
		r.log = opts.Logger
		r.skipIdle = opts.SkipIdle
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.log == nil {
		r.log = log.Default()
	}
	return r
}

// State returns the current stage. It is safe to call concurrently with Run.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Run plays the whole demo, then idles until ctx is done.
//
// Panel errors are logged and skipped. The only error returned is the
// context's.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.hold(ctx, StartHold); err != nil {
		return err
	}

	r.state.Store(int32(Intro))
	r.check(r.panel.ShowText(IntroText, 25, 28, 1))
	if err := r.hold(ctx, IntroHold); err != nil {
		return err
	}
	r.check(r.panel.Clear())

	r.state.Store(int32(Counting))
	buf := make([]byte, 0, 40)
	for i := 0; i < Iterations; i++ {
		buf = fmt.Appendf(buf[:0], lineFormat, i)
		if ScrollsAt(i) {
			r.check(r.panel.Clear())
		}
		r.check(r.panel.UpdateTextLine(string(buf), 0, LineY(i), 1, LineWidth))
		r.check(r.panel.Flush())
		if err := r.hold(ctx, LineHold); err != nil {
			return err
		}
	}

	r.state.Store(int32(Done))
	if err := r.hold(ctx, DoneHold); err != nil {
		return err
	}
	r.check(r.panel.Clear())
	r.check(r.panel.ShowText(DoneText, 10, 20, 2))
	if r.skipIdle {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *Runner) hold(ctx context.Context, d time.Duration) error {
	select {
	case <-r.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) check(err error) {
	if err != nil {
		r.log.Printf("demo: %s: %v", r.State(), err)
	}
}
