// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package demotest is meant to be used to test code using package demo.
package demotest

import (
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/oleddemo/demo"
	"github.com/jonboulle/clockwork"
)

// Kind is the panel method an Op records.
type Kind string

// Panel methods.
const (
	Clear          Kind = "Clear"
	ShowText       Kind = "ShowText"
	UpdateTextLine Kind = "UpdateTextLine"
	Flush          Kind = "Flush"
)

// Op is one recorded panel call. Unused fields are zero.
type Op struct {
	Kind  Kind
	Text  string
	X, Y  int
	Scale int
	Width int
}

func (o Op) String() string {
	switch o.Kind {
	case ShowText:
		return fmt.Sprintf("ShowText(%q, %d, %d, %d)", o.Text, o.X, o.Y, o.Scale)
	case UpdateTextLine:
		return fmt.Sprintf("UpdateTextLine(%q, %d, %d, %d, %d)", o.Text, o.X, o.Y, o.Scale, o.Width)
	default:
		return string(o.Kind) + "()"
	}
}

// Recorder implements demo.Panel and records every call.
type Recorder struct {
	// Next, when set, receives every call after it is recorded; its error is
	// returned.
	Next demo.Panel
	// Err is returned by every call when Next is nil.
	Err error

	mu  sync.Mutex
	ops []Op
}

// Ops returns a copy of the calls recorded so far.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Clear implements demo.Panel.
func (r *Recorder) Clear() error {
	r.record(Op{Kind: Clear})
	if r.Next != nil {
		return r.Next.Clear()
	}
	return r.Err
}

// ShowText implements demo.Panel.
func (r *Recorder) ShowText(text string, x, y, scale int) error {
	r.record(Op{Kind: ShowText, Text: text, X: x, Y: y, Scale: scale})
	if r.Next != nil {
		return r.Next.ShowText(text, x, y, scale)
	}
	return r.Err
}

// UpdateTextLine implements demo.Panel.
func (r *Recorder) UpdateTextLine(text string, x, y, scale, width int) error {
	r.record(Op{Kind: UpdateTextLine, Text: text, X: x, Y: y, Scale: scale, Width: width})
	if r.Next != nil {
		return r.Next.UpdateTextLine(text, x, y, scale, width)
	}
	return r.Err
}

// Flush implements demo.Panel.
func (r *Recorder) Flush() error {
	r.record(Op{Kind: Flush})
	if r.Next != nil {
		return r.Next.Flush()
	}
	return r.Err
}

func (r *Recorder) record(o Op) {
	r.mu.Lock()
	r.ops = append(r.ops, o)
	r.mu.Unlock()
}

// Clock is a fake clock that never blocks: each After or Sleep records the
// requested hold and advances time by it.
type Clock struct {
	clockwork.FakeClock

	mu    sync.Mutex
	holds []time.Duration
}

// NewClock returns a Clock starting at the current time.
func NewClock() *Clock {
	return &Clock{FakeClock: clockwork.NewFakeClock()}
}

// After records d, advances the clock and returns a ready channel.
func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.Sleep(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// Sleep records d and advances the clock without blocking.
func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.holds = append(c.holds, d)
	c.mu.Unlock()
	c.Advance(d)
}

// Holds returns a copy of the holds requested so far.
func (c *Clock) Holds() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.holds...)
}

var _ demo.Panel = &Recorder{}
var _ clockwork.Clock = &Clock{}
