// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations for testability. Production
// code injects Real(); tests inject Fake() and advance it explicitly.
package clock

import "time"

// Clock is the time surface used by Quill components that schedule
// work. Anything that would call time.Now or time.AfterFunc directly
// takes a Clock instead, so tests control expiry deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for duration d, then calls f in its own
	// goroutine (real) or synchronously during Advance (fake).
	// Returns a Timer whose Stop cancels the pending call. If d <= 0,
	// f runs immediately.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer represents a scheduled AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. Returns true if the call stops
// the timer, false if it has already fired or been stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }
