// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify is Quill's in-process broadcaster for short-lived
// user-facing status messages. Any component that completes (or fails)
// an operation calls Show; any number of display surfaces subscribe and
// receive the full newest-first list of live messages whenever it
// changes. Messages expire automatically after a display duration, or
// earlier by explicit removal.
package notify

import (
	"sync"
	"time"

	"github.com/quill-blog/quill/lib/clock"
)

// Severity categorizes a message for visual treatment.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultDuration is how long a message stays visible when the caller
// does not specify a duration.
const DefaultDuration = 3 * time.Second

// Message is a single live notification.
type Message struct {
	// ID uniquely identifies the message for removal. IDs are
	// assigned from a monotonic counter, so two messages created in
	// the same instant never collide.
	ID int64

	// Text is the user-facing message body.
	Text string

	// Severity selects the visual treatment (success, error, info).
	Severity Severity
}

// Listener receives the full newest-first list of live messages each
// time the list changes. The slice is a snapshot; the broadcaster never
// mutates it after delivery.
type Listener func(messages []Message)

// Broadcaster delivers transient status messages to subscribers without
// coupling producers to consumers. Show and Remove notify all current
// subscribers synchronously; the scheduled expiry is the only
// asynchronous boundary.
//
// A Broadcaster is safe for concurrent use: expiry timers fire on their
// own goroutine, and in the TUI, producers run on bubbletea command
// goroutines.
type Broadcaster struct {
	clock clock.Clock

	mu        sync.Mutex
	messages  []Message
	listeners map[int64]Listener
	nextID    int64
}

// NewBroadcaster creates a Broadcaster using the given clock for expiry
// scheduling. Pass clock.Real() outside of tests.
func NewBroadcaster(clk clock.Clock) *Broadcaster {
	return &Broadcaster{
		clock:     clk,
		listeners: make(map[int64]Listener),
	}
}

// Subscribe registers a listener and returns a disposer that removes
// it. The listener is not called with the current state at subscribe
// time; it sees the next change. Calling the disposer more than once is
// a no-op. A listener that panics is not isolated from the others —
// guard inside the listener if that matters.
func (b *Broadcaster) Subscribe(listener Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = listener

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Show creates a message, prepends it to the live list (newest-first),
// notifies all subscribers, and schedules removal after duration. A
// duration <= 0 uses DefaultDuration. Returns the message ID for
// explicit removal.
func (b *Broadcaster) Show(text string, severity Severity, duration time.Duration) int64 {
	if duration <= 0 {
		duration = DefaultDuration
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	message := Message{ID: id, Text: text, Severity: severity}
	b.messages = append([]Message{message}, b.messages...)
	listeners, snapshot := b.snapshotLocked()
	b.mu.Unlock()

	deliver(listeners, snapshot)

	b.clock.AfterFunc(duration, func() {
		b.Remove(id)
	})

	return id
}

// Success is shorthand for Show with SeveritySuccess and the default
// duration.
func (b *Broadcaster) Success(text string) int64 {
	return b.Show(text, SeveritySuccess, DefaultDuration)
}

// Error is shorthand for Show with SeverityError and the default
// duration.
func (b *Broadcaster) Error(text string) int64 {
	return b.Show(text, SeverityError, DefaultDuration)
}

// Info is shorthand for Show with SeverityInfo and the default
// duration.
func (b *Broadcaster) Info(text string) int64 {
	return b.Show(text, SeverityInfo, DefaultDuration)
}

// Remove deletes the message with the given ID if present and notifies
// subscribers. Removing an unknown ID still notifies with the unchanged
// list — subscribers treat every callback as a full snapshot, so this
// is harmless and keeps Remove idempotent.
func (b *Broadcaster) Remove(id int64) {
	b.mu.Lock()
	filtered := b.messages[:0:0]
	for _, message := range b.messages {
		if message.ID != id {
			filtered = append(filtered, message)
		}
	}
	b.messages = filtered
	listeners, snapshot := b.snapshotLocked()
	b.mu.Unlock()

	deliver(listeners, snapshot)
}

// Messages returns a snapshot of the live list, newest first.
func (b *Broadcaster) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, snapshot := b.snapshotLocked()
	return snapshot
}

// snapshotLocked copies the listener set and message list so delivery
// can happen outside the lock. Must be called with b.mu held.
func (b *Broadcaster) snapshotLocked() ([]Listener, []Message) {
	listeners := make([]Listener, 0, len(b.listeners))
	for _, listener := range b.listeners {
		listeners = append(listeners, listener)
	}
	snapshot := make([]Message, len(b.messages))
	copy(snapshot, b.messages)
	return listeners, snapshot
}

func deliver(listeners []Listener, snapshot []Message) {
	for _, listener := range listeners {
		listener(snapshot)
	}
}
