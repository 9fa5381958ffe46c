// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowStandsStill(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if !fake.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", fake.Now(), start)
	}

	fake.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if !fake.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", fake.Now(), want)
	}
}

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	fired := 0
	fake.AfterFunc(3*time.Second, func() { fired++ })

	fake.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatal("callback fired before deadline")
	}

	fake.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	// Further advances never re-fire a one-shot callback.
	fake.Advance(10 * time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d after extra advance, want 1", fired)
	}
}

func TestFakeAfterFuncZeroDurationRunsImmediately(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	fired := false
	fake.AfterFunc(0, func() { fired = true })
	if !fired {
		t.Error("zero-duration callback did not run synchronously")
	}
}

func TestFakeAfterFuncFiresInDeadlineOrder(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	var order []string
	fake.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	fake.AfterFunc(1*time.Second, func() { order = append(order, "first") })
	fake.AfterFunc(3*time.Second, func() { order = append(order, "third") })

	fake.Advance(5 * time.Second)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("fired %d callbacks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestFakeTimerStop(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	fired := false
	timer := fake.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop() = false for an active timer")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}

	fake.Advance(5 * time.Second)
	if fired {
		t.Error("stopped timer still fired")
	}
}

func TestFakePendingCount(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if fake.PendingCount() != 0 {
		t.Fatalf("PendingCount = %d, want 0", fake.PendingCount())
	}

	fake.AfterFunc(time.Second, func() {})
	timer := fake.AfterFunc(2*time.Second, func() {})
	if fake.PendingCount() != 2 {
		t.Fatalf("PendingCount = %d, want 2", fake.PendingCount())
	}

	timer.Stop()
	if fake.PendingCount() != 1 {
		t.Fatalf("PendingCount after Stop = %d, want 1", fake.PendingCount())
	}

	fake.Advance(time.Second)
	if fake.PendingCount() != 0 {
		t.Fatalf("PendingCount after Advance = %d, want 0", fake.PendingCount())
	}
}
