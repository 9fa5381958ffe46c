// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"testing"
	"time"

	"github.com/quill-blog/quill/lib/clock"
)

func testBroadcaster() (*Broadcaster, *clock.FakeClock) {
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewBroadcaster(fake), fake
}

func messageTexts(messages []Message) []string {
	texts := make([]string, len(messages))
	for i, message := range messages {
		texts[i] = message.Text
	}
	return texts
}

func TestShowOrdersNewestFirst(t *testing.T) {
	broadcaster, _ := testBroadcaster()

	broadcaster.Show("first", SeverityInfo, 0)
	broadcaster.Show("second", SeveritySuccess, 0)
	broadcaster.Show("third", SeverityError, 0)

	got := messageTexts(broadcaster.Messages())
	want := []string{"third", "second", "first"}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestShowNotifiesSubscribersSynchronously(t *testing.T) {
	broadcaster, _ := testBroadcaster()

	var delivered [][]Message
	broadcaster.Subscribe(func(messages []Message) {
		delivered = append(delivered, messages)
	})

	broadcaster.Show("hello", SeverityInfo, 0)

	if len(delivered) != 1 {
		t.Fatalf("listener called %d times, want 1", len(delivered))
	}
	if len(delivered[0]) != 1 || delivered[0][0].Text != "hello" {
		t.Errorf("delivered = %v, want single 'hello' message", delivered[0])
	}
}

func TestMessagesExpireAfterDuration(t *testing.T) {
	broadcaster, fake := testBroadcaster()

	broadcaster.Show("short", SeverityInfo, 2*time.Second)
	broadcaster.Show("long", SeverityInfo, 10*time.Second)

	fake.Advance(2 * time.Second)
	got := messageTexts(broadcaster.Messages())
	if len(got) != 1 || got[0] != "long" {
		t.Fatalf("after 2s: messages = %v, want [long]", got)
	}

	fake.Advance(8 * time.Second)
	if len(broadcaster.Messages()) != 0 {
		t.Errorf("after 10s: messages = %v, want empty", broadcaster.Messages())
	}
}

func TestZeroDurationUsesDefault(t *testing.T) {
	broadcaster, fake := testBroadcaster()

	broadcaster.Show("default", SeverityInfo, 0)

	fake.Advance(DefaultDuration - time.Millisecond)
	if len(broadcaster.Messages()) != 1 {
		t.Fatal("message expired before the default duration")
	}

	fake.Advance(time.Millisecond)
	if len(broadcaster.Messages()) != 0 {
		t.Error("message did not expire at the default duration")
	}
}

func TestRemoveUnknownIDNotifiesWithUnchangedList(t *testing.T) {
	broadcaster, _ := testBroadcaster()
	broadcaster.Show("keep", SeverityInfo, 0)

	calls := 0
	broadcaster.Subscribe(func(messages []Message) {
		calls++
		if len(messages) != 1 || messages[0].Text != "keep" {
			t.Errorf("listener saw %v, want [keep]", messageTexts(messages))
		}
	})

	broadcaster.Remove(9999)

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
	if len(broadcaster.Messages()) != 1 {
		t.Errorf("messages = %v, want unchanged single message", broadcaster.Messages())
	}
}

func TestExplicitRemove(t *testing.T) {
	broadcaster, _ := testBroadcaster()

	id := broadcaster.Show("dismiss me", SeverityError, 0)
	broadcaster.Show("stay", SeverityInfo, 0)

	broadcaster.Remove(id)

	got := messageTexts(broadcaster.Messages())
	if len(got) != 1 || got[0] != "stay" {
		t.Errorf("messages = %v, want [stay]", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	broadcaster, _ := testBroadcaster()

	calls := 0
	dispose := broadcaster.Subscribe(func([]Message) { calls++ })

	broadcaster.Show("one", SeverityInfo, 0)
	dispose()
	broadcaster.Show("two", SeverityInfo, 0)

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}

	// A second dispose call is a no-op.
	dispose()
}

func TestMultipleSubscribers(t *testing.T) {
	broadcaster, _ := testBroadcaster()

	first, second := 0, 0
	broadcaster.Subscribe(func([]Message) { first++ })
	broadcaster.Subscribe(func([]Message) { second++ })

	broadcaster.Show("fan out", SeverityInfo, 0)

	if first != 1 || second != 1 {
		t.Errorf("listener calls = (%d, %d), want (1, 1)", first, second)
	}
}

func TestMonotonicIDs(t *testing.T) {
	broadcaster, _ := testBroadcaster()

	a := broadcaster.Show("a", SeverityInfo, 0)
	b := broadcaster.Show("b", SeverityInfo, 0)
	if b <= a {
		t.Errorf("IDs not monotonic: %d then %d", a, b)
	}
}
