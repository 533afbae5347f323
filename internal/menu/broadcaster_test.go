package menu

import "testing"

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	var a, c int
	b.Subscribe(func(*Snapshot) { a++ })
	b.Subscribe(func(*Snapshot) { c++ })

	b.Publish(DefaultSnapshot())

	if a != 1 || c != 1 {
		t.Fatalf("expected one delivery each, got a=%d c=%d", a, c)
	}
	if b.SubscriberCount() != 2 {
		t.Fatalf("subscriber count = %d, want 2", b.SubscriberCount())
	}
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	var n int
	handle := b.Subscribe(func(*Snapshot) { n++ })
	b.Unsubscribe(handle)

	b.Publish(DefaultSnapshot())

	if n != 0 {
		t.Fatalf("unsubscribed callback was invoked %d times", n)
	}
}

// Unsubscribing from inside a callback must not corrupt the dispatch
// that is in flight.
func TestBroadcasterUnsubscribeDuringCallback(t *testing.T) {
	b := NewBroadcaster()

	var handles []string
	var calls int
	for i := 0; i < 3; i++ {
		h := b.Subscribe(func(*Snapshot) {
			calls++
			for _, other := range handles {
				b.Unsubscribe(other)
			}
		})
		handles = append(handles, h)
	}

	b.Publish(DefaultSnapshot())

	// The first callback to run removes everyone, including itself;
	// the remaining two are skipped.
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if b.SubscriberCount() != 0 {
		t.Fatalf("subscriber count = %d, want 0", b.SubscriberCount())
	}

	// A later publish reaches nobody and must not panic.
	b.Publish(DefaultSnapshot())
	if calls != 1 {
		t.Fatalf("removed subscribers were invoked again: %d calls", calls)
	}
}

func TestBroadcasterHandsOutClones(t *testing.T) {
	b := NewBroadcaster()

	var seen *Snapshot
	b.Subscribe(func(s *Snapshot) { seen = s })

	orig := DefaultSnapshot()
	b.Publish(orig)

	seen.Items[0].Name = "Mutated"
	if orig.Items[0].Name == "Mutated" {
		t.Fatal("subscriber mutation reached the published snapshot")
	}
}
