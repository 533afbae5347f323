package menu

import (
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans out snapshot changes to subscribers in this process.
// Dispatch is synchronous and ordered: subscribers see versions in the
// order they were published, and a slow subscriber delays later
// notifications rather than dropping them.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]func(*Snapshot)

	// dispatchMu serializes Publish calls so deliveries stay ordered
	// by version without holding mu during subscriber callbacks.
	dispatchMu sync.Mutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]func(*Snapshot))}
}

// Subscribe registers a callback and returns its handle.
func (b *Broadcaster) Subscribe(fn func(*Snapshot)) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New().String()
	b.subs[id] = fn
	return id
}

// Unsubscribe removes a subscription. Safe to call from inside a
// callback: the current dispatch finishes with the list it copied,
// and later publishes skip the removed subscriber.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish delivers snap to every current subscriber. Each callback
// gets its own clone so no subscriber can mutate another's view.
func (b *Broadcaster) Publish(snap *Snapshot) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	handles := make([]string, 0, len(b.subs))
	callbacks := make([]func(*Snapshot), 0, len(b.subs))
	for id, fn := range b.subs {
		handles = append(handles, id)
		callbacks = append(callbacks, fn)
	}
	b.mu.Unlock()

	for i, fn := range callbacks {
		// Re-check: the subscriber may have been removed by an
		// earlier callback in this same dispatch.
		b.mu.Lock()
		_, alive := b.subs[handles[i]]
		b.mu.Unlock()
		if alive {
			fn(snap.Clone())
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
