package menu

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL matches the 30s read cache the menu site always used.
	DefaultCacheTTL = 30 * time.Second

	// DefaultPollInterval bounds how stale another device's write can be.
	DefaultPollInterval = 5 * time.Second
)

// Patch is a partial item update. Nil fields are left unchanged.
type Patch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Featured    *bool    `json:"featured"`
}

// Store is the single authoritative access point for menu state.
//
// It owns the in-memory snapshot, mediates every read and write,
// stamps monotonic versions, and delegates durability to a local
// Repository (always present, the write-ahead leg) plus an optional
// shared one. Changes fan out through a Broadcaster; external writes
// are picked up by polling and, where the local repository supports
// it, a storage watch.
type Store struct {
	local  Repository
	remote Repository
	bus    *Broadcaster

	cacheTTL     time.Duration
	pollInterval time.Duration

	mu            sync.Mutex
	snap          *Snapshot
	cacheUntil    time.Time
	lastDelivered int64
	initialized   bool

	// pubMu serializes bus dispatch; busDelivered (guarded by pubMu)
	// coalesces overlapping deliveries so subscribers only ever see
	// versions moving forward.
	pubMu        sync.Mutex
	busDelivered int64

	cancel context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithCacheTTL sets how long a read is served from cache before the
// repository is consulted again.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Store) { s.cacheTTL = d }
}

// WithPollInterval sets how often the repository is polled for writes
// made by other processes.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.pollInterval = d }
}

// NewStore builds a Store over a local repository and an optional
// shared one (nil when single-device). Call Initialize before use and
// Dispose when done.
func NewStore(local Repository, remote Repository, opts ...Option) *Store {
	s := &Store{
		local:        local,
		remote:       remote,
		bus:          NewBroadcaster(),
		cacheTTL:     DefaultCacheTTL,
		pollInterval: DefaultPollInterval,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize loads the durable snapshot, starts the background refresh
// loops, and returns the snapshot. Calling it again is a no-op that
// returns the current snapshot.
func (s *Store) Initialize(ctx context.Context) *Snapshot {
	s.mu.Lock()
	if s.initialized {
		snap := s.snap.Clone()
		s.mu.Unlock()
		return snap
	}

	s.snap = s.loadLocked(ctx)
	s.lastDelivered = s.snap.Version
	s.cacheUntil = time.Now().Add(s.cacheTTL)
	s.initialized = true
	snap := s.snap.Clone()
	s.mu.Unlock()

	bg, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.pollLoop(bg)
	// The local repository is shared by every process on this device;
	// watching it delivers same-device writes without a poll delay.
	if w, ok := s.local.(Watcher); ok {
		go s.watchLoop(bg, w)
	}

	return snap
}

// Dispose stops the background loops. Safe to call more than once.
func (s *Store) Dispose() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Subscribe registers a callback invoked with each new snapshot,
// whether the change came from a local save or another process.
func (s *Store) Subscribe(fn func(*Snapshot)) string {
	return s.bus.Subscribe(fn)
}

// Unsubscribe removes a subscription by handle.
func (s *Store) Unsubscribe(handle string) {
	s.bus.Unsubscribe(handle)
}

// GetSnapshot returns the current menu. Served from cache while fresh;
// otherwise reloaded from the repository. Never fails: on any backend
// error the previous snapshot (or the default catalog) is returned.
func (s *Store) GetSnapshot(ctx context.Context) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap != nil && time.Now().Before(s.cacheUntil) {
		return s.snap.Clone()
	}

	fresh := s.loadLocked(ctx)
	// An external writer may have advanced the version past ours.
	if s.snap == nil || fresh.Version >= s.snap.Version {
		s.snap = fresh
	}
	s.cacheUntil = time.Now().Add(s.cacheTTL)
	return s.snap.Clone()
}

// Save replaces the full item list, stamps the next version, persists
// it local-first, and notifies subscribers. The result distinguishes
// "saved locally only" from "fully synced".
func (s *Store) Save(ctx context.Context, items []MenuItem) SaveResult {
	s.mu.Lock()

	if s.snap == nil {
		s.snap = s.loadLocked(ctx)
		s.lastDelivered = s.snap.Version
	}

	next := &Snapshot{
		LastUpdated: time.Now().UTC(),
		Version:     s.snap.Version + 1,
		Categories:  append([]Category(nil), s.snap.Categories...),
		Items:       append([]MenuItem(nil), items...),
	}
	next.Normalize()

	localErr := s.local.Save(ctx, next)
	var remoteErr error
	if s.remote != nil {
		remoteErr = s.remote.Save(ctx, next)
	}

	committed := localErr == nil || (s.remote != nil && remoteErr == nil)
	if !committed {
		s.mu.Unlock()
		log.Printf("menu: save failed: %v", localErr)
		return SaveResult{
			Success: false,
			Synced:  false,
			Message: fmt.Sprintf("Failed to save menu: %v", localErr),
		}
	}

	// Write-through: readers observe the new version immediately.
	s.snap = next
	s.cacheUntil = time.Now().Add(s.cacheTTL)

	res := SaveResult{Success: true, Synced: true, Message: "Menu saved"}
	switch {
	case s.remote != nil && remoteErr != nil:
		res.Synced = false
		res.Message = fmt.Sprintf("Menu saved locally, remote sync failed: %v", remoteErr)
		log.Printf("menu: remote save failed: %v", remoteErr)
	case localErr != nil:
		res.Message = fmt.Sprintf("Menu synced remotely, local save failed: %v", localErr)
		log.Printf("menu: local save failed: %v", localErr)
	}

	s.deliverLocked(next)
	return res
}

// AddItem appends one item and saves. A zero or colliding id is
// reassigned from the current clock, bumped until unique.
func (s *Store) AddItem(ctx context.Context, item MenuItem) (MenuItem, SaveResult) {
	snap := s.GetSnapshot(ctx)

	used := make(map[int64]bool, len(snap.Items))
	for _, it := range snap.Items {
		used[it.ID] = true
	}
	if item.ID == 0 || used[item.ID] {
		id := time.Now().UnixMilli()
		for used[id] {
			id++
		}
		item.ID = id
	}
	if item.Image == "" {
		item.Image = PlaceholderImage
	}

	res := s.Save(ctx, append(snap.Items, item))
	return item, res
}

// UpdateItem applies a partial update to one item and saves.
// Returns ErrNotFound when the id is unknown.
func (s *Store) UpdateItem(ctx context.Context, id int64, patch Patch) (SaveResult, error) {
	snap := s.GetSnapshot(ctx)

	idx := -1
	for i := range snap.Items {
		if snap.Items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SaveResult{Success: false, Message: "item not found"}, ErrNotFound
	}

	it := &snap.Items[idx]
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Price != nil {
		it.Price = *patch.Price
	}
	if patch.Category != nil {
		it.Category = *patch.Category
	}
	if patch.Image != nil {
		it.Image = *patch.Image
	}
	if patch.Featured != nil {
		it.Featured = *patch.Featured
	}

	return s.Save(ctx, snap.Items), nil
}

// DeleteItem removes one item and saves. Deleting an unknown id is a
// successful no-op: the snapshot and its version are left untouched.
func (s *Store) DeleteItem(ctx context.Context, id int64) SaveResult {
	snap := s.GetSnapshot(ctx)

	kept := snap.Items[:0:0]
	for _, it := range snap.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(snap.Items) {
		return SaveResult{Success: true, Synced: true, Message: "Item already removed"}
	}

	return s.Save(ctx, kept)
}

// loadLocked reads the freshest snapshot available: shared repository
// first, then local, then the previous in-memory snapshot, then the
// default catalog. It never returns nil and never propagates an error;
// failures are logged and absorbed here, at the persistence boundary.
func (s *Store) loadLocked(ctx context.Context) *Snapshot {
	if s.remote != nil {
		snap, err := s.remote.Load(ctx)
		if err == nil {
			// Keep the local write-ahead copy in step with the
			// shared truth, so offline reads stay current.
			if s.snap == nil || snap.Version > s.snap.Version {
				if lerr := s.local.Save(ctx, snap); lerr != nil {
					log.Printf("menu: caching remote snapshot locally failed: %v", lerr)
				}
			}
			return snap
		}
		log.Printf("menu: remote load failed, falling back: %v", err)
	}

	snap, err := s.local.Load(ctx)
	if err == nil {
		return snap
	}
	log.Printf("menu: local load failed, falling back: %v", err)

	if s.snap != nil {
		return s.snap
	}
	return DefaultSnapshot()
}

// deliverLocked publishes snap unless that version was already
// delivered, then releases the state lock. Called with mu held.
func (s *Store) deliverLocked(snap *Snapshot) {
	if snap.Version <= s.lastDelivered {
		s.mu.Unlock()
		return
	}
	s.lastDelivered = snap.Version
	s.mu.Unlock()

	// The state lock is released before dispatch so subscriber
	// callbacks can read the store. If two saves overlap, whichever
	// reaches the bus first wins and the older version is dropped:
	// subscribers never observe versions going backwards.
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if snap.Version <= s.busDelivered {
		return
	}
	s.busDelivered = snap.Version
	s.bus.Publish(snap)
}

// refresh reloads from the repository and re-broadcasts if an external
// writer advanced the version.
func (s *Store) refresh(ctx context.Context) {
	s.mu.Lock()
	fresh := s.loadLocked(ctx)
	if s.snap != nil && fresh.Version <= s.snap.Version {
		s.mu.Unlock()
		return
	}
	s.snap = fresh
	s.cacheUntil = time.Now().Add(s.cacheTTL)
	s.deliverLocked(fresh)
}

// pollLoop periodically checks for writes made by other processes or
// devices. This is the bounded-staleness path; the watch loop below is
// the fast path when the storage can signal changes itself.
func (s *Store) pollLoop(ctx context.Context) {
	if s.pollInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Store) watchLoop(ctx context.Context, w Watcher) {
	ch, err := w.Watch(ctx)
	if err != nil {
		log.Printf("menu: storage watch unavailable, polling only: %v", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			s.refresh(ctx)
		}
	}
}
