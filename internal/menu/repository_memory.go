package menu

import (
	"context"
	"sync"
)

// InMemoryRepository keeps the snapshot in process memory. Used by
// tests and by single-process runs that don't need durability.
type InMemoryRepository struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Load(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return DefaultSnapshot(), nil
	}
	return r.snap.Clone(), nil
}

func (r *InMemoryRepository) Save(ctx context.Context, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap.Clone()
	return nil
}
