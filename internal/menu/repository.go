package menu

import "context"

// Repository defines the snapshot persistence contract.
// Store depends ONLY on this interface.
//
// Save is a whole-document replace: either the full snapshot becomes
// durable or the previous one stays intact. Load returns ErrMalformed
// when the stored document cannot be parsed; the Store decides how to
// fall back.
type Repository interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Watcher is an optional Repository capability: a channel that fires
// when another process writes the same storage. Backends without
// native change notification rely on the Store's polling instead.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
