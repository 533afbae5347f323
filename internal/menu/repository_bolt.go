package menu

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	boltBucket = []byte("menu")
	boltKey    = []byte("snapshot")
)

// BoltRepository persists the snapshot in an embedded bbolt database.
// Same local-durability class as FileRepository, but the write is a
// transaction instead of a temp-file rename.
type BoltRepository struct {
	db *bolt.DB
}

// OpenBolt creates or opens the bbolt database at the given path.
func OpenBolt(path string) (*BoltRepository, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening bolt db: %v", ErrBackendUnavailable, err)
	}
	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) Load(ctx context.Context) (*Snapshot, error) {
	var raw []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return nil
		}
		if v := b.Get(boltKey); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if raw == nil {
		return DefaultSnapshot(), nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	snap.Normalize()
	return &snap, nil
}

func (r *BoltRepository) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return b.Put(boltKey, data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (r *BoltRepository) Close() error {
	return r.db.Close()
}
