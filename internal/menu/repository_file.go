package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const snapshotFileName = "menu-data.json"

// FileRepository persists the snapshot as a JSON file. Writes go to a
// temp file first and are renamed into place, so a crash mid-write
// leaves the previous snapshot intact.
//
// The rename also makes cross-process change delivery cheap: every
// other process watching the file gets an fsnotify event the moment a
// write lands, without waiting for its next poll.
type FileRepository struct {
	path string
}

func NewFileRepository(dataDir string) *FileRepository {
	return &FileRepository{path: filepath.Join(dataDir, snapshotFileName)}
}

// Path returns the snapshot file path.
func (r *FileRepository) Path() string { return r.path }

func (r *FileRepository) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// First run: nothing persisted yet.
			return DefaultSnapshot(), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrBackendUnavailable, r.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, r.path, err)
	}
	snap.Normalize()
	return &snap, nil
}

func (r *FileRepository) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	// Write to temp file, then rename (atomic on Linux)
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Watch emits a tick whenever the snapshot file is replaced by another
// process. The watcher runs until ctx is cancelled.
func (r *FileRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	// Watch the directory: the rename replaces the file node itself.
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer w.Close()
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != snapshotFileName {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
					// a tick is already pending
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("menu: file watch error: %v", err)
			}
		}
	}()
	return ch, nil
}
