package menu

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRepositoryFirstRunReturnsDefault(t *testing.T) {
	repo := NewFileRepository(t.TempDir())

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Items) == 0 || len(snap.Categories) == 0 {
		t.Fatal("expected the default catalog on first run")
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	want := DefaultSnapshot()
	want.Version = 42
	want.Items = []MenuItem{
		{ID: 5, Name: "Lentil Soup", Description: "hearty", Price: 7.5, Category: "lunch", Image: "http://img/5"},
	}

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Version != 42 {
		t.Fatalf("version = %d, want 42", got.Version)
	}
	if len(got.Items) != 1 || got.Items[0] != want.Items[0] {
		t.Fatalf("items mismatch: %+v", got.Items)
	}
}

func TestFileRepositoryMalformedFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)

	if err := os.WriteFile(filepath.Join(dir, snapshotFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := repo.Load(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestFileRepositoryLegacySyncID(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)

	// Document written by one of the older menu services.
	legacy := `{"lastUpdated":"2024-03-01T10:00:00Z","syncId":1709287200000,"categories":[{"id":"breakfast","name":"Breakfast","icon":"x"}],"items":[{"id":1,"name":"Pancakes","price":10,"category":"breakfast"}]}`
	if err := os.WriteFile(filepath.Join(dir, snapshotFileName), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap.Version != 1709287200000 {
		t.Fatalf("legacy syncId not adopted as version: %d", snap.Version)
	}
	if snap.Items[0].Image != PlaceholderImage {
		t.Fatalf("missing image not defaulted: %q", snap.Items[0].Image)
	}
}

func TestFileRepositoryWatchSeesExternalWrite(t *testing.T) {
	dir := t.TempDir()
	watcherRepo := NewFileRepository(dir)
	writerRepo := NewFileRepository(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := watcherRepo.Watch(ctx)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	if err := writerRepo.Save(ctx, DefaultSnapshot()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file watch event")
	}
}
