package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskAvatarStore_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	public := t.TempDir()
	store, err := NewDiskAvatarStore(public)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	src := filepath.Join(t.TempDir(), "staged")
	if err := os.WriteFile(src, []byte("jpeg"), 0o600); err != nil {
		t.Fatalf("stage: %v", err)
	}

	url, err := store.Save(ctx, src, "u1_abc.jpg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "avatars/u1_abc.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged file should have been moved")
	}
	stored := filepath.Join(public, "avatars", "u1_abc.jpg")
	if data, err := os.ReadFile(stored); err != nil || string(data) != "jpeg" {
		t.Fatalf("stored file: %q, %v", data, err)
	}

	if err := store.Remove(ctx, url); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(stored); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file should be gone")
	}
	if err := store.Remove(ctx, url); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestDiskAvatarStore_RejectsTraversal(t *testing.T) {
	store, err := NewDiskAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Save(context.Background(), "irrelevant", "../escape.jpg"); err == nil {
		t.Fatalf("expected error for path in name")
	}
	if err := store.Remove(context.Background(), "avatars/../../etc/passwd"); !errors.Is(err, ErrForeignAvatar) {
		t.Fatalf("expected ErrForeignAvatar, got %v", err)
	}
}

func TestDiskAvatarStore_Owns(t *testing.T) {
	store := &DiskAvatarStore{dir: "unused"}
	cases := map[string]bool{
		"avatars/u1_x.jpg": true,
		"https://www.gravatar.com/avatar/abc?d=identicon": false,
		"avatars/":          false,
		"avatars/a/b.jpg":   false,
		"other/u1_x.jpg":    false,
		"":                  false,
	}
	for url, want := range cases {
		if got := store.Owns(url); got != want {
			t.Fatalf("Owns(%q) = %v, want %v", url, got, want)
		}
	}
}
