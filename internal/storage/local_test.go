package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "/media")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	location, err := store.Save(context.Background(), "video-1/clip.mp4", bytes.NewReader([]byte("video-bytes")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if location != "/media/video-1/clip.mp4" {
		t.Fatalf("unexpected location: %q", location)
	}

	data, err := os.ReadFile(filepath.Join(dir, "video-1", "clip.mp4"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestLocalStorageSaveWithoutBaseURL(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	location, err := store.Save(context.Background(), "clip.mp4", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if location != "clip.mp4" {
		t.Fatalf("expected bare key, got %q", location)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	for _, key := range []string{"", "../outside.mp4", "a/../../outside.mp4"} {
		if _, err := store.Save(context.Background(), key, bytes.NewReader([]byte("x"))); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
