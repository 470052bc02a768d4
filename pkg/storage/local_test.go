package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	return s
}

func TestLocalWriteAndRead(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	content := []byte(`{"room_id":"tavern"}`)
	if err := s.Write(ctx, "rooms/tavern/snap.json", bytes.NewReader(content), int64(len(content)), "application/json"); err != nil {
		t.Fatalf("write: %v", err)
	}

	r, err := s.Read(ctx, "rooms/tavern/snap.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: %s", got)
	}
}

func TestLocalExists(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "missing.json")
	if err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Write(ctx, "present.json", strings.NewReader("{}"), 2, "application/json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err = s.Exists(ctx, "present.json")
	if err != nil || !ok {
		t.Fatalf("expected present key, got ok=%v err=%v", ok, err)
	}
}

func TestLocalListByPrefix(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{"rooms/tavern/a.json", "rooms/tavern/b.json", "rooms/library/c.json"} {
		if err := s.Write(ctx, key, strings.NewReader("{}"), 2, "application/json"); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}

	files, err := s.List(ctx, "rooms/tavern")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files under prefix, got %d", len(files))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.Key, "rooms/tavern/") {
			t.Errorf("unexpected key %q", f.Key)
		}
	}
}

func TestLocalTraversalGuard(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	// A traversal key must resolve inside the base path.
	if err := s.Write(ctx, "../escape.json", strings.NewReader("{}"), 2, "application/json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(s.fullPath("../escape.json"), s.GetBasePath()) {
		t.Error("traversal key escaped the base path")
	}
}
