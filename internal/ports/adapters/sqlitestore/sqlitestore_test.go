package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStore_LoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, ok, err := s.Load(ctx, "https://a.example"); err != nil || ok {
		t.Fatalf("expected miss on empty store, ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, "https://a.example", "1:05"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "https://a.example", "2m"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Save(ctx, "https://b.example", "90"); err != nil {
		t.Fatalf("save b: %v", err)
	}

	got, ok, err := s.Load(ctx, "https://a.example")
	if err != nil || !ok || got != "2m" {
		t.Fatalf("expected 2m, got %q ok=%v err=%v", got, ok, err)
	}
	got, _, _ = s.Load(ctx, "https://b.example")
	if got != "90" {
		t.Fatalf("origins must not share a value, got %q", got)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, "file://", "01:02:03"); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, ok, err := s.Load(ctx, "file://")
	if err != nil || !ok || got != "01:02:03" {
		t.Fatalf("expected value after reopen, got %q ok=%v err=%v", got, ok, err)
	}
}
