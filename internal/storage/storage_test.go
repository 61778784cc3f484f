package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFSStorageSaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFSStorage(dir)
	if err != nil {
		t.Fatalf("NewFSStorage: %v", err)
	}

	key, err := s.Save(ctx, "leaves/0.sig", []byte("hello signature"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if key != "leaves/0.sig" {
		t.Fatalf("Save returned key %q, want leaves/0.sig", key)
	}

	got, err := s.Load(ctx, "leaves/0.sig")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, []byte("hello signature")) {
		t.Fatalf("Load = %q, want %q", got, "hello signature")
	}
}

func TestFSStorageCompression(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFSStorage(dir, WithCompression())
	if err != nil {
		t.Fatalf("NewFSStorage: %v", err)
	}

	payload := bytes.Repeat([]byte("acgtacgtacgt"), 100)
	if _, err := s.Save(ctx, "nodes/1.ng", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "nodes/1.ng"))
	if err != nil {
		t.Fatalf("read raw file: %v", err)
	}
	if bytes.Equal(raw, payload) {
		t.Fatalf("compressed payload should not equal raw input on disk")
	}

	got, err := s.Load(ctx, "nodes/1.ng")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("decompressed payload mismatch")
	}
}

func TestFSStorageChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFSStorage(dir)
	if err != nil {
		t.Fatalf("NewFSStorage: %v", err)
	}
	if _, err := s.Save(ctx, "x", []byte("original")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}
	if _, err := s.Load(ctx, "x"); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
}

func TestFSStorageCanceledContext(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStorage(dir)
	if err != nil {
		t.Fatalf("NewFSStorage: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Save(ctx, "x", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save with canceled context: got %v, want context.Canceled", err)
	}
	if _, err := s.Load(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load with canceled context: got %v, want context.Canceled", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	if _, err := s.Save(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "1" {
		t.Fatalf("Load = %q, want 1", got)
	}
	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDedupStorageSkipsDuplicateContent(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStorage()
	d := NewDedupStorage(backing)

	keyA, err := d.Save(ctx, "a.ng", []byte("same-bytes"))
	if err != nil {
		t.Fatalf("Save a: %v", err)
	}
	keyB, err := d.Save(ctx, "b.ng", []byte("same-bytes"))
	if err != nil {
		t.Fatalf("Save b: %v", err)
	}
	if keyA != keyB {
		t.Fatalf("expected identical content to dedup to the same key, got %q and %q", keyA, keyB)
	}
	if _, err := backing.Load(ctx, "b.ng"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected b.ng to never reach the backing store, got err=%v", err)
	}

	got, err := d.Load(ctx, keyA)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "same-bytes" {
		t.Fatalf("Load = %q, want same-bytes", got)
	}

	keyC, err := d.Save(ctx, "c.ng", []byte("different-bytes"))
	if err != nil {
		t.Fatalf("Save c: %v", err)
	}
	if keyC == keyA {
		t.Fatalf("distinct content must not share a key")
	}
}

func TestZipStorageSubdirDetection(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "index.sbt.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	w := zip.NewWriter(f)
	entry, err := w.Create("index.sbt/leaves/0.sig")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write([]byte("leaf data")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	z, err := NewZipStorage(archivePath)
	if err != nil {
		t.Fatalf("NewZipStorage: %v", err)
	}
	defer z.Close()

	got, err := z.Load(ctx, "leaves/0.sig")
	if err != nil {
		t.Fatalf("Load with subdir retry: %v", err)
	}
	if string(got) != "leaf data" {
		t.Fatalf("Load = %q, want leaf data", got)
	}

	if _, err := z.Save(ctx, "x", nil); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestLockedRefcounting(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	l := NewLocked(mem)
	l.Acquire()

	if _, err := l.Save(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	// Backend should still be usable: one reference remains.
	if _, err := l.Load(ctx, "k"); err != nil {
		t.Fatalf("Load after first Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
