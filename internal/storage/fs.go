package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// FSStorage saves blobs under a root directory, keyed by caller-supplied
// hint paths (not content hashes — see storage.rs's FSStorage). Every
// blob gets a BLAKE3 checksum sidecar so Load can detect corruption.
type FSStorage struct {
	root     string
	compress bool
	subdir   string
}

// FSOption configures an FSStorage at construction time.
type FSOption func(*FSStorage)

// WithCompression zstd-compresses blobs on write and transparently
// decompresses on read.
func WithCompression() FSOption {
	return func(f *FSStorage) { f.compress = true }
}

// WithSubdir prefixes every hint path with subdir (mirrors the
// reference tool's per-storage subdirectory convention for a group of
// related nodes, e.g. ".sbt.<name>").
func WithSubdir(subdir string) FSOption {
	return func(f *FSStorage) { f.subdir = subdir }
}

// NewFSStorage creates (or opens) a filesystem-backed store rooted at
// root.
func NewFSStorage(root string, opts ...FSOption) (*FSStorage, error) {
	if root == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	f := &FSStorage{root: root}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *FSStorage) resolve(hintPath string) string {
	if f.subdir != "" {
		hintPath = filepath.Join(f.subdir, hintPath)
	}
	return filepath.Join(f.root, hintPath)
}

// Save writes content (optionally zstd-compressed) under hintPath,
// creating parent directories as needed, and writes a BLAKE3 checksum
// sidecar next to it. It returns hintPath unchanged — content is
// addressed by the caller's chosen key, not by its hash.
func (f *FSStorage) Save(ctx context.Context, hintPath string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if hintPath == "" {
		return "", ErrEmptyPath
	}
	path := f.resolve(hintPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: create parent dir for %s: %w", hintPath, err)
	}

	payload := content
	if f.compress {
		compressed, err := compressZstd(content)
		if err != nil {
			return "", err
		}
		payload = compressed
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", hintPath, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("storage: rename %s: %w", hintPath, err)
	}

	sum := blake3.Sum256(payload)
	if err := os.WriteFile(path+".b3", []byte(hex.EncodeToString(sum[:])), 0o644); err != nil {
		return "", fmt.Errorf("storage: write checksum sidecar for %s: %w", hintPath, err)
	}
	return hintPath, nil
}

// Load reads the blob at path and, if a checksum sidecar is present,
// verifies the stored bytes against it, then decompresses them when
// compression is enabled.
func (f *FSStorage) Load(ctx context.Context, hintPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.resolve(hintPath)
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hintPath)
		}
		return nil, fmt.Errorf("storage: read %s: %w", hintPath, err)
	}

	if sidecar, err := os.ReadFile(path + ".b3"); err == nil {
		sum := blake3.Sum256(payload)
		if hex.EncodeToString(sum[:]) != string(sidecar) {
			slog.Warn("checksum mismatch reading blob", "path", hintPath)
			return nil, fmt.Errorf("%w: %s", ErrHashMismatch, hintPath)
		}
	}

	if f.compress {
		return decompressZstd(payload)
	}
	return payload, nil
}

// Args reports the backend name and reconstruction arguments for the
// on-disk manifest.
func (f *FSStorage) Args() Args {
	return Args{Backend: "FSStorage", Args: map[string]string{"path": f.root}}
}

// Close is a no-op for FSStorage; nothing is held open between calls.
func (f *FSStorage) Close() error { return nil }

func compressZstd(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("storage: zstd writer: %w", err)
	}
	if _, err := enc.Write(content); err != nil {
		return nil, fmt.Errorf("storage: zstd write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("storage: zstd close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressZstd(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("storage: zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("storage: zstd read: %w", err)
	}
	return out, nil
}
