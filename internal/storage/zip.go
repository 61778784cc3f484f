package storage

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// ZipStorage is a read-only backend over a zip archive. Many archives
// produced by packaging tools wrap every entry in a single top-level
// directory (the archive's basename); lookups retry with that prefix
// when a bare hint path misses, mirroring storage.rs's
// find_subdirs/find_path behavior.
type ZipStorage struct {
	reader  *zip.ReadCloser
	entries map[string]*zip.File
	subdir  string
	path    string
}

// NewZipStorage opens the zip archive at archivePath for reading.
func NewZipStorage(archivePath string) (*ZipStorage, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("storage: open zip %s: %w", archivePath, err)
	}

	entries := make(map[string]*zip.File, len(r.File))
	topLevel := make(map[string]bool)
	for _, f := range r.File {
		entries[f.Name] = f
		if idx := strings.IndexByte(f.Name, '/'); idx >= 0 {
			topLevel[f.Name[:idx]] = true
		}
	}

	z := &ZipStorage{reader: r, entries: entries, path: archivePath}
	if len(topLevel) == 1 {
		for dir := range topLevel {
			z.subdir = dir
		}
	}
	return z, nil
}

// Save always fails: ZipStorage is read-only.
func (z *ZipStorage) Save(context.Context, string, []byte) (string, error) {
	return "", ErrReadOnly
}

// Load returns the content of the entry at hintPath, retrying under the
// archive's single top-level subdirectory if a bare lookup misses.
func (z *ZipStorage) Load(ctx context.Context, hintPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := z.entries[hintPath]
	if !ok && z.subdir != "" {
		f, ok = z.entries[path.Join(z.subdir, hintPath)]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hintPath)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open zip entry %s: %w", hintPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: read zip entry %s: %w", hintPath, err)
	}
	return data, nil
}

// Args reports the backend name and archive path for the manifest.
func (z *ZipStorage) Args() Args {
	return Args{Backend: "ZipStorage", Args: map[string]string{"path": z.path}}
}

// Close releases the underlying archive handle.
func (z *ZipStorage) Close() error {
	return z.reader.Close()
}
