package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrFileNotFound is returned by Open for an unknown handle.
var ErrFileNotFound = errors.New("file not found")

// FileStore keeps the files attached to manually added books. A handle is
// whatever Save returned; it is stored on the book as FileName.
type FileStore interface {
	Save(ctx context.Context, originalName string, body io.Reader, contentType string) (handle string, err error)
	Open(ctx context.Context, handle string) (body io.ReadCloser, contentType string, err error)
	Delete(ctx context.Context, handle string) error
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// cleanName keeps a client-supplied name safe to use as a path segment.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// DiskStore writes uploads to a directory that is also served under /uploads.
type DiskStore struct {
	dir string
	now func() time.Time
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

func (d *DiskStore) Dir() string { return d.dir }

// Save names the file "<unix-ms>-<name>".
func (d *DiskStore) Save(ctx context.Context, originalName string, body io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	handle := fmt.Sprintf("%d-%s", d.now().UnixMilli(), cleanName(originalName))
	f, err := os.OpenFile(filepath.Join(d.dir, handle), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return handle, nil
}

func (d *DiskStore) path(handle string) (string, error) {
	if handle == "" || handle != filepath.Base(handle) || handle == "." || handle == ".." {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, handle)
	}
	return filepath.Join(d.dir, handle), nil
}

func (d *DiskStore) Open(_ context.Context, handle string) (io.ReadCloser, string, error) {
	p, err := d.path(handle)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %q", ErrFileNotFound, handle)
	}
	if err != nil {
		return nil, "", err
	}
	return f, "", nil
}

// Delete removes the file. A missing file is not an error.
func (d *DiskStore) Delete(_ context.Context, handle string) error {
	p, err := d.path(handle)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
