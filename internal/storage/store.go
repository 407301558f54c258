// Package storage reads and writes pipeline artifacts through afs, so local
// paths and afs URLs (mem://, s3://, gs://) are handled the same way.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// ErrNotFound is returned by Read when the location does not exist.
var ErrNotFound = errors.New("file not found")

// Store is a thin afs wrapper.
type Store struct {
	fs afs.Service
}

func New() *Store {
	return &Store{fs: afs.New()}
}

// NewWithService uses the supplied afs service (for example a memory service in tests).
func NewWithService(fs afs.Service) *Store {
	return &Store{fs: fs}
}

// Normalize turns relative local paths into absolute file URLs.
func Normalize(location string) string {
	return url.Normalize(location, file.Scheme)
}

func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, Normalize(location))
}

// Read returns the content at location or ErrNotFound.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	location = Normalize(location)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check if %s exists: %w", location, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return s.fs.DownloadWithURL(ctx, location)
}

// Write replaces the content at location, creating parent directories.
func (s *Store) Write(ctx context.Context, location string, data []byte) error {
	location = Normalize(location)
	if err := s.EnsureDir(ctx, parent(location)); err != nil {
		return err
	}
	return s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data))
}

// EnsureDir creates dir when it does not exist yet.
func (s *Store) EnsureDir(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}
	dir = Normalize(dir)
	exists, _ := s.fs.Exists(ctx, dir)
	if exists {
		return nil
	}
	if err := s.fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, location string) error {
	return s.fs.Delete(ctx, Normalize(location))
}

func parent(location string) string {
	base, name := url.Split(location, file.Scheme)
	if name == "" {
		return ""
	}
	return base
}

// Join joins path elements onto a base location.
func Join(base string, elem ...string) string {
	return url.Join(base, path.Join(elem...))
}
