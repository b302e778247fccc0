package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cementiri/backend/internal/domain/shared"
)

// LocalStorage keeps documents on the local filesystem. Used in development
// and tests when no bucket is configured.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the root directory if needed
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (l *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", shared.NewDomainError("INVALID_INPUT", "invalid storage key")
	}
	return filepath.Join(l.dir, clean), nil
}

// Put writes an object to disk
func (l *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, body)
	return err
}

// Get opens an object from disk
func (l *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, shared.ErrNotFound
	}
	return f, err
}

// Delete removes an object from disk
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
