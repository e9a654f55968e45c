// Package local implements a filesystem-backed object store for development.
package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Config captures the parameters for the local object store.
type Config struct {
	// BaseDir is the root directory objects are written under.
	BaseDir string
}

// ObjectStore writes objects to the local filesystem.
type ObjectStore struct {
	baseDir string
}

// New creates a local object store, creating BaseDir when missing.
func New(cfg Config) (*ObjectStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}
	return &ObjectStore{baseDir: cfg.BaseDir}, nil
}

// Put writes data to a file under the base directory and returns a file:// URL.
func (s *ObjectStore) Put(_ context.Context, key string, _ string, data []byte) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return "file://" + path, nil
}

// List walks the base directory and returns keys under prefix.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(s.baseDir, path)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk objects: %w", err)
	}
	return keys, nil
}

// Delete removes one object file; a missing file is a no-op.
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// resolve maps a key onto the base directory and rejects path escapes.
func (s *ObjectStore) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("object key is required")
	}
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	base := filepath.Clean(s.baseDir) + string(os.PathSeparator)
	if !strings.HasPrefix(path, base) {
		return "", fmt.Errorf("object key escapes base directory: %s", key)
	}
	return path, nil
}
