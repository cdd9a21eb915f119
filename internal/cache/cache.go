// Package cache stores synthesized audio, speech marks and captions on disk,
// keyed by the fingerprint of the narration that produced them.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// produces a cache entry at path
type ProduceFunc func(ctx context.Context, path string) error

// directory of cached files
type Store struct {
	dir   string
	group singleflight.Group
}

// NewStore returns a store under root. namespace separates engines whose
// output differs for the same fingerprint.
func NewStore(root, namespace string) *Store {
	return &Store{dir: filepath.Join(root, namespace)}
}

// directory holding the entries
func (s *Store) Dir() string { return s.dir }

// path of the entry for key and ext, whether or not it exists
func (s *Store) Path(key, ext string) string {
	return filepath.Join(s.dir, key+ext)
}

// Ensure returns the path of the entry for key and ext, calling produce when
// it does not exist yet. Concurrent calls for the same entry share one
// produce call. The entry appears only after produce succeeded.
func (s *Store) Ensure(ctx context.Context, key, ext string, produce ProduceFunc) (string, error) {
	path := s.Path(key, ext)
	if exists(path) {
		return path, nil
	}

	_, err, _ := s.group.Do(key+ext, func() (interface{}, error) {
		if exists(path) {
			return nil, nil
		}
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}

		// keep ext last so tools can infer the format
		tmp := filepath.Join(s.dir, key+".part"+ext)
		if err := produce(ctx, tmp); err != nil {
			_ = os.Remove(tmp)
			return nil, err
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return nil, fmt.Errorf("failed to store cache entry: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
