// Package cache stores raw crawl artifacts on disk so troubleshooting a bad
// parse never requires re-fetching, and repeated runs don't hammer the
// upstream site. Keys mirror the upstream addressing scheme:
// character/{c}-{page}.html, artist/{id}-{page}.html, song/{artist}-{song}.html,
// section/{id}.xml, youtube/{id}.{ext}.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Store is a flat file cache rooted at one directory. A lock file guards the
// root so two crawler processes don't interleave writes.
type Store struct {
	root  string
	fresh bool
	lock  *flock.Flock
}

// Open prepares the cache directory and takes the root lock. With fresh set,
// reads always miss so every artifact is re-fetched and rewritten.
func Open(root string, fresh bool) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	lock := flock.New(filepath.Join(root, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock cache dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("cache dir %s is in use by another process", root)
	}

	return &Store{root: root, fresh: fresh, lock: lock}, nil
}

// Close releases the root lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Get returns the cached bytes for key, or a miss when absent (or when the
// store is in fresh mode).
func (s *Store) Get(key string) ([]byte, bool) {
	if s.fresh {
		return nil, false
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put writes the bytes for key, creating intermediate directories as needed.
func (s *Store) Put(key string, data []byte) error {
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache subdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

// Path resolves a key to its on-disk location. Path separators outside the
// key's own subdirectory structure are neutralized so a hostile key can't
// escape the root.
func (s *Store) Path(key string) string {
	clean := filepath.Clean("/" + key)
	return filepath.Join(s.root, strings.TrimPrefix(clean, "/"))
}

// Find returns the first existing file whose name starts with keyPrefix.
// Audio downloads pick their own extension, so lookups go by prefix.
func (s *Store) Find(keyPrefix string) (string, bool) {
	matches, err := filepath.Glob(s.Path(keyPrefix) + ".*")
	if err != nil || len(matches) == 0 {
		// The prefix itself may be a complete key.
		if info, statErr := os.Stat(s.Path(keyPrefix)); statErr == nil && !info.IsDir() {
			return s.Path(keyPrefix), true
		}
		return "", false
	}
	return matches[0], true
}
