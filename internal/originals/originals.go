// Package originals keeps uploaded image files on disk so they can be served
// back to the browser and packed into the export archive at full resolution.
package originals

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store maps photo IDs to spooled files in a single directory.
type Store struct {
	dir   string
	mu    sync.RWMutex
	names map[string]string // photo id -> stored filename
}

// New creates a store rooted at dir. An empty dir spools into a fresh
// temporary directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "photo-declutter-originals-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create spool directory: %w", err)
		}
		dir = tmp
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create spool directory: %w", err)
		}
	}
	return &Store{dir: dir, names: make(map[string]string)}, nil
}

// Dir returns the spool directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the original bytes for a photo. The file keeps the original
// extension so content type detection stays trivial.
func (s *Store) Save(photoID, originalName string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" {
		ext = ".jpg"
	}
	name := photoID + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o600); err != nil {
		return fmt.Errorf("failed to spool original %q: %w", originalName, err)
	}

	s.mu.Lock()
	s.names[photoID] = name
	s.mu.Unlock()
	return nil
}

// Read returns the original bytes for a photo.
func (s *Store) Read(photoID string) ([]byte, error) {
	s.mu.RLock()
	name, ok := s.names[photoID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no original stored for photo %q", photoID)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read original for photo %q: %w", photoID, err)
	}
	return data, nil
}

// Ext returns the stored file extension for a photo, ".jpg" when unknown.
func (s *Store) Ext(photoID string) string {
	s.mu.RLock()
	name, ok := s.names[photoID]
	s.mu.RUnlock()
	if !ok {
		return ".jpg"
	}
	return filepath.Ext(name)
}

// Remove deletes the spool directory and all stored files.
func (s *Store) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = make(map[string]string)
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove spool directory: %w", err)
	}
	return nil
}
