// Package assets manages the on-disk image store extracted from the source
// document. Filenames double as storage keys and as the page-number join key
// with the chunk list.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store writes extracted images under a single directory and tracks which
// pages they came from. The page map is replaced wholesale on each
// ingestion; files from a prior upload are removed by Clear.
type Store struct {
	dir string

	mu     sync.RWMutex
	byPage map[int][]string
}

// NewStore creates the asset directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset dir %s: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		byPage: make(map[int][]string),
	}, nil
}

// Dir returns the directory served under the static URL prefix.
func (s *Store) Dir() string {
	return s.dir
}

// Clear removes every stored file and resets the page map. Called at process
// start and at the start of each ingestion so a new document never resolves
// against a prior document's images.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read asset dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove stale asset")
		}
	}

	s.byPage = make(map[int][]string)
	return nil
}

// Save persists one extracted image under a page-and-index-derived name,
// preserving the original encoding, and records it against the page.
func (s *Store) Save(page, index int, ext string, data []byte) (string, error) {
	name := fmt.Sprintf("p%d_img%d.%s", page, index, ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset %s: %w", name, err)
	}

	s.mu.Lock()
	s.byPage[page] = append(s.byPage[page], name)
	s.mu.Unlock()

	return name, nil
}

// ByPage returns the filenames recorded for a page, or nil.
func (s *Store) ByPage(page int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.byPage[page]
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// PagesWithImages reports how many pages have at least one stored image.
func (s *Store) PagesWithImages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPage)
}
