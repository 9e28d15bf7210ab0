package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage persists public files and resolves their URLs.
type Storage interface {
	Store(data []byte, path string) (string, error)
	Exists(path string) bool
	URL(path string) string
}

// DiskStorage writes files under a local root directory that the HTTP layer
// serves at /uploads.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	return &DiskStorage{root: root}
}

func (s *DiskStorage) Store(data []byte, path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.URL(path), nil
}

func (s *DiskStorage) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(path)))
	return err == nil
}

func (s *DiskStorage) URL(path string) string {
	return "/uploads/" + path
}

// MemoryStorage keeps files in a map. Useful for tests that need to observe
// writes or force a failure partway through a multi-file save.
type MemoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailSuffix makes Store fail for any path ending with it.
	FailSuffix string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}}
}

func (s *MemoryStorage) Store(data []byte, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSuffix != "" && strings.HasSuffix(path, s.FailSuffix) {
		return "", os.ErrPermission
	}
	s.files[path] = append([]byte(nil), data...)
	return s.URL(path), nil
}

func (s *MemoryStorage) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

func (s *MemoryStorage) URL(path string) string {
	return "/uploads/" + path
}

// Len reports how many files were stored.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
