package storage

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

// Memory is an in-memory Store, used by tests and embedders that do not want
// artifacts on disk.
type Memory struct {
	mu    sync.RWMutex
	files map[Kind]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	files := make(map[Kind]map[string][]byte, len(Kinds))
	for _, kind := range Kinds {
		files[kind] = make(map[string][]byte)
	}

	return &Memory{files: files}
}

// List returns the artifact names present under kind, sorted.
func (s *Memory) List(kind Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.files[kind]))
	for name := range s.files[kind] {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// Read returns the artifact bytes.
func (s *Memory) Read(kind Kind, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[kind][name]
	if !ok {
		return nil, fmt.Errorf("artifact %s/%s: %w", kind, name, fs.ErrNotExist)
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

// Write stores the artifact.
func (s *Memory) Write(kind Kind, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.files[kind][name] = stored

	return string(kind) + "/" + name, nil
}

// Remove deletes the artifact, ignoring missing entries.
func (s *Memory) Remove(kind Kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files[kind], name)

	return nil
}
