package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// FS is a filesystem-backed Store with one subdirectory per artifact kind.
type FS struct {
	root string
	log  logrus.FieldLogger
}

// NewFS creates a filesystem store rooted at dir, creating the kind
// subdirectories if needed.
func NewFS(log logrus.FieldLogger, dir string) (*FS, error) {
	for _, kind := range Kinds {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w", kind, err)
		}
	}

	return &FS{
		root: dir,
		log:  log.WithField("component", "fs_store"),
	}, nil
}

// Root returns the store's root directory.
func (s *FS) Root() string {
	return s.root
}

// List returns the artifact names present under kind, sorted.
func (s *FS) List(kind Kind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("listing %s artifacts: %w", kind, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)

	return names, nil
}

// Read returns the artifact bytes.
func (s *FS) Read(kind Kind, name string) ([]byte, error) {
	return os.ReadFile(s.path(kind, name))
}

// Write persists the artifact via a temp file and rename so readers never
// observe a partially written image.
func (s *FS) Write(kind Kind, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, string(kind))

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp artifact: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing artifact %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("closing artifact %s: %w", name, err)
	}

	path := s.path(kind, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("renaming artifact %s: %w", name, err)
	}

	s.log.WithFields(logrus.Fields{
		"kind": kind,
		"name": name,
		"size": len(data),
	}).Debug("artifact written")

	return path, nil
}

// Remove deletes the artifact, ignoring missing files.
func (s *FS) Remove(kind Kind, name string) error {
	if err := os.Remove(s.path(kind, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing artifact %s: %w", name, err)
	}

	return nil
}

func (s *FS) path(kind Kind, name string) string {
	return filepath.Join(s.root, string(kind), name)
}
