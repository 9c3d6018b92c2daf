package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureDocument writes a fresh empty document of the given kind under
// root, creating its parent directory. Existing non-empty documents are
// left alone: re-running the installer must never erase records.
func EnsureDocument(root string, kind Kind, now time.Time) error {
	path := filepath.Join(root, kind.Path())
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating %s directory: %w", kind, err)
	}
	doc, err := New(kind, now)
	if err != nil {
		return err
	}
	return WriteDocument(path, doc)
}

// EnsureAll writes every tracking document under root.
func EnsureAll(root string, now time.Time) error {
	for _, kind := range AllKinds {
		if err := EnsureDocument(root, kind, now); err != nil {
			return err
		}
	}
	return nil
}
