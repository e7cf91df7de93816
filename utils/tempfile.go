package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TempStore writes uploads into a scratch directory. Callers own the
// returned paths and must remove them.
type TempStore struct {
	dir string
}

func NewTempStore(dir string) *TempStore {
	return &TempStore{dir: dir}
}

// Dir returns the scratch directory.
func (s *TempStore) Dir() string {
	return s.dir
}

// EnsureDir creates the scratch directory if it does not exist.
func (s *TempStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create temp dir %s: %w", s.dir, err)
	}
	return nil
}

// Save copies r to <dir>/<saveAs><ext>, where ext is the extension of
// originalName. saveAs is not suffixed again if it already ends in ext.
// An existing file with the same name is overwritten.
func (s *TempStore) Save(r io.Reader, originalName, saveAs string) (string, error) {
	path := filepath.Join(s.dir, TempName(originalName, saveAs))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

// TempName derives the on-disk name for an upload.
func TempName(originalName, saveAs string) string {
	ext := filepath.Ext(originalName)
	saveAs = filepath.Base(saveAs)
	if ext == "" || strings.HasSuffix(saveAs, ext) {
		return saveAs
	}
	return saveAs + ext
}

// RemoveIfExists deletes path. A file that is already gone is not an error.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
