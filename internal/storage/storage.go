package storage

import (
	"io"
	"os"
	"path/filepath"
)

// localStorage implements Storage interface using local filesystem
// Library files are stored flat under basePath/library
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath generates the full file path for a stored filename
func (s *localStorage) generatePath(filename string) string {
	return filepath.Join(s.basePath, "library", filename)
}

// Create creates a new file and returns a WriteCloser
func (s *localStorage) Create(filename string) (io.WriteCloser, error) {
	path := s.generatePath(filename)

	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Create the file
	return os.Create(path)
}

// Open opens a file for reading and returns a ReadCloser
func (s *localStorage) Open(filename string) (io.ReadCloser, error) {
	path := s.generatePath(filename)
	return os.Open(path)
}

// OpenFile opens a file and returns *os.File
func (s *localStorage) OpenFile(filename string) (*os.File, error) {
	path := s.generatePath(filename)
	return os.Open(path)
}

// Delete removes a file
func (s *localStorage) Delete(filename string) error {
	path := s.generatePath(filename)
	return os.Remove(path)
}
