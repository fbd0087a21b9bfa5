package fetch

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// SharedFile serializes seek-then-write access to one destination file
// shared by all range workers of a job. Ranges never overlap, but the
// lock keeps every write atomic regardless, so correctness does not
// depend on the range math.
type SharedFile struct {
	mu   sync.Mutex
	file *os.File
}

// OpenSharedFile opens (or creates) path and pre-sizes it to size so
// concurrent writers never need to grow the file. On Linux/Unix the
// Truncate produces a sparse file.
func OpenSharedFile(path string, size int64) (*SharedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open destination file: %w", err)
	}

	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not pre-size destination file: %w", err)
	}

	return &SharedFile{file: f}, nil
}

// WriteAt performs an exclusive seek-then-write at the absolute offset.
func (s *SharedFile) WriteAt(data []byte, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d failed: %w", offset, err)
	}

	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("write at %d failed: %w", offset, err)
	}

	return nil
}

// Close syncs and closes the underlying handle. Called once, after the
// last worker has finished.
func (s *SharedFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file.Sync()
	return s.file.Close()
}
