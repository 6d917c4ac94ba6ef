package emit

import (
	"errors"
	"os"
)

// LazyFile is an output sink that creates its file on the first write.
// A sink that is never written leaves the filesystem untouched.
type LazyFile struct {
	path   string
	header []byte
	f      *os.File
	closed bool
}

// NewLazyFile returns a sink for path. header, if any, is written when
// the file is created.
func NewLazyFile(path string, header []byte) *LazyFile {
	return &LazyFile{path: path, header: header}
}

// Path returns the destination path.
func (s *LazyFile) Path() string {
	return s.path
}

// Opened reports whether the file has been created.
func (s *LazyFile) Opened() bool {
	return s.f != nil
}

func (s *LazyFile) Write(p []byte) (int, error) {
	if s.closed {
		return 0, &FileWriteError{Path: s.path, Err: os.ErrClosed}
	}
	if s.f == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return 0, &FileWriteError{Path: s.path, Err: err}
		}
		s.f = f
		if len(s.header) > 0 {
			if _, err := s.f.Write(s.header); err != nil {
				return 0, &FileWriteError{Path: s.path, Err: err}
			}
		}
	}
	n, err := s.f.Write(p)
	if err != nil {
		return n, &FileWriteError{Path: s.path, Err: err}
	}
	return n, nil
}

// Close closes the file if it was created. Safe to call more than once.
func (s *LazyFile) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.f == nil {
		return nil
	}
	if err := s.f.Close(); err != nil {
		return &FileWriteError{Path: s.path, Err: err}
	}
	return nil
}

// Discard closes the sink and removes anything it created.
func (s *LazyFile) Discard() error {
	opened := s.f != nil
	err := s.Close()
	if opened {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return errors.Join(err, rmErr)
		}
	}
	return err
}
