package emit

import (
	"fmt"
)

// FileWriteError occurs when an output artifact cannot be written.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("failed to write '%s': %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error {
	return e.Err
}
