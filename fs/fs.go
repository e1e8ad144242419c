// Package fs provides the filesystem abstraction project emission writes
// through. Paths are relative to the filesystem root; sandboxing and length
// validation happen before a path ever reaches this layer.
package fs

import (
	"io"
	"os"
)

// File is an open handle for writing one emitted artifact.
type File interface {
	io.Writer
	io.Closer
	Name() string
}

// Filesystem is the write surface of an emission target. Implementations
// must be safe for concurrent use as long as concurrent calls touch
// distinct paths.
type Filesystem interface {
	// Create opens name for writing, truncating it if it exists and
	// creating missing parent directories as needed.
	Create(name string) (File, error)

	// MkdirAll creates the directory path along with any missing parents.
	MkdirAll(path string, perm os.FileMode) error

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// ReadFile returns the contents of path.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path, creating or truncating it.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Stat returns file metadata for name.
	Stat(name string) (os.FileInfo, error)
}
