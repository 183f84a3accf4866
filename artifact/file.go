package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrAlreadyOpen is returned when Open or Create is called on an open File.
var ErrAlreadyOpen = errors.New("artifact already open")

// ErrNotOpen is returned by block operations on a closed File.
var ErrNotOpen = errors.New("artifact not open")

// File is a chip image on a filesystem.
type File struct {
	fs   afero.Fs
	path string
	f    afero.File
	// writable is set by Create
	writable bool
}

// New returns a File for path on fs. Nothing is opened yet.
func New(fs afero.Fs, path string) *File {
	if fs == nil {
		panic("filesystem cannot be nil")
	}
	return &File{fs: fs, path: path}
}

// NewOS returns a File on the operating system filesystem.
func NewOS(path string) *File {
	return New(afero.NewOsFs(), path)
}

// Path returns the file path.
func (a *File) Path() string { return a.path }

// Open opens the file for reading.
func (a *File) Open() error {
	if a.f != nil {
		return ErrAlreadyOpen
	}
	f, err := a.fs.Open(a.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.path, err)
	}
	a.f = f
	a.writable = false
	return nil
}

// Create creates or truncates the file for writing, creating missing parent
// directories.
func (a *File) Create() error {
	if a.f != nil {
		return ErrAlreadyOpen
	}
	if dir := filepath.Dir(a.path); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	f, err := a.fs.OpenFile(a.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", a.path, err)
	}
	a.f = f
	a.writable = true
	return nil
}

// Close syncs (when writable) and closes the file. Closing a closed File is a
// no-op.
func (a *File) Close() error {
	if a.f == nil {
		return nil
	}
	f := a.f
	a.f = nil

	var syncErr error
	if a.writable {
		syncErr = f.Sync()
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", a.path, err)
	}
	if syncErr != nil {
		return fmt.Errorf("sync %s: %w", a.path, syncErr)
	}
	return nil
}

// ReadBlock fills p from the current position. A short read is an error.
func (a *File) ReadBlock(p []byte) error {
	if a.f == nil {
		return ErrNotOpen
	}
	if _, err := io.ReadFull(a.f, p); err != nil {
		return fmt.Errorf("read %s: %w", a.path, err)
	}
	return nil
}

// WriteBlock writes p at the current position.
func (a *File) WriteBlock(p []byte) error {
	if a.f == nil {
		return ErrNotOpen
	}
	if !a.writable {
		return fmt.Errorf("write %s: opened read-only", a.path)
	}
	n, err := a.f.Write(p)
	if err != nil {
		return fmt.Errorf("write %s: %w", a.path, err)
	}
	if n != len(p) {
		return fmt.Errorf("write %s: %w", a.path, io.ErrShortWrite)
	}
	return nil
}

// Stat returns the file size.
func (a *File) Stat() (int64, error) {
	var (
		fi  os.FileInfo
		err error
	)
	if a.f != nil {
		fi, err = a.f.Stat()
	} else {
		fi, err = a.fs.Stat(a.path)
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", a.path, err)
	}
	return fi.Size(), nil
}

// Size returns the file size, 0 if it cannot be determined.
func (a *File) Size() int64 {
	size, err := a.Stat()
	if err != nil {
		return 0
	}
	return size
}
