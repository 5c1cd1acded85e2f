// Package bootfs gives the boot code a small file API over the boot volume.
package bootfs

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrTooLarge is returned when a file does not fit its destination region.
var ErrTooLarge = errors.New("file does not fit the destination")

// FS wraps an afero filesystem. Paths are absolute on that filesystem.
type FS struct {
	fs afero.Fs
}

// New returns an FS backed by fs.
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// OS returns an FS backed by the host filesystem.
func OS() *FS {
	return New(afero.NewOsFs())
}

// Open opens a file for reading.
func (f *FS) Open(name string) (afero.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return file, nil
}

// Exists reports whether name can be opened.
func (f *FS) Exists(name string) bool {
	file, err := f.fs.Open(name)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}

// Size returns the size of an open file.
func Size(file afero.File) (int64, error) {
	info, err := file.Stat()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return info.Size(), nil
}

// ReadAt fills dst with the file contents starting at offset.
func ReadAt(file afero.File, dst []byte, offset int64) (int, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := io.ReadFull(file, dst)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

// LoadFile reads the whole file into dst and returns its size. Files larger
// than dst are rejected before anything is read.
func (f *FS) LoadFile(name string, dst []byte) (int, error) {
	file, err := f.Open(name)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	size, err := Size(file)
	if err != nil {
		return 0, err
	}
	if size > int64(len(dst)) {
		return 0, errors.Wrapf(ErrTooLarge, "%s is %d bytes, region holds %d", name, size, len(dst))
	}
	return ReadAt(file, dst[:size], 0)
}
