//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// mapReadOnly maps size bytes of f and hints the kernel that the view is
// read front to back once.
func mapReadOnly(f *os.File, size int) ([]byte, func() error, error) {
	view, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	// EINVAL only means the hint was not applied.
	if err := unix.Madvise(view, unix.MADV_SEQUENTIAL); err != nil && !errors.Is(err, unix.EINVAL) {
		_ = unix.Munmap(view)
		return nil, nil, err
	}

	return view, func() error { return unix.Munmap(view) }, nil
}
