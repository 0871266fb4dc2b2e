package mmap

import (
	"errors"
	"os"
	"slices"
)

// ErrTooLarge is returned for a file that cannot be addressed as one slice.
var ErrTooLarge = errors.New("mmap: file too large to map")

// ReadFile returns the contents of path. The file is mapped read-only,
// copied onto the heap and unmapped before ReadFile returns, so the result
// stays valid after the blob is replaced or deleted.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return []byte{}, nil
	}
	if int64(int(size)) != size {
		return nil, ErrTooLarge
	}

	view, release, err := mapReadOnly(f, int(size))
	if err != nil {
		return nil, err
	}
	data := slices.Clone(view)
	if err := release(); err != nil {
		return nil, err
	}
	return data, nil
}
