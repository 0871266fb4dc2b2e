//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapReadOnly maps size bytes of f through a read-only file mapping view.
func mapReadOnly(f *os.File, size int) ([]byte, func() error, error) {
	mapping, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	// An open view keeps the mapping object alive after its handle is closed.
	defer windows.CloseHandle(mapping)

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, err
	}

	view := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return view, func() error { return windows.UnmapViewOfFile(addr) }, nil
}
