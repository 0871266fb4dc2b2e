// Package mmap reads archived status blobs through a read-only memory map.
//
// ReadFile maps the file, copies it onto the heap and unmaps it again, so
// callers never hold a view into a file another writer may rename over.
// Unix platforms use mmap(2) with a sequential madvise(2) hint; Windows uses
// CreateFileMapping/MapViewOfFile.
package mmap
