package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrConcurrentModification is returned when a pointer commit lost a race.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// ErrInvalidName is returned for an empty or escaping blob name.
var ErrInvalidName = errors.New("invalid blob name")

// PointerName is the base name of pointer blobs.
const PointerName = "LATEST"

// Store is an abstraction for reading and writing named blobs.
type Store interface {
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the full content of a blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the sorted names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// IsPointer reports whether name refers to a pointer blob.
func IsPointer(name string) bool {
	return path.Base(name) == PointerName
}

// CleanName validates a blob name and returns its canonical form.
func CleanName(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}
