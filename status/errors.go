package status

import "errors"

var (
	// ErrIncompatibleVersion is returned when a binary status was produced by an unsupported format version.
	ErrIncompatibleVersion = errors.New("incompatible status version")

	// ErrCorrupt is returned when a binary or text status cannot be decoded.
	ErrCorrupt = errors.New("corrupt status")

	// ErrInvalidStatus is returned when encoding a status with negative counters.
	ErrInvalidStatus = errors.New("invalid status")
)
