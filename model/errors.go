package model

import "errors"

// ErrInvalidSlice is returned when a slice violates its structural invariants.
var ErrInvalidSlice = errors.New("invalid slice")
