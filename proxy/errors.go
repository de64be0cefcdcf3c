package proxy

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotOwned is returned when mutating or extracting a descriptor this
	// library did not allocate, or one the proxy only borrows.
	ErrNotOwned = errors.New("descriptor not owned")
	// ErrImmutable is returned when mutating a descriptor borrowed read-only.
	ErrImmutable = errors.New("descriptor is immutable")
	// ErrOutOfRange is returned for an index or range outside the array.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidHandles is returned by New for an unsupported combination of
	// array and schema handles, or for a released descriptor.
	ErrInvalidHandles = errors.New("invalid descriptor handles")
	// ErrInconsistent is returned by New when the array and schema disagree on
	// children or dictionary.
	ErrInconsistent = errors.New("array and schema are inconsistent")
)
