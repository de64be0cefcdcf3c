package layout

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"
)

// ErrLayoutMismatch is returned when an array does not carry the buffers or
// children its type requires.
var ErrLayoutMismatch = errors.New("array layout does not match data type")

// ValidateBuffersCount reports whether nBuffers fits dt. View types accept any
// count from their fixed buffers upwards.
func ValidateBuffersCount(dt arrow.DataType, nBuffers int) bool {
	roles, err := ExpectedBufferRoles(dt)
	if err != nil {
		return false
	}
	if roles.Variadic {
		return nBuffers >= len(roles.Buffers)
	}
	return nBuffers == len(roles.Buffers)
}

// ValidateFormatWithArray checks the buffer and child counts of an array
// against dt.
func ValidateFormatWithArray(dt arrow.DataType, nBuffers, nChildren int) error {
	if !ValidateBuffersCount(dt, nBuffers) {
		return errors.Wrapf(ErrLayoutMismatch, "%s: unexpected buffer count %d", dt, nBuffers)
	}
	want, err := ExpectedChildrenCount(dt)
	if err != nil {
		return err
	}
	if want != nChildren {
		return errors.Wrapf(ErrLayoutMismatch, "%s: expected %d children, got %d", dt, want, nChildren)
	}
	return nil
}
