package access

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/layout"
	"github.com/VanDung-dev/columnar/proxy"
)

// FixedWidthBinary reads and overwrites the values of a fixed-size binary
// array.
type FixedWidthBinary struct {
	window
	width int
}

func NewFixedWidthBinary(p *proxy.Proxy) (*FixedWidthBinary, error) {
	fsb, ok := storageType(p.DataType()).(*arrow.FixedSizeBinaryType)
	if !ok {
		return nil, errors.Wrapf(ErrTypeMismatch, "%s is not fixed-size binary", p.DataType())
	}
	w, err := newWindow(p)
	if err != nil {
		return nil, err
	}
	return &FixedWidthBinary{window: w, width: fsb.ByteWidth}, nil
}

// Width returns the size of every value in bytes.
func (a *FixedWidthBinary) Width() int { return a.width }

// Value returns the bytes of element i, aliasing the data buffer. The bytes
// of a null element are returned as stored.
func (a *FixedWidthBinary) Value(i int) []byte {
	start := (a.offset() + i) * a.width
	return a.data()[start : start+a.width : start+a.width]
}

// At returns element i, or ErrOutOfRange.
func (a *FixedWidthBinary) At(i int) ([]byte, error) {
	if i < 0 || i >= a.Len() {
		return nil, errors.Wrapf(proxy.ErrOutOfRange, "at: index %d of %d", i, a.Len())
	}
	return a.Value(i), nil
}

// All iterates over the elements and their index.
func (a *FixedWidthBinary) All() func(yield func(int, []byte) bool) {
	return func(yield func(int, []byte) bool) {
		for i := range a.Len() {
			if !yield(i, a.Value(i)) {
				return
			}
		}
	}
}

// SetValue overwrites element i with v, which must be Width bytes long.
func (a *FixedWidthBinary) SetValue(i int, v []byte) error {
	if i < 0 || i >= a.Len() {
		return errors.Wrapf(proxy.ErrOutOfRange, "set_value: index %d of %d", i, a.Len())
	}
	if len(v) != a.width {
		return errors.Wrapf(ErrTypeMismatch, "set_value: %d bytes for width %d", len(v), a.width)
	}
	buf, err := a.p.MutableBuffer(a.index)
	if err != nil {
		return errors.Wrap(err, "set_value")
	}
	if buf == nil {
		return errors.Wrap(layout.ErrLayoutMismatch, "set_value: data buffer is absent")
	}
	a.p.UpdateBuffers()
	start := (a.offset() + i) * a.width
	copy(buf.Bytes()[start:start+a.width], v)
	return nil
}
