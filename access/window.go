package access

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/layout"
	"github.com/VanDung-dev/columnar/proxy"
)

// ErrTypeMismatch is returned when a proxy does not hold the element type an
// accessor was asked for.
var ErrTypeMismatch = errors.New("element type does not match array type")

// window is the part shared by every accessor: the proxy and the index of
// its data buffer.
type window struct {
	p     *proxy.Proxy
	index int
}

func newWindow(p *proxy.Proxy) (window, error) {
	roles, err := layout.ExpectedBufferRoles(p.DataType())
	if err != nil {
		return window{}, err
	}
	for i, r := range roles.Buffers {
		if r == layout.Data {
			if i >= p.NBuffers() {
				return window{}, errors.Wrapf(layout.ErrLayoutMismatch, "%s: data buffer %d missing", p.DataType(), i)
			}
			return window{p: p, index: i}, nil
		}
	}
	return window{}, errors.Wrapf(ErrTypeMismatch, "%s has no data buffer", p.DataType())
}

// Len returns the number of elements.
func (w window) Len() int { return int(w.p.Length()) }

func (w window) offset() int { return int(w.p.Offset()) }

func (w window) data() []byte { return w.p.Buffers()[w.index] }

// IsValid reports whether element i is not null.
func (w window) IsValid(i int) bool {
	bm := w.p.ValidityBitmap()
	if bm == nil {
		return true
	}
	return bm.Test(w.offset() + i)
}

func (w window) checkIndex(op string, i, limit int) error {
	if i < 0 || i > limit {
		return errors.Wrapf(proxy.ErrOutOfRange, "%s: index %d of %d", op, i, limit)
	}
	return nil
}

// storageType resolves the type whose values sit in the data buffer.
func storageType(dt arrow.DataType) arrow.DataType {
	switch dt := dt.(type) {
	case *arrow.DictionaryType:
		return dt.IndexType
	case arrow.ExtensionType:
		return storageType(dt.StorageType())
	}
	return dt
}
