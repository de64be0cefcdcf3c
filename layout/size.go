package layout

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned for a type or role/type pair without a layout rule.
var ErrUnsupported = errors.New("unsupported layout")

func unsupportedType(dt arrow.DataType) error {
	return errors.Wrapf(ErrUnsupported, "data type %s", dt)
}

// BufferByteSize returns the byte length of the buffer playing role in an
// array of dt with the given length and offset.
//
// preceding holds the already sized buffers that come before this one and
// precedingRole the role of the last of them; a data buffer that follows an
// offsets buffer spans as many bytes as the last offset says.
func BufferByteSize(role BufferRole, length, offset int64, dt arrow.DataType, preceding [][]byte, precedingRole BufferRole) (int64, error) {
	n := length + offset
	switch role {
	case Validity:
		return bitutil.BytesForBits(n), nil
	case TypeIDs:
		return n, nil
	case Offsets32, Sizes32:
		return 4 * (n + offsetsPadding(role, dt)), nil
	case Offsets64, Sizes64:
		return 8 * (n + offsetsPadding(role, dt)), nil
	case Data:
		return dataByteSize(n, dt, preceding, precedingRole)
	}
	return 0, errors.Wrapf(ErrUnsupported, "buffer role %s for data type %s", role, dt)
}

// offsetsPadding is the extra trailing offset carried by the
// variable-length binary and list layouts. List views and dense unions
// store one entry per element.
func offsetsPadding(role BufferRole, dt arrow.DataType) int64 {
	if role != Offsets32 && role != Offsets64 {
		return 0
	}
	switch storageID(dt) {
	case arrow.STRING, arrow.BINARY, arrow.LARGE_STRING, arrow.LARGE_BINARY,
		arrow.LIST, arrow.LARGE_LIST, arrow.MAP:
		return 1
	}
	return 0
}

func dataByteSize(n int64, dt arrow.DataType, preceding [][]byte, precedingRole BufferRole) (int64, error) {
	switch precedingRole {
	case Offsets32:
		last := lastBuffer(preceding)
		if len(last) < arrow.Int32SizeBytes {
			return 0, nil
		}
		offsets := arrow.Int32Traits.CastFromBytes(last)
		return int64(offsets[len(offsets)-1]), nil
	case Offsets64:
		last := lastBuffer(preceding)
		if len(last) < arrow.Int64SizeBytes {
			return 0, nil
		}
		offsets := arrow.Int64Traits.CastFromBytes(last)
		return offsets[len(offsets)-1], nil
	}
	switch dt := storageType(dt).(type) {
	case *arrow.BooleanType:
		return bitutil.BytesForBits(n), nil
	case arrow.FixedWidthDataType:
		return int64(dt.BitWidth()/8) * n, nil
	}
	return 0, errors.Wrapf(ErrUnsupported, "buffer role %s for data type %s", Data, dt)
}

func lastBuffer(buffers [][]byte) []byte {
	if len(buffers) == 0 {
		return nil
	}
	return buffers[len(buffers)-1]
}

// storageType unwraps dictionary and extension types to the type whose
// buffers are physically present.
func storageType(dt arrow.DataType) arrow.DataType {
	switch t := dt.(type) {
	case *arrow.DictionaryType:
		return storageType(t.IndexType)
	case arrow.ExtensionType:
		return storageType(t.StorageType())
	}
	return dt
}

func storageID(dt arrow.DataType) arrow.Type { return storageType(dt).ID() }

// BufferViews resizes each buffer of an array to the byte length its role
// implies. Nil buffers stay nil. Buffers whose size cannot be derived, and
// the variadic buffers of the view types, are returned as given. A view never
// extends past the capacity of the underlying slice.
func BufferViews(dt arrow.DataType, length, offset int64, buffers [][]byte) [][]byte {
	views := make([][]byte, len(buffers))
	roles, err := ExpectedBufferRoles(dt)
	if err != nil {
		copy(views, buffers)
		return views
	}
	prevRole := Validity
	for i, buf := range buffers {
		if i >= len(roles.Buffers) {
			views[i] = buf
			continue
		}
		role := roles.Buffers[i]
		size, err := BufferByteSize(role, length, offset, dt, views[:i], prevRole)
		switch {
		case buf == nil || err != nil:
			views[i] = buf
		default:
			views[i] = buf[:max(0, min(int(size), cap(buf)))]
		}
		prevRole = role
	}
	return views
}
