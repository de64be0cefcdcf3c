package layout

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"
)

// BufferRole identifies what a physical buffer holds.
type BufferRole int8

const (
	Validity BufferRole = iota
	Data
	Offsets32
	Offsets64
	Sizes32
	Sizes64
	Views
	TypeIDs
)

var roleNames = [...]string{
	Validity:  "validity",
	Data:      "data",
	Offsets32: "offsets32",
	Offsets64: "offsets64",
	Sizes32:   "sizes32",
	Sizes64:   "sizes64",
	Views:     "views",
	TypeIDs:   "type_ids",
}

func (r BufferRole) String() string {
	if int(r) < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("BufferRole(%d)", int(r))
	}
	return roleNames[r]
}

// Roles is the ordered buffer composition of a type. Variadic is set for the
// view types, whose fixed buffers are followed by any number of data buffers.
type Roles struct {
	Buffers  []BufferRole
	Variadic bool
}

var (
	noBuffers      = []BufferRole{}
	validityOnly   = []BufferRole{Validity}
	fixedWidth     = []BufferRole{Validity, Data}
	varBinary      = []BufferRole{Validity, Offsets32, Data}
	largeVarBinary = []BufferRole{Validity, Offsets64, Data}
	binaryView     = []BufferRole{Validity, Views}
	list           = []BufferRole{Validity, Offsets32}
	largeList      = []BufferRole{Validity, Offsets64}
	listView       = []BufferRole{Validity, Offsets32, Sizes32}
	largeListView  = []BufferRole{Validity, Offsets64, Sizes64}
	sparseUnion    = []BufferRole{TypeIDs}
	denseUnion     = []BufferRole{TypeIDs, Offsets32}
)

// ExpectedBufferRoles returns the buffers an array of dt carries, in order.
// Dictionary arrays carry the buffers of their index type and extension
// arrays those of their storage type.
func ExpectedBufferRoles(dt arrow.DataType) (Roles, error) {
	if dt == nil {
		return Roles{}, errors.Wrap(ErrUnsupported, "nil data type")
	}
	switch dt.ID() {
	case arrow.NULL, arrow.RUN_END_ENCODED:
		return Roles{Buffers: noBuffers}, nil
	case arrow.STRING, arrow.BINARY:
		return Roles{Buffers: varBinary}, nil
	case arrow.LARGE_STRING, arrow.LARGE_BINARY:
		return Roles{Buffers: largeVarBinary}, nil
	case arrow.STRING_VIEW, arrow.BINARY_VIEW:
		return Roles{Buffers: binaryView, Variadic: true}, nil
	case arrow.LIST, arrow.MAP:
		return Roles{Buffers: list}, nil
	case arrow.LARGE_LIST:
		return Roles{Buffers: largeList}, nil
	case arrow.LIST_VIEW:
		return Roles{Buffers: listView}, nil
	case arrow.LARGE_LIST_VIEW:
		return Roles{Buffers: largeListView}, nil
	case arrow.FIXED_SIZE_LIST, arrow.STRUCT:
		return Roles{Buffers: validityOnly}, nil
	case arrow.SPARSE_UNION:
		return Roles{Buffers: sparseUnion}, nil
	case arrow.DENSE_UNION:
		return Roles{Buffers: denseUnion}, nil
	case arrow.DICTIONARY:
		return ExpectedBufferRoles(dt.(*arrow.DictionaryType).IndexType)
	case arrow.EXTENSION:
		return ExpectedBufferRoles(dt.(arrow.ExtensionType).StorageType())
	}
	if _, ok := dt.(arrow.FixedWidthDataType); ok {
		return Roles{Buffers: fixedWidth}, nil
	}
	return Roles{}, unsupportedType(dt)
}

// ExpectedBufferCount returns the number of fixed buffers of dt.
func ExpectedBufferCount(dt arrow.DataType) (int, error) {
	roles, err := ExpectedBufferRoles(dt)
	if err != nil {
		return 0, err
	}
	return len(roles.Buffers), nil
}

// ExpectedChildrenCount returns the number of child arrays dt requires.
func ExpectedChildrenCount(dt arrow.DataType) (int, error) {
	switch dt := dt.(type) {
	case *arrow.StructType:
		return dt.NumFields(), nil
	case arrow.UnionType:
		return len(dt.Fields()), nil
	case *arrow.RunEndEncodedType:
		return 2, nil
	case arrow.ListLikeType:
		// list, large list, list views, fixed size list and map
		return 1, nil
	case *arrow.DictionaryType:
		return ExpectedChildrenCount(dt.IndexType)
	case arrow.ExtensionType:
		return ExpectedChildrenCount(dt.StorageType())
	}
	if _, err := ExpectedBufferRoles(dt); err != nil {
		return 0, err
	}
	return 0, nil
}

// HasBitmap reports whether the first buffer of dt is a validity bitmap.
func HasBitmap(dt arrow.DataType) bool {
	roles, err := ExpectedBufferRoles(dt)
	return err == nil && len(roles.Buffers) > 0 && roles.Buffers[0] == Validity
}
