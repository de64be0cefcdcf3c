package descriptor

// Flag is the ArrowSchema flag set.
type Flag int64

const (
	FlagDictionaryOrdered Flag = 1
	FlagNullable          Flag = 2
	FlagMapKeysSorted     Flag = 4
)

// Has reports whether every bit of o is set in f.
func (f Flag) Has(o Flag) bool { return f&o == o }

// ArrowArray describes the physical buffers of one array.
//
// A nil entry of Buffers is an absent buffer. NullCount may be
// UnknownNullCount.
type ArrowArray struct {
	Length     int64
	NullCount  int64
	Offset     int64
	Buffers    [][]byte
	Children   []*ArrowArray
	Dictionary *ArrowArray

	Release     func(*ArrowArray)
	PrivateData any
}

// UnknownNullCount is the null count of an array whose nulls were not counted.
const UnknownNullCount = -1

// NBuffers returns the number of buffers.
func (a *ArrowArray) NBuffers() int64 { return int64(len(a.Buffers)) }

// NChildren returns the number of children.
func (a *ArrowArray) NChildren() int64 { return int64(len(a.Children)) }

// IsReleased reports whether the array has been released or never set up.
func (a *ArrowArray) IsReleased() bool { return a == nil || a.Release == nil }

// ArrowSchema describes the logical type of one array. An empty Name means no
// name; a nil Metadata means no metadata.
type ArrowSchema struct {
	Format     string
	Name       string
	Metadata   []byte
	Flags      Flag
	Children   []*ArrowSchema
	Dictionary *ArrowSchema

	Release     func(*ArrowSchema)
	PrivateData any
}

// NChildren returns the number of children.
func (s *ArrowSchema) NChildren() int64 { return int64(len(s.Children)) }

// IsReleased reports whether the schema has been released or never set up.
func (s *ArrowSchema) IsReleased() bool { return s == nil || s.Release == nil }

// ReleaseArray calls the release callback of a if it has one.
func ReleaseArray(a *ArrowArray) {
	if !a.IsReleased() {
		a.Release(a)
	}
}

// ReleaseSchema calls the release callback of s if it has one.
func ReleaseSchema(s *ArrowSchema) {
	if !s.IsReleased() {
		s.Release(s)
	}
}

// Ownership records whether a parent descriptor releases a linked child.
type Ownership uint8

const (
	Borrowed Ownership = iota
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// ArrayLink is a child or dictionary slot of an array built by this package.
type ArrayLink struct {
	Array     *ArrowArray
	Ownership Ownership
}

// SchemaLink is a child or dictionary slot of a schema built by this package.
type SchemaLink struct {
	Schema    *ArrowSchema
	Ownership Ownership
}

// OwnedArray links a child the parent will release.
func OwnedArray(a *ArrowArray) ArrayLink { return ArrayLink{Array: a, Ownership: Owned} }

// BorrowedArray links a child the parent must not release.
func BorrowedArray(a *ArrowArray) ArrayLink { return ArrayLink{Array: a, Ownership: Borrowed} }

// OwnedSchema links a child schema the parent will release.
func OwnedSchema(s *ArrowSchema) SchemaLink { return SchemaLink{Schema: s, Ownership: Owned} }

// BorrowedSchema links a child schema the parent must not release.
func BorrowedSchema(s *ArrowSchema) SchemaLink { return SchemaLink{Schema: s, Ownership: Borrowed} }

func (l ArrayLink) release() {
	if l.Ownership == Owned {
		ReleaseArray(l.Array)
	}
}

func (l SchemaLink) release() {
	if l.Ownership == Owned {
		ReleaseSchema(l.Schema)
	}
}
