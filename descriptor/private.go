package descriptor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/columnar/internal/debug"
)

// ArrayPrivateData is the private data of an ArrowArray built by this
// package. It owns the buffers and records the ownership of every child and
// of the dictionary. After any change, Sync must be called to refresh the
// fields of the ArrowArray that mirror it.
type ArrayPrivateData struct {
	mem       memory.Allocator
	buffers   []*memory.Buffer
	resizable []bool
	children  []ArrayLink
	dict      *ArrayLink
}

// NewArrowArray builds a library-owned array. Ownership of buffers passes to
// the array; nil entries are absent buffers. Children and the dictionary are
// released with the array when their link says Owned.
func NewArrowArray(mem memory.Allocator, length, nullCount, offset int64, buffers []*memory.Buffer, children []ArrayLink, dictionary *ArrayLink) *ArrowArray {
	pd := &ArrayPrivateData{
		mem:       mem,
		buffers:   buffers,
		resizable: make([]bool, len(buffers)),
		children:  children,
	}
	if dictionary != nil {
		d := *dictionary
		pd.dict = &d
	}
	a := &ArrowArray{
		Length:      length,
		NullCount:   nullCount,
		Offset:      offset,
		Release:     releaseArray,
		PrivateData: pd,
	}
	pd.Sync(a)
	return a
}

// ArrayPrivate returns the private data of a when a was built by this package.
func ArrayPrivate(a *ArrowArray) (*ArrayPrivateData, bool) {
	if a.IsReleased() {
		return nil, false
	}
	pd, ok := a.PrivateData.(*ArrayPrivateData)
	return pd, ok
}

// IsArrayCreatedWithLibrary reports whether a was built by NewArrowArray and
// not released yet.
func IsArrayCreatedWithLibrary(a *ArrowArray) bool {
	_, ok := ArrayPrivate(a)
	return ok
}

func releaseArray(a *ArrowArray) {
	if pd, ok := a.PrivateData.(*ArrayPrivateData); ok {
		for _, c := range pd.children {
			c.release()
		}
		if pd.dict != nil {
			pd.dict.release()
		}
		for _, b := range pd.buffers {
			if b != nil {
				b.Release()
			}
		}
		*pd = ArrayPrivateData{}
	}
	*a = ArrowArray{}
}

func releaseArrayNoop(a *ArrowArray) { *a = ArrowArray{} }

// Allocator returns the allocator buffers are grown with.
func (pd *ArrayPrivateData) Allocator() memory.Allocator { return pd.mem }

// Sync mirrors the private buffers, children and dictionary into a.
func (pd *ArrayPrivateData) Sync(a *ArrowArray) {
	debug.Assert(a.PrivateData == pd, "descriptor: private data does not belong to array")
	a.Buffers = make([][]byte, len(pd.buffers))
	for i, b := range pd.buffers {
		if b != nil {
			a.Buffers[i] = b.Bytes()
		}
	}
	a.Children = make([]*ArrowArray, len(pd.children))
	for i, c := range pd.children {
		a.Children[i] = c.Array
	}
	a.Dictionary = nil
	if pd.dict != nil {
		a.Dictionary = pd.dict.Array
	}
}

// NBuffers returns the number of buffer slots.
func (pd *ArrayPrivateData) NBuffers() int { return len(pd.buffers) }

// Buffer returns the buffer at i, nil when absent.
func (pd *ArrayPrivateData) Buffer(i int) *memory.Buffer { return pd.buffers[i] }

// SetBuffer replaces the buffer at i, releasing the previous one. Ownership of
// buf passes to the array.
func (pd *ArrayPrivateData) SetBuffer(i int, buf *memory.Buffer) {
	if old := pd.buffers[i]; old != nil && old != buf {
		old.Release()
	}
	pd.buffers[i] = buf
	pd.resizable[i] = false
}

// ResizeBuffers grows or shrinks the buffer slots. Dropped buffers are
// released, new slots are absent.
func (pd *ArrayPrivateData) ResizeBuffers(n int) {
	for i := n; i < len(pd.buffers); i++ {
		if pd.buffers[i] != nil {
			pd.buffers[i].Release()
		}
	}
	if n < len(pd.buffers) {
		clear(pd.buffers[n:])
		pd.buffers = pd.buffers[:n]
		pd.resizable = pd.resizable[:n]
		return
	}
	for len(pd.buffers) < n {
		pd.buffers = append(pd.buffers, nil)
		pd.resizable = append(pd.resizable, true)
	}
}

// MutableBuffer returns the buffer at i ready to be resized in place. A buffer
// handed over by the caller is first moved into one from the array's
// allocator. An absent buffer stays nil.
func (pd *ArrayPrivateData) MutableBuffer(i int) *memory.Buffer {
	buf := pd.buffers[i]
	if buf == nil || pd.resizable[i] {
		return buf
	}
	moved := memory.NewResizableBuffer(pd.mem)
	moved.Resize(buf.Len())
	copy(moved.Bytes(), buf.Bytes())
	buf.Release()
	pd.buffers[i] = moved
	pd.resizable[i] = true
	return moved
}

// BufferSlot returns the slot holding buffer i for in-place editing by code
// that may also allocate it. Whatever ends up in the slot is owned by the
// array.
func (pd *ArrayPrivateData) BufferSlot(i int) **memory.Buffer {
	pd.MutableBuffer(i)
	pd.resizable[i] = true
	return &pd.buffers[i]
}

// Children returns the child slots. The slice must not be modified.
func (pd *ArrayPrivateData) Children() []ArrayLink { return pd.children }

// ResizeChildren grows or shrinks the child slots. Owned children that are
// dropped are released; new slots are empty and borrowed.
func (pd *ArrayPrivateData) ResizeChildren(n int) {
	for i := n; i < len(pd.children); i++ {
		pd.children[i].release()
	}
	if n < len(pd.children) {
		clear(pd.children[n:])
		pd.children = pd.children[:n]
		return
	}
	for len(pd.children) < n {
		pd.children = append(pd.children, ArrayLink{})
	}
}

// SetChild replaces the child at i, releasing the previous one if it was
// owned and is not the same array. Relinking the same array keeps it owned
// if either link owns it.
func (pd *ArrayPrivateData) SetChild(i int, link ArrayLink) {
	old := pd.children[i]
	if old.Array != link.Array {
		old.release()
	} else {
		link.Ownership = max(link.Ownership, old.Ownership)
	}
	pd.children[i] = link
}

// Dictionary returns the dictionary slot, nil when there is none.
func (pd *ArrayPrivateData) Dictionary() *ArrayLink { return pd.dict }

// SetDictionary replaces the dictionary, releasing the previous one if it was
// owned. A nil link removes the dictionary.
func (pd *ArrayPrivateData) SetDictionary(link *ArrayLink) {
	old := pd.dict
	pd.dict = nil
	if link != nil {
		d := *link
		pd.dict = &d
	}
	if old == nil {
		return
	}
	if link == nil || old.Array != link.Array {
		old.release()
		return
	}
	pd.dict.Ownership = max(link.Ownership, old.Ownership)
}

// SchemaPrivateData is the private data of an ArrowSchema built by this
// package.
type SchemaPrivateData struct {
	children []SchemaLink
	dict     *SchemaLink
}

// NewArrowSchema builds a library-owned schema. An empty name leaves the
// schema unnamed and empty metadata is encoded as none.
func NewArrowSchema(format, name string, metadata arrow.Metadata, flags Flag, children []SchemaLink, dictionary *SchemaLink) *ArrowSchema {
	pd := &SchemaPrivateData{children: children}
	if dictionary != nil {
		d := *dictionary
		pd.dict = &d
	}
	s := &ArrowSchema{
		Format:      format,
		Name:        name,
		Metadata:    EncodeMetadata(metadata),
		Flags:       flags,
		Release:     releaseSchema,
		PrivateData: pd,
	}
	pd.Sync(s)
	return s
}

// SchemaPrivate returns the private data of s when s was built by this package.
func SchemaPrivate(s *ArrowSchema) (*SchemaPrivateData, bool) {
	if s.IsReleased() {
		return nil, false
	}
	pd, ok := s.PrivateData.(*SchemaPrivateData)
	return pd, ok
}

// IsSchemaCreatedWithLibrary reports whether s was built by NewArrowSchema and
// not released yet.
func IsSchemaCreatedWithLibrary(s *ArrowSchema) bool {
	_, ok := SchemaPrivate(s)
	return ok
}

func releaseSchema(s *ArrowSchema) {
	if pd, ok := s.PrivateData.(*SchemaPrivateData); ok {
		for _, c := range pd.children {
			c.release()
		}
		if pd.dict != nil {
			pd.dict.release()
		}
		*pd = SchemaPrivateData{}
	}
	*s = ArrowSchema{}
}

func releaseSchemaNoop(s *ArrowSchema) { *s = ArrowSchema{} }

// Sync mirrors the private children and dictionary into s.
func (pd *SchemaPrivateData) Sync(s *ArrowSchema) {
	debug.Assert(s.PrivateData == pd, "descriptor: private data does not belong to schema")
	s.Children = make([]*ArrowSchema, len(pd.children))
	for i, c := range pd.children {
		s.Children[i] = c.Schema
	}
	s.Dictionary = nil
	if pd.dict != nil {
		s.Dictionary = pd.dict.Schema
	}
}

// Children returns the child slots. The slice must not be modified.
func (pd *SchemaPrivateData) Children() []SchemaLink { return pd.children }

// ResizeChildren grows or shrinks the child slots, releasing dropped owned
// children.
func (pd *SchemaPrivateData) ResizeChildren(n int) {
	for i := n; i < len(pd.children); i++ {
		pd.children[i].release()
	}
	if n < len(pd.children) {
		clear(pd.children[n:])
		pd.children = pd.children[:n]
		return
	}
	for len(pd.children) < n {
		pd.children = append(pd.children, SchemaLink{})
	}
}

// SetChild replaces the child at i as ArrayPrivateData.SetChild does.
func (pd *SchemaPrivateData) SetChild(i int, link SchemaLink) {
	old := pd.children[i]
	if old.Schema != link.Schema {
		old.release()
	} else {
		link.Ownership = max(link.Ownership, old.Ownership)
	}
	pd.children[i] = link
}

// Dictionary returns the dictionary slot, nil when there is none.
func (pd *SchemaPrivateData) Dictionary() *SchemaLink { return pd.dict }

// SetDictionary replaces the dictionary, releasing the previous one if owned.
func (pd *SchemaPrivateData) SetDictionary(link *SchemaLink) {
	old := pd.dict
	pd.dict = nil
	if link != nil {
		d := *link
		pd.dict = &d
	}
	if old == nil {
		return
	}
	if link == nil || old.Schema != link.Schema {
		old.release()
		return
	}
	pd.dict.Ownership = max(link.Ownership, old.Ownership)
}
