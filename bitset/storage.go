package bitset

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// storage is the block buffer behind a container.
type storage interface {
	// isNull reports whether there is no underlying buffer at all.
	isNull() bool
	bytes() []byte
	// resize sets the byte length, allocating a buffer when there is none.
	// Bytes past the previous length are zeroed.
	resize(nbytes int)
	release()
}

// ownedStorage owns a resizable buffer obtained from mem.
type ownedStorage struct {
	mem memory.Allocator
	buf *memory.Buffer
}

func (s *ownedStorage) isNull() bool { return s.buf == nil }

func (s *ownedStorage) bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return s.buf.Bytes()
}

func (s *ownedStorage) resize(nbytes int) {
	if s.buf == nil {
		s.buf = memory.NewResizableBuffer(s.mem)
	}
	resizeZeroed(s.buf, nbytes)
}

func (s *ownedStorage) release() {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
}

// viewStorage reads and writes a caller-owned slice in place. It cannot grow.
type viewStorage struct {
	data []byte
}

func (s *viewStorage) isNull() bool  { return s.data == nil }
func (s *viewStorage) bytes() []byte { return s.data }

func (s *viewStorage) resize(nbytes int) {
	if nbytes > cap(s.data) || s.data == nil && nbytes > 0 {
		panic("bitset: cannot grow a view beyond its capacity")
	}
	old := len(s.data)
	s.data = s.data[:nbytes]
	if nbytes > old {
		clear(s.data[old:])
	}
}

func (s *viewStorage) release() {}

// externalStorage edits a buffer slot owned by someone else. The slot may
// hold nil, in which case a buffer is allocated from mem and stored there on
// the first resize.
type externalStorage struct {
	mem  memory.Allocator
	slot **memory.Buffer
}

func (s *externalStorage) isNull() bool { return *s.slot == nil }

func (s *externalStorage) bytes() []byte {
	if *s.slot == nil {
		return nil
	}
	return (*s.slot).Bytes()
}

func (s *externalStorage) resize(nbytes int) {
	if *s.slot == nil {
		*s.slot = memory.NewResizableBuffer(s.mem)
	}
	resizeZeroed(*s.slot, nbytes)
}

func (s *externalStorage) release() {}

func resizeZeroed(buf *memory.Buffer, nbytes int) {
	old := buf.Len()
	buf.Resize(nbytes)
	if nbytes > old {
		clear(buf.Bytes()[old:nbytes])
	}
}
