package bitset

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// BitVector is a packed sequence of booleans. Without an underlying buffer
// every position reads as false.
type BitVector struct {
	base
}

// NewBitVector creates an owned vector of n bits set to value. Storage is
// only allocated when some bit is true.
func NewBitVector(mem memory.Allocator, n int, value bool) *BitVector {
	v := &BitVector{base{store: &ownedStorage{mem: mem}}}
	v.Resize(n, value)
	return v
}

// NewBitVectorFromBools creates an owned vector holding values.
func NewBitVectorFromBools(mem memory.Allocator, values []bool) *BitVector {
	v := &BitVector{base{store: &ownedStorage{mem: mem}}}
	v.InsertValues(0, values)
	return v
}

// NewBitVectorView wraps the first n bits of data without copying. A nil
// data reads as all false. The view cannot grow past cap(data).
func NewBitVectorView(data []byte, n int) *BitVector {
	return &BitVector{base{store: &viewStorage{data: data}, size: n}}
}

// NewNonOwningBitVector edits the buffer held in slot. When the slot is nil
// and a bit is set, a buffer is allocated from mem and stored in the slot.
func NewNonOwningBitVector(mem memory.Allocator, slot **memory.Buffer, n int) *BitVector {
	return &BitVector{base{store: &externalStorage{mem: mem, slot: slot}, size: n}}
}

// Set writes the bit at pos. The first true written to a vector without
// storage allocates it.
func (v *BitVector) Set(pos int, value bool) { v.set(pos, value) }

// Release frees owned storage. Views and non-owning vectors only forget
// their size.
func (v *BitVector) Release() { v.release() }
