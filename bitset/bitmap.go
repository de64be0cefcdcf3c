package bitset

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/columnar/internal/debug"
)

// UnknownNullCount asks a bitmap view to count its unset bits itself.
const UnknownNullCount = -1

// Bitmap is a validity bitmap: a set bit marks a valid element, an unset bit
// a null. Without an underlying buffer every element is valid.
//
// The null count is maintained incrementally, so Count()+NullCount() == Len()
// after any sequence of mutations.
type Bitmap struct {
	base
}

func newBitmap(store storage, n, nullCount int) *Bitmap {
	bm := &Bitmap{base{store: store, size: n, absent: true, track: true}}
	switch {
	case store.isNull():
		bm.nulls = 0
	case nullCount < 0:
		bm.nulls = n - bitutil.CountSetBits(store.bytes(), 0, n)
	default:
		bm.nulls = nullCount
	}
	return bm
}

// NewBitmap creates an owned bitmap of n elements, all valid or all null.
// An all-valid bitmap allocates nothing.
func NewBitmap(mem memory.Allocator, n int, valid bool) *Bitmap {
	bm := newBitmap(&ownedStorage{mem: mem}, 0, 0)
	bm.Resize(n, valid)
	return bm
}

// NewBitmapFromBools creates an owned bitmap from per-element validity.
func NewBitmapFromBools(mem memory.Allocator, valid []bool) *Bitmap {
	bm := newBitmap(&ownedStorage{mem: mem}, 0, 0)
	bm.InsertValues(0, valid)
	return bm
}

// NewBitmapView wraps the first n bits of data. nullCount may be
// UnknownNullCount, in which case it is computed from the bits.
func NewBitmapView(data []byte, n, nullCount int) *Bitmap {
	return newBitmap(&viewStorage{data: data}, n, nullCount)
}

// NewNonOwningBitmap edits the validity buffer held in slot. A nil slot
// reads as all valid; writing a null materializes an all-valid buffer from
// mem first.
func NewNonOwningBitmap(mem memory.Allocator, slot **memory.Buffer, n, nullCount int) *Bitmap {
	return newBitmap(&externalStorage{mem: mem, slot: slot}, n, nullCount)
}

// Set marks pos valid or null.
//
// A bitmap without storage must not be written to; builds with the assert
// tag panic, other builds materialize an all-valid buffer first.
func (bm *Bitmap) Set(pos int, valid bool) {
	debug.Assert(!bm.store.isNull() || valid, "bitset: set on a bitmap without storage")
	bm.set(pos, valid)
}

// Materialize allocates an all-valid buffer if the bitmap has none, so that
// Set may record nulls.
func (bm *Bitmap) Materialize() {
	if bm.store.isNull() {
		bm.materialize()
	}
}

// NullCount returns the number of unset bits.
func (bm *Bitmap) NullCount() int { return bm.nulls }

// Release frees owned storage.
func (bm *Bitmap) Release() { bm.release() }
