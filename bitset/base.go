package bitset

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/columnar/internal/debug"
)

// base is the shared bit container. absent is the value every position
// reads as while the storage is null; track enables null counting.
type base struct {
	store  storage
	size   int
	nulls  int
	absent bool
	track  bool
}

func (b *base) Len() int { return b.size }

// IsNull reports whether the container has no underlying buffer.
func (b *base) IsNull() bool { return b.store.isNull() }

// Bytes returns the packed bits, nil when there is no underlying buffer.
func (b *base) Bytes() []byte {
	if b.store.isNull() {
		return nil
	}
	return b.store.bytes()[:bitutil.BytesForBits(int64(b.size))]
}

// Test returns the bit at pos.
func (b *base) Test(pos int) bool {
	debug.Assert(pos >= 0 && pos < b.size, "bitset: position out of range")
	if b.store.isNull() {
		return b.absent
	}
	return bitutil.BitIsSet(b.store.bytes(), pos)
}

func (b *base) set(pos int, v bool) {
	debug.Assert(pos >= 0 && pos < b.size, "bitset: position out of range")
	if b.store.isNull() {
		if v == b.absent {
			return
		}
		b.materialize()
	}
	data := b.store.bytes()
	if bitutil.BitIsSet(data, pos) == v {
		return
	}
	bitutil.SetBitTo(data, pos, v)
	if b.track {
		if v {
			b.nulls--
		} else {
			b.nulls++
		}
	}
}

// Count returns the number of set bits.
func (b *base) Count() int {
	if b.store.isNull() {
		if b.absent {
			return b.size
		}
		return 0
	}
	return bitutil.CountSetBits(b.store.bytes(), 0, b.size)
}

// All iterates over every position and its bit.
func (b *base) All() func(yield func(int, bool) bool) {
	return func(yield func(int, bool) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(i, b.Test(i)) {
				return
			}
		}
	}
}

// Resize changes the number of bits. New positions take value.
func (b *base) Resize(n int, value bool) {
	debug.Assert(n >= 0, "bitset: negative size")
	if b.store.isNull() && (value == b.absent || n <= b.size) {
		b.size = n
		return
	}
	if b.store.isNull() {
		b.materialize()
	}
	old := b.size
	if n < old && b.track {
		data := b.store.bytes()
		removed := old - n
		b.nulls -= removed - bitutil.CountSetBits(data, n, removed)
	}
	b.grow(n)
	if n > old {
		fillRange(b.store.bytes(), old, n, value)
		if b.track && !value {
			b.nulls += n - old
		}
	}
	b.zeroUnusedBits()
}

// PushBack appends one bit.
func (b *base) PushBack(v bool) { b.Resize(b.size+1, v) }

// PopBack removes the last bit.
func (b *base) PopBack() {
	debug.Assert(b.size > 0, "bitset: pop on empty container")
	b.Resize(b.size-1, false)
}

// Insert inserts count copies of value before pos and returns pos.
//
// Bits at and after pos are moved one at a time, there is no word-level
// shifting.
func (b *base) Insert(pos int, value bool, count int) int {
	debug.Assert(pos >= 0 && pos <= b.size, "bitset: insert position out of range")
	if count == 0 {
		return pos
	}
	if b.store.isNull() {
		if value == b.absent {
			b.size += count
			return pos
		}
		b.materialize()
	}
	old := b.size
	b.grow(old + count)
	data := b.store.bytes()
	for i := old - 1; i >= pos; i-- {
		bitutil.SetBitTo(data, i+count, bitutil.BitIsSet(data, i))
	}
	fillRange(data, pos, pos+count, value)
	if b.track && !value {
		b.nulls += count
	}
	b.zeroUnusedBits()
	return pos
}

// InsertValues inserts values before pos and returns pos.
func (b *base) InsertValues(pos int, values []bool) int {
	debug.Assert(pos >= 0 && pos <= b.size, "bitset: insert position out of range")
	if len(values) == 0 {
		return pos
	}
	if b.store.isNull() {
		allAbsent := true
		for _, v := range values {
			if v != b.absent {
				allAbsent = false
				break
			}
		}
		if allAbsent {
			b.size += len(values)
			return pos
		}
		b.materialize()
	}
	count := len(values)
	old := b.size
	b.grow(old + count)
	data := b.store.bytes()
	for i := old - 1; i >= pos; i-- {
		bitutil.SetBitTo(data, i+count, bitutil.BitIsSet(data, i))
	}
	for i, v := range values {
		bitutil.SetBitTo(data, pos+i, v)
		if b.track && !v {
			b.nulls++
		}
	}
	b.zeroUnusedBits()
	return pos
}

// Erase removes count bits starting at pos and returns pos.
func (b *base) Erase(pos, count int) int {
	debug.Assert(pos >= 0 && count >= 0 && pos+count <= b.size, "bitset: erase range out of bounds")
	if count == 0 {
		return pos
	}
	if b.store.isNull() {
		b.size -= count
		return pos
	}
	data := b.store.bytes()
	if b.track {
		b.nulls -= count - bitutil.CountSetBits(data, pos, count)
	}
	for i := pos; i < b.size-count; i++ {
		bitutil.SetBitTo(data, i, bitutil.BitIsSet(data, i+count))
	}
	b.grow(b.size - count)
	b.zeroUnusedBits()
	return pos
}

// Clear drops every bit. The underlying buffer is kept.
func (b *base) Clear() {
	if b.store.isNull() {
		b.size = 0
		return
	}
	b.grow(0)
	b.nulls = 0
}

// grow resizes the storage to hold n bits without touching the null count.
// New bytes are zero.
func (b *base) grow(n int) {
	b.store.resize(int(bitutil.BytesForBits(int64(n))))
	b.size = n
}

// materialize allocates storage for the current size, every bit set to the
// absent value.
func (b *base) materialize() {
	b.store.resize(int(bitutil.BytesForBits(int64(b.size))))
	if b.absent {
		data := b.store.bytes()
		memory.Set(data, 0xff)
		b.zeroUnusedBits()
	}
}

// zeroUnusedBits clears the bits of the last byte past size so that
// byte-wide popcounts only see live positions.
func (b *base) zeroUnusedBits() {
	if b.store.isNull() {
		return
	}
	data := b.store.bytes()
	if rem := b.size % 8; rem != 0 && len(data) > b.size/8 {
		data[b.size/8] &= byte(1)<<rem - 1
	}
}

func (b *base) release() {
	b.store.release()
	b.size = 0
	b.nulls = 0
}

// fillRange sets bits [from, to) of data to v. Whole bytes are written at once.
func fillRange(data []byte, from, to int, v bool) {
	i := from
	for ; i < to && i%8 != 0; i++ {
		bitutil.SetBitTo(data, i, v)
	}
	if whole := (to - i) / 8; whole > 0 {
		fill := byte(0)
		if v {
			fill = 0xff
		}
		memory.Set(data[i/8:i/8+whole], fill)
		i += whole * 8
	}
	for ; i < to; i++ {
		bitutil.SetBitTo(data, i, v)
	}
}
