package buffer

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/columnar/internal/debug"
)

// Adaptor edits a resizable buffer as a sequence of T.
type Adaptor[T Element] struct {
	buf  *memory.Buffer
	size int
}

// NewAdaptor wraps buf, which must be resizable. The adaptor does not take
// ownership of buf.
func NewAdaptor[T Element](buf *memory.Buffer) *Adaptor[T] {
	return &Adaptor[T]{buf: buf, size: SizeOf[T]()}
}

// Len returns the number of whole elements in the buffer.
func (a *Adaptor[T]) Len() int { return a.buf.Len() / a.size }

// Values returns the elements. The slice is invalidated by any resize.
func (a *Adaptor[T]) Values() []T { return Cast[T](a.buf.Bytes()) }

// Resize sets the element count. New elements take fill.
func (a *Adaptor[T]) Resize(n int, fill T) {
	debug.Assert(n >= 0, "buffer: negative size")
	old := a.Len()
	a.buf.Resize(n * a.size)
	if n > old {
		values := a.Values()
		for i := old; i < n; i++ {
			values[i] = fill
		}
	}
}

// Insert inserts count copies of v before idx and returns idx.
func (a *Adaptor[T]) Insert(idx int, v T, count int) int {
	old := a.Len()
	debug.Assert(idx >= 0 && idx <= old && count >= 0, "buffer: insert position out of range")
	a.Resize(old+count, v)
	values := a.Values()
	copy(values[idx+count:], values[idx:old])
	for i := idx; i < idx+count; i++ {
		values[i] = v
	}
	return idx
}

// InsertValues inserts vs before idx and returns idx.
func (a *Adaptor[T]) InsertValues(idx int, vs []T) int {
	old := a.Len()
	debug.Assert(idx >= 0 && idx <= old, "buffer: insert position out of range")
	var zero T
	a.Resize(old+len(vs), zero)
	values := a.Values()
	copy(values[idx+len(vs):], values[idx:old])
	copy(values[idx:], vs)
	return idx
}

// Erase removes count elements starting at idx and returns idx.
func (a *Adaptor[T]) Erase(idx, count int) int {
	old := a.Len()
	debug.Assert(idx >= 0 && count >= 0 && idx+count <= old, "buffer: erase range out of bounds")
	values := a.Values()
	copy(values[idx:], values[idx+count:old])
	var zero T
	a.Resize(old-count, zero)
	return idx
}

// Append adds vs at the end.
func (a *Adaptor[T]) Append(vs ...T) { a.InsertValues(a.Len(), vs) }
