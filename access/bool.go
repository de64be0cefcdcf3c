package access

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/bitset"
	"github.com/VanDung-dev/columnar/proxy"
)

// Bool reads and edits the bit-packed values of a boolean array.
//
// Reads go through a cached bit vector over the data buffer. Call
// UpdateDataView after editing the proxy by other means.
type Bool struct {
	window
	view *bitset.BitVector
}

func NewBool(p *proxy.Proxy) (*Bool, error) {
	if storageType(p.DataType()).ID() != arrow.BOOL {
		return nil, errors.Wrapf(ErrTypeMismatch, "%s is not boolean", p.DataType())
	}
	w, err := newWindow(p)
	if err != nil {
		return nil, err
	}
	b := &Bool{window: w}
	b.UpdateDataView()
	return b, nil
}

// UpdateDataView points the cached bit vector at the current data buffer.
func (b *Bool) UpdateDataView() {
	b.view = bitset.NewBitVectorView(b.data(), b.offset()+b.Len())
}

// Value returns element i.
func (b *Bool) Value(i int) bool { return b.view.Test(b.offset() + i) }

// At returns element i, or ErrOutOfRange.
func (b *Bool) At(i int) (bool, error) {
	if i < 0 || i >= b.Len() {
		return false, errors.Wrapf(proxy.ErrOutOfRange, "at: index %d of %d", i, b.Len())
	}
	return b.Value(i), nil
}

// All iterates over the elements and their index.
func (b *Bool) All() func(yield func(int, bool) bool) {
	return func(yield func(int, bool) bool) {
		for i := range b.Len() {
			if !yield(i, b.Value(i)) {
				return
			}
		}
	}
}

// edit runs fn on a bit vector writing through to the data buffer, which
// holds offset+length bits when fn starts.
func (b *Bool) edit(op string, fn func(bv *bitset.BitVector)) error {
	buf, err := b.p.MutableBuffer(b.index)
	if err != nil {
		return errors.Wrap(err, op)
	}
	slot := buf
	bv := bitset.NewNonOwningBitVector(b.p.Allocator(), &slot, b.offset()+b.Len())
	fn(bv)
	if slot != buf {
		if err := b.p.SetBuffer(b.index, slot); err != nil {
			return err
		}
	} else {
		b.p.UpdateBuffers()
	}
	b.UpdateDataView()
	return nil
}

// SetValue overwrites element i.
func (b *Bool) SetValue(i int, v bool) error {
	if i < 0 || i >= b.Len() {
		return errors.Wrapf(proxy.ErrOutOfRange, "set_value: index %d of %d", i, b.Len())
	}
	return b.edit("set_value", func(bv *bitset.BitVector) { bv.Set(b.offset()+i, v) })
}

// ResizeValues sets the number of values past the offset to n.
func (b *Bool) ResizeValues(n int, fill bool) error {
	if n < 0 {
		return errors.Wrapf(proxy.ErrOutOfRange, "resize_values: negative size %d", n)
	}
	return b.edit("resize_values", func(bv *bitset.BitVector) { bv.Resize(b.offset()+n, fill) })
}

// InsertValue inserts count copies of v before element i and returns i.
func (b *Bool) InsertValue(i int, v bool, count int) (int, error) {
	if err := b.checkIndex("insert_value", i, b.Len()); err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, errors.Wrapf(proxy.ErrOutOfRange, "insert_value: negative count %d", count)
	}
	return i, b.edit("insert_value", func(bv *bitset.BitVector) { bv.Insert(b.offset()+i, v, count) })
}

// InsertValues inserts vs before element i and returns i.
func (b *Bool) InsertValues(i int, vs []bool) (int, error) {
	if err := b.checkIndex("insert_values", i, b.Len()); err != nil {
		return 0, err
	}
	return i, b.edit("insert_values", func(bv *bitset.BitVector) { bv.InsertValues(b.offset()+i, vs) })
}

// EraseValues removes count values starting at element i and returns i.
func (b *Bool) EraseValues(i, count int) (int, error) {
	if count < 0 || i < 0 || i+count > b.Len() {
		return 0, errors.Wrapf(proxy.ErrOutOfRange, "erase_values: [%d, %d) of %d", i, i+count, b.Len())
	}
	return i, b.edit("erase_values", func(bv *bitset.BitVector) { bv.Erase(b.offset()+i, count) })
}
