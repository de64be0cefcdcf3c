package proxy

import (
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/bitset"
	"github.com/VanDung-dev/columnar/layout"
)

func (p *Proxy) hasBitmap() bool { return p.dt != nil && layout.HasBitmap(p.dt) }

// ValidityBitmap returns a read-only bitmap over the first offset+length bits
// of the validity buffer. An absent buffer reads as all valid. It returns nil
// for types without a validity bitmap.
func (p *Proxy) ValidityBitmap() *bitset.Bitmap {
	if !p.hasBitmap() || len(p.buffers) == 0 {
		return nil
	}
	return bitset.NewBitmapView(p.buffers[0], int(p.array.Offset+p.array.Length), bitset.UnknownNullCount)
}

// editBitmap runs edit on a bitmap that writes through to the validity
// buffer, then refreshes the views and the null count. The bitmap covers
// offset+length bits; length itself is left to the caller.
func (p *Proxy) editBitmap(op string, edit func(bm *bitset.Bitmap) error) error {
	pd, err := p.mutableArray(op)
	if err != nil {
		return err
	}
	if !p.hasBitmap() || pd.NBuffers() == 0 {
		return errors.Wrapf(layout.ErrUnsupported, "%s: %s has no validity bitmap", op, p.dt)
	}
	bm := bitset.NewNonOwningBitmap(pd.Allocator(), pd.BufferSlot(0), int(p.array.Offset+p.array.Length), bitset.UnknownNullCount)
	if err := edit(bm); err != nil {
		return err
	}
	pd.Sync(p.array)
	p.updateBuffers()
	p.array.NullCount = countNulls(p.dt, p.array)
	return nil
}

// ResizeBitmap resizes the validity bitmap to hold n elements past the
// offset. New elements are valid or null as value says.
func (p *Proxy) ResizeBitmap(n int, value bool) error {
	return p.editBitmap("resize_bitmap", func(bm *bitset.Bitmap) error {
		if n < 0 {
			return errors.Wrapf(ErrOutOfRange, "resize_bitmap: negative size %d", n)
		}
		bm.Resize(int(p.array.Offset)+n, value)
		return nil
	})
}

// InsertBitmap inserts count validity bits before element index and returns
// index.
func (p *Proxy) InsertBitmap(index int, value bool, count int) (int, error) {
	err := p.editBitmap("insert_bitmap", func(bm *bitset.Bitmap) error {
		pos := int(p.array.Offset) + index
		if index < 0 || count < 0 || pos > bm.Len() {
			return errors.Wrapf(ErrOutOfRange, "insert_bitmap: index %d", index)
		}
		bm.Insert(pos, value, count)
		return nil
	})
	return index, err
}

// InsertBitmapValues inserts validity bits before element index and returns
// index.
func (p *Proxy) InsertBitmapValues(index int, values []bool) (int, error) {
	err := p.editBitmap("insert_bitmap", func(bm *bitset.Bitmap) error {
		pos := int(p.array.Offset) + index
		if index < 0 || pos > bm.Len() {
			return errors.Wrapf(ErrOutOfRange, "insert_bitmap: index %d", index)
		}
		bm.InsertValues(pos, values)
		return nil
	})
	return index, err
}

// EraseBitmap removes count validity bits starting at element index and
// returns index.
func (p *Proxy) EraseBitmap(index, count int) (int, error) {
	err := p.editBitmap("erase_bitmap", func(bm *bitset.Bitmap) error {
		pos := int(p.array.Offset) + index
		if index < 0 || count < 0 || pos+count > bm.Len() {
			return errors.Wrapf(ErrOutOfRange, "erase_bitmap: [%d, %d)", index, index+count)
		}
		bm.Erase(pos, count)
		return nil
	})
	return index, err
}

func (p *Proxy) PushBackBitmap(value bool) error {
	return p.editBitmap("push_back_bitmap", func(bm *bitset.Bitmap) error {
		bm.PushBack(value)
		return nil
	})
}

func (p *Proxy) PopBackBitmap() error {
	return p.editBitmap("pop_back_bitmap", func(bm *bitset.Bitmap) error {
		if bm.Len() <= int(p.array.Offset) {
			return errors.Wrap(ErrOutOfRange, "pop_back_bitmap: bitmap is empty")
		}
		bm.PopBack()
		return nil
	})
}

// SetValid marks element i valid or null and keeps the null count in step.
func (p *Proxy) SetValid(i int, valid bool) error {
	return p.editBitmap("set_valid", func(bm *bitset.Bitmap) error {
		if i < 0 || int64(i) >= p.array.Length {
			return errors.Wrapf(ErrOutOfRange, "set_valid: element %d of %d", i, p.array.Length)
		}
		pos := int(p.array.Offset) + i
		if !valid {
			bm.Materialize()
		}
		bm.Set(pos, valid)
		return nil
	})
}
