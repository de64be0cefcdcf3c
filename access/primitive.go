package access

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/buffer"
	"github.com/VanDung-dev/columnar/proxy"
)

// Primitive reads and edits the values of a fixed-width array as T.
type Primitive[T buffer.Element] struct {
	window
}

// NewPrimitive checks that the values of p are as wide as T. Dictionary
// arrays expose their indices.
func NewPrimitive[T buffer.Element](p *proxy.Proxy) (*Primitive[T], error) {
	w, err := newWindow(p)
	if err != nil {
		return nil, err
	}
	fw, ok := storageType(p.DataType()).(arrow.FixedWidthDataType)
	if !ok || fw.ID() == arrow.BOOL || fw.BitWidth() != 8*buffer.SizeOf[T]() {
		return nil, errors.Wrapf(ErrTypeMismatch, "%s as %d byte elements", p.DataType(), buffer.SizeOf[T]())
	}
	return &Primitive[T]{window: w}, nil
}

// Data returns the elements of the array, starting at the offset.
func (a *Primitive[T]) Data() []T {
	all := buffer.Cast[T](a.data())
	start := min(a.offset(), len(all))
	end := min(a.offset()+a.Len(), len(all))
	return all[start:end]
}

// Value returns element i. It panics when i is out of range.
func (a *Primitive[T]) Value(i int) T { return a.Data()[i] }

// At returns element i, or ErrOutOfRange.
func (a *Primitive[T]) At(i int) (T, error) {
	data := a.Data()
	if i < 0 || i >= len(data) {
		var zero T
		return zero, errors.Wrapf(proxy.ErrOutOfRange, "at: index %d of %d", i, len(data))
	}
	return data[i], nil
}

// All iterates over the elements and their index.
func (a *Primitive[T]) All() func(yield func(int, T) bool) {
	return func(yield func(int, T) bool) {
		for i, v := range a.Data() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// adaptor returns the data buffer as a sequence of offset+length elements.
func (a *Primitive[T]) adaptor(op string) (*buffer.Adaptor[T], error) {
	buf, err := a.p.MutableBuffer(a.index)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if buf == nil {
		buf = memory.NewResizableBuffer(a.p.Allocator())
		if err := a.p.SetBuffer(a.index, buf); err != nil {
			return nil, err
		}
		if buf, err = a.p.MutableBuffer(a.index); err != nil {
			return nil, err
		}
	}
	ad := buffer.NewAdaptor[T](buf)
	var zero T
	ad.Resize(a.offset()+a.Len(), zero)
	return ad, nil
}

// ResizeValues sets the number of values past the offset to n. New values
// take fill.
func (a *Primitive[T]) ResizeValues(n int, fill T) error {
	if n < 0 {
		return errors.Wrapf(proxy.ErrOutOfRange, "resize_values: negative size %d", n)
	}
	ad, err := a.adaptor("resize_values")
	if err != nil {
		return err
	}
	ad.Resize(a.offset()+n, fill)
	a.p.UpdateBuffers()
	return nil
}

// InsertValue inserts count copies of v before element i and returns i.
func (a *Primitive[T]) InsertValue(i int, v T, count int) (int, error) {
	if err := a.checkIndex("insert_value", i, a.Len()); err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, errors.Wrapf(proxy.ErrOutOfRange, "insert_value: negative count %d", count)
	}
	ad, err := a.adaptor("insert_value")
	if err != nil {
		return 0, err
	}
	ad.Insert(a.offset()+i, v, count)
	a.p.UpdateBuffers()
	return i, nil
}

// InsertValues inserts vs before element i and returns i.
func (a *Primitive[T]) InsertValues(i int, vs []T) (int, error) {
	if err := a.checkIndex("insert_values", i, a.Len()); err != nil {
		return 0, err
	}
	ad, err := a.adaptor("insert_values")
	if err != nil {
		return 0, err
	}
	ad.InsertValues(a.offset()+i, vs)
	a.p.UpdateBuffers()
	return i, nil
}

// EraseValues removes count values starting at element i and returns i.
func (a *Primitive[T]) EraseValues(i, count int) (int, error) {
	if count < 0 || i < 0 || i+count > a.Len() {
		return 0, errors.Wrapf(proxy.ErrOutOfRange, "erase_values: [%d, %d) of %d", i, i+count, a.Len())
	}
	ad, err := a.adaptor("erase_values")
	if err != nil {
		return 0, err
	}
	ad.Erase(a.offset()+i, count)
	a.p.UpdateBuffers()
	return i, nil
}

// SetValue overwrites element i.
func (a *Primitive[T]) SetValue(i int, v T) error {
	if i < 0 || i >= a.Len() {
		return errors.Wrapf(proxy.ErrOutOfRange, "set_value: index %d of %d", i, a.Len())
	}
	ad, err := a.adaptor("set_value")
	if err != nil {
		return err
	}
	ad.Values()[a.offset()+i] = v
	a.p.UpdateBuffers()
	return nil
}
