package bridge

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/descriptor"
	"github.com/VanDung-dev/columnar/layout"
	"github.com/VanDung-dev/columnar/proxy"
)

// ToArrayData wraps the buffers of p in an arrow.ArrayData without copying.
// The result aliases p and must be released before p is. It fails when a
// child slot was added but never set.
func ToArrayData(p *proxy.Proxy) (arrow.ArrayData, error) {
	buffers := make([]*memory.Buffer, 0, p.NBuffers()+1)
	if !layout.HasBitmap(p.DataType()) {
		buffers = append(buffers, nil)
	}
	for _, b := range p.Buffers() {
		if b == nil {
			buffers = append(buffers, nil)
			continue
		}
		buffers = append(buffers, memory.NewBufferBytes(b))
	}

	children := make([]arrow.ArrayData, 0, p.NChildren())
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()
	for i, c := range p.Children() {
		if c == nil {
			return nil, errors.Wrapf(proxy.ErrInvalidHandles, "child %d is not set", i)
		}
		child, err := ToArrayData(c)
		if err != nil {
			return nil, errors.Wrapf(err, "child %d", i)
		}
		children = append(children, child)
	}

	if d := p.Dictionary(); d != nil {
		dict, err := ToArrayData(d)
		if err != nil {
			return nil, errors.Wrap(err, "dictionary")
		}
		defer dict.Release()
		return array.NewDataWithDictionary(p.DataType(), int(p.Length()), buffers, int(p.NullCount()), int(p.Offset()), dict.(*array.Data)), nil
	}
	return array.NewData(p.DataType(), int(p.Length()), buffers, children, int(p.NullCount()), int(p.Offset())), nil
}

// FromArrayData builds an owned proxy sharing the buffers of data, which
// stay alive until the proxy is released. field names the array and gives
// its nullability and metadata; its type must match data.
func FromArrayData(data arrow.ArrayData, field arrow.Field, opts ...proxy.Option) (*proxy.Proxy, error) {
	if !arrow.TypeEqual(data.DataType(), field.Type) {
		return nil, errors.Wrapf(layout.ErrLayoutMismatch, "field type %s, data type %s", field.Type, data.DataType())
	}
	s, err := descriptor.SchemaForField(field)
	if err != nil {
		return nil, err
	}
	a, err := arrayFromData(proxy.AllocatorOf(opts...), data)
	if err != nil {
		descriptor.ReleaseSchema(s)
		return nil, err
	}
	p, err := proxy.New(proxy.OwnArray(a), proxy.OwnSchema(s), opts...)
	if err != nil {
		descriptor.ReleaseArray(a)
		descriptor.ReleaseSchema(s)
		return nil, err
	}
	return p, nil
}

func arrayFromData(mem memory.Allocator, data arrow.ArrayData) (*descriptor.ArrowArray, error) {
	src := data.Buffers()
	if !layout.HasBitmap(data.DataType()) && len(src) > 0 {
		src = src[1:]
	}
	buffers := make([]*memory.Buffer, len(src))
	for i, b := range src {
		if b != nil {
			b.Retain()
			buffers[i] = b
		}
	}

	children := make([]descriptor.ArrayLink, 0, len(data.Children()))
	var dict *descriptor.ArrayLink
	cleanup := func() {
		descriptor.ReleaseArray(descriptor.NewArrowArray(mem, 0, 0, 0, buffers, children, dict))
	}
	for i, c := range data.Children() {
		child, err := arrayFromData(mem, c)
		if err != nil {
			cleanup()
			return nil, errors.Wrapf(err, "child %d", i)
		}
		children = append(children, descriptor.OwnedArray(child))
	}
	if data.DataType().ID() == arrow.DICTIONARY {
		d := data.Dictionary()
		if d == nil || d.(*array.Data) == nil {
			cleanup()
			return nil, errors.Wrap(layout.ErrLayoutMismatch, "dictionary array without values")
		}
		values, err := arrayFromData(mem, d)
		if err != nil {
			cleanup()
			return nil, errors.Wrap(err, "dictionary")
		}
		link := descriptor.OwnedArray(values)
		dict = &link
	}
	return descriptor.NewArrowArray(mem, int64(data.Len()), int64(data.NullN()), int64(data.Offset()), buffers, children, dict), nil
}
