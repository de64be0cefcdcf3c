package descriptor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/layout"
)

// CopyArray deep copies src, an array of type dt, into a library-owned array
// whose buffers come from mem. Each buffer is copied over the byte range its
// layout role implies; children and dictionary are copied recursively and
// owned by the result.
func CopyArray(mem memory.Allocator, src *ArrowArray, dt arrow.DataType) (*ArrowArray, error) {
	if src.IsReleased() {
		return nil, errors.New("copy of a released array")
	}

	views := layout.BufferViews(dt, src.Length, src.Offset, src.Buffers)
	buffers := make([]*memory.Buffer, len(views))
	for i, v := range views {
		if v == nil {
			continue
		}
		buf := memory.NewResizableBuffer(mem)
		buf.Resize(len(v))
		copy(buf.Bytes(), v)
		buffers[i] = buf
	}

	fields := ChildFields(dt)
	children := make([]ArrayLink, 0, len(src.Children))
	var dict *ArrayLink
	cleanup := func() {
		for _, c := range children {
			c.release()
		}
		if dict != nil {
			dict.release()
		}
		for _, b := range buffers {
			if b != nil {
				b.Release()
			}
		}
	}

	if len(fields) != len(src.Children) {
		cleanup()
		return nil, errors.Wrapf(layout.ErrLayoutMismatch, "%s: expected %d children, got %d", dt, len(fields), len(src.Children))
	}
	for i, c := range src.Children {
		child, err := CopyArray(mem, c, fields[i].Type)
		if err != nil {
			cleanup()
			return nil, errors.Wrapf(err, "child %d", i)
		}
		children = append(children, OwnedArray(child))
	}

	if src.Dictionary != nil {
		dictType, ok := dictionaryType(dt)
		if !ok {
			cleanup()
			return nil, errors.Wrapf(layout.ErrLayoutMismatch, "%s: dictionary on a non dictionary type", dt)
		}
		values, err := CopyArray(mem, src.Dictionary, dictType.ValueType)
		if err != nil {
			cleanup()
			return nil, errors.Wrap(err, "dictionary")
		}
		link := OwnedArray(values)
		dict = &link
	}

	a := NewArrowArray(mem, src.Length, src.NullCount, src.Offset, buffers, children, dict)
	pd := a.PrivateData.(*ArrayPrivateData)
	for i := range pd.resizable {
		pd.resizable[i] = true
	}
	return a, nil
}

// CopySchema deep copies src into a library-owned schema.
func CopySchema(src *ArrowSchema) (*ArrowSchema, error) {
	if src.IsReleased() {
		return nil, errors.New("copy of a released schema")
	}
	children := make([]SchemaLink, 0, len(src.Children))
	for _, c := range src.Children {
		child, err := CopySchema(c)
		if err != nil {
			for _, l := range children {
				l.release()
			}
			return nil, err
		}
		children = append(children, OwnedSchema(child))
	}
	var dict *SchemaLink
	if src.Dictionary != nil {
		values, err := CopySchema(src.Dictionary)
		if err != nil {
			for _, l := range children {
				l.release()
			}
			return nil, err
		}
		link := OwnedSchema(values)
		dict = &link
	}

	pd := &SchemaPrivateData{children: children, dict: dict}
	s := &ArrowSchema{
		Format:      src.Format,
		Name:        src.Name,
		Flags:       src.Flags,
		Release:     releaseSchema,
		PrivateData: pd,
	}
	if src.Metadata != nil {
		s.Metadata = append([]byte(nil), src.Metadata...)
	}
	pd.Sync(s)
	return s, nil
}

// ShallowArray returns a copy of src sharing its buffers. Children and
// dictionary are shallow copies too. The copy owns nothing: its release only
// resets it, and it is not recognised as library-built, so it cannot be
// mutated through a proxy.
func ShallowArray(src *ArrowArray) *ArrowArray {
	a := &ArrowArray{
		Length:    src.Length,
		NullCount: src.NullCount,
		Offset:    src.Offset,
		Buffers:   append([][]byte(nil), src.Buffers...),
		Release:   releaseArrayNoop,
	}
	if len(src.Children) > 0 {
		a.Children = make([]*ArrowArray, len(src.Children))
		for i, c := range src.Children {
			a.Children[i] = ShallowArray(c)
		}
	}
	if src.Dictionary != nil {
		a.Dictionary = ShallowArray(src.Dictionary)
	}
	return a
}

// ShallowSchema returns a non-owning copy of src, as ShallowArray does for
// arrays.
func ShallowSchema(src *ArrowSchema) *ArrowSchema {
	s := &ArrowSchema{
		Format:   src.Format,
		Name:     src.Name,
		Metadata: src.Metadata,
		Flags:    src.Flags,
		Release:  releaseSchemaNoop,
	}
	if len(src.Children) > 0 {
		s.Children = make([]*ArrowSchema, len(src.Children))
		for i, c := range src.Children {
			s.Children[i] = ShallowSchema(c)
		}
	}
	if src.Dictionary != nil {
		s.Dictionary = ShallowSchema(src.Dictionary)
	}
	return s
}

func dictionaryType(dt arrow.DataType) (*arrow.DictionaryType, bool) {
	if ext, ok := dt.(arrow.ExtensionType); ok {
		return dictionaryType(ext.StorageType())
	}
	d, ok := dt.(*arrow.DictionaryType)
	return d, ok
}
