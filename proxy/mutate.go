package proxy

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/descriptor"
)

// mutableArray returns the private data of the array if op may change it.
func (p *Proxy) mutableArray(op string) (*descriptor.ArrayPrivateData, error) {
	pd, ok := descriptor.ArrayPrivate(p.array)
	if !ok {
		return nil, errors.Wrapf(ErrNotOwned, "%s: array was not created by this library", op)
	}
	if p.arrayKind == borrowedConst {
		return nil, errors.Wrapf(ErrImmutable, "%s: array is read-only", op)
	}
	return pd, nil
}

// mutableSchema returns the private data of the schema if op may change it.
func (p *Proxy) mutableSchema(op string) (*descriptor.SchemaPrivateData, error) {
	pd, ok := descriptor.SchemaPrivate(p.schema)
	if !ok {
		return nil, errors.Wrapf(ErrNotOwned, "%s: schema was not created by this library", op)
	}
	if p.schemaKind == borrowedConst {
		return nil, errors.Wrapf(ErrImmutable, "%s: schema is read-only", op)
	}
	return pd, nil
}

// SetFormat replaces the format string. A format that cannot be resolved
// against the current children and dictionary is rejected and nothing
// changes.
func (p *Proxy) SetFormat(format string) error {
	if _, err := p.mutableSchema("set_format"); err != nil {
		return err
	}
	old := p.schema.Format
	p.schema.Format = format
	dt, err := descriptor.DataTypeOf(p.schema)
	if err != nil {
		p.schema.Format = old
		return errors.Wrap(err, "set_format")
	}
	p.dt = dt
	p.updateBuffers()
	return nil
}

// SetDataType sets the format string describing dt. Children and dictionary
// are not touched.
func (p *Proxy) SetDataType(dt arrow.DataType) error {
	format, err := descriptor.FormatOf(dt)
	if err != nil {
		return errors.Wrap(err, "set_data_type")
	}
	return p.SetFormat(format)
}

// SetName sets the field name; an empty name removes it.
func (p *Proxy) SetName(name string) error {
	if _, err := p.mutableSchema("set_name"); err != nil {
		return err
	}
	p.schema.Name = name
	return nil
}

func (p *Proxy) SetMetadata(md arrow.Metadata) error {
	if _, err := p.mutableSchema("set_metadata"); err != nil {
		return err
	}
	p.schema.Metadata = descriptor.EncodeMetadata(md)
	return nil
}

// SetFlags replaces the schema flags. The data type is resolved again since
// the ordered and keys-sorted flags are part of it.
func (p *Proxy) SetFlags(flags descriptor.Flag) error {
	if _, err := p.mutableSchema("set_flags"); err != nil {
		return err
	}
	p.schema.Flags = flags
	p.refresh()
	return nil
}

// SetLength sets the element count and recomputes the buffer views and the
// null count.
func (p *Proxy) SetLength(length int64) error {
	if _, err := p.mutableArray("set_length"); err != nil {
		return err
	}
	if length < 0 {
		return errors.Wrapf(ErrOutOfRange, "set_length: negative length %d", length)
	}
	p.array.Length = length
	p.updateBuffers()
	p.array.NullCount = countNulls(p.dt, p.array)
	return nil
}

func (p *Proxy) SetNullCount(nullCount int64) error {
	if _, err := p.mutableArray("set_null_count"); err != nil {
		return err
	}
	p.array.NullCount = nullCount
	return nil
}

// SetOffset sets the element offset and recomputes the buffer views and the
// null count.
func (p *Proxy) SetOffset(offset int64) error {
	if _, err := p.mutableArray("set_offset"); err != nil {
		return err
	}
	if offset < 0 {
		return errors.Wrapf(ErrOutOfRange, "set_offset: negative offset %d", offset)
	}
	p.array.Offset = offset
	p.updateBuffers()
	p.array.NullCount = countNulls(p.dt, p.array)
	return nil
}

// SetNBuffers grows or shrinks the buffer list. Dropped buffers are released
// and new ones are absent.
func (p *Proxy) SetNBuffers(n int) error {
	pd, err := p.mutableArray("set_n_buffers")
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrapf(ErrOutOfRange, "set_n_buffers: negative count %d", n)
	}
	pd.ResizeBuffers(n)
	pd.Sync(p.array)
	p.updateBuffers()
	return nil
}

// SetBuffer replaces buffer i. The array takes ownership of buf, which may be
// nil to mark the buffer absent. Replacing the validity bitmap recomputes
// the null count.
func (p *Proxy) SetBuffer(i int, buf *memory.Buffer) error {
	pd, err := p.mutableArray("set_buffer")
	if err != nil {
		return err
	}
	if i < 0 || i >= pd.NBuffers() {
		return errors.Wrapf(ErrOutOfRange, "set_buffer: buffer %d of %d", i, pd.NBuffers())
	}
	pd.SetBuffer(i, buf)
	pd.Sync(p.array)
	p.updateBuffers()
	if i == 0 && p.hasBitmap() {
		p.array.NullCount = countNulls(p.dt, p.array)
	}
	return nil
}

// MutableBuffer returns buffer i for in-place resizing by typed adaptors.
// Call UpdateBuffers once done.
func (p *Proxy) MutableBuffer(i int) (*memory.Buffer, error) {
	pd, err := p.mutableArray("mutable_buffer")
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= pd.NBuffers() {
		return nil, errors.Wrapf(ErrOutOfRange, "mutable_buffer: buffer %d of %d", i, pd.NBuffers())
	}
	buf := pd.MutableBuffer(i)
	pd.Sync(p.array)
	return buf, nil
}

// UpdateBuffers recomputes the buffer views after buffers were edited through
// MutableBuffer.
func (p *Proxy) UpdateBuffers() {
	if pd, ok := descriptor.ArrayPrivate(p.array); ok {
		pd.Sync(p.array)
	}
	p.updateBuffers()
}

// UpdateNullCount recomputes the null count from the validity bitmap.
func (p *Proxy) UpdateNullCount() error {
	if _, err := p.mutableArray("update_null_count"); err != nil {
		return err
	}
	p.array.NullCount = countNulls(p.dt, p.array)
	return nil
}
