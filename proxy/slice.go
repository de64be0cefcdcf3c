package proxy

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/descriptor"
)

// Clone returns a deep copy of p owning both of its descriptors. Children
// and dictionary are copied too, so the copy can be mutated and released
// independently of p. Cloning an empty proxy returns an empty proxy.
func (p *Proxy) Clone() (*Proxy, error) {
	if p.Empty() {
		return &Proxy{cfg: p.cfg}, nil
	}
	if p.array == nil || p.schema == nil {
		return nil, errors.Wrap(ErrInvalidHandles, "clone: a descriptor was extracted")
	}
	a, err := descriptor.CopyArray(p.cfg.mem, p.array, p.dt)
	if err != nil {
		return nil, errors.Wrap(err, "clone")
	}
	s, err := descriptor.CopySchema(p.schema)
	if err != nil {
		descriptor.ReleaseArray(a)
		return nil, errors.Wrap(err, "clone")
	}
	n := copiedBytes(a)
	p.cfg.metrics.RecordCopy(n)
	level.Debug(p.cfg.logger).Log("msg", "copied descriptors", "format", s.Format, "bytes", n)

	c := newProxy(a, s, owned, owned, p.cfg)
	c.dt = p.dt
	c.refresh()
	return c, nil
}

func copiedBytes(a *descriptor.ArrowArray) int {
	n := 0
	for _, b := range a.Buffers {
		n += len(b)
	}
	for _, c := range a.Children {
		n += copiedBytes(c)
	}
	if a.Dictionary != nil {
		n += copiedBytes(a.Dictionary)
	}
	return n
}

func checkRange(op string, start, end int64) error {
	if start < 0 || start > end {
		return errors.Wrapf(ErrOutOfRange, "%s: [%d, %d)", op, start, end)
	}
	return nil
}

// Slice returns a deep copy of elements [start, end). The copy shares no
// memory with p; its offset is p's offset plus start.
//
// end is not checked against the buffers: elements past them are not
// backed by memory and must not be read.
func (p *Proxy) Slice(start, end int64) (*Proxy, error) {
	if err := checkRange("slice", start, end); err != nil {
		return nil, err
	}
	c, err := p.Clone()
	if err != nil {
		return nil, err
	}
	c.array.Offset += start
	c.array.Length = end - start
	c.updateBuffers()
	c.array.NullCount = countNulls(c.dt, c.array)
	return c, nil
}

// SliceView returns a proxy over elements [start, end) sharing p's buffers.
// The view owns nothing, cannot be mutated and must not outlive p.
func (p *Proxy) SliceView(start, end int64) (*Proxy, error) {
	if err := checkRange("slice_view", start, end); err != nil {
		return nil, err
	}
	if p.array == nil || p.schema == nil {
		return nil, errors.Wrap(ErrInvalidHandles, "slice_view: a descriptor was extracted")
	}
	a := descriptor.ShallowArray(p.array)
	s := descriptor.ShallowSchema(p.schema)
	a.Offset += start
	a.Length = end - start
	a.NullCount = countNulls(p.dt, a)

	v := newProxy(a, s, owned, owned, p.cfg)
	v.dt = p.dt
	v.refresh()
	return v, nil
}

// Build creates a fully owned proxy for an array of field.Type. Ownership of
// buffers passes to the array. children and dictionary are consumed as by
// AddChildren; when field.Type is a dictionary type, dictionary holds its
// values. The null count is derived from the validity bitmap.
func Build(field arrow.Field, length, offset int64, buffers []*memory.Buffer, children []*Proxy, dictionary *Proxy, opts ...Option) (*Proxy, error) {
	if err := checkAdoptable("build", children...); err != nil {
		return nil, err
	}
	if dictionary != nil {
		if err := checkAdoptable("build", dictionary); err != nil {
			return nil, err
		}
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	arrayLinks := make([]descriptor.ArrayLink, len(children))
	schemaLinks := make([]descriptor.SchemaLink, len(children))
	for i, c := range children {
		arrayLinks[i], schemaLinks[i] = links(c)
	}
	var arrayDict *descriptor.ArrayLink
	var schemaDict *descriptor.SchemaLink
	if dictionary != nil {
		al, sl := links(dictionary)
		arrayDict, schemaDict = &al, &sl
	}

	s, err := descriptor.NewSchemaForField(field, schemaLinks, schemaDict)
	if err != nil {
		return nil, errors.Wrap(err, "build")
	}
	for _, c := range children {
		c.detach()
	}
	if dictionary != nil {
		dictionary.detach()
	}

	a := descriptor.NewArrowArray(cfg.mem, length, 0, offset, buffers, arrayLinks, arrayDict)
	p, err := New(OwnArray(a), OwnSchema(s), opts...)
	if err != nil {
		descriptor.ReleaseArray(a)
		descriptor.ReleaseSchema(s)
		return nil, errors.Wrap(err, "build")
	}
	p.array.NullCount = countNulls(p.dt, p.array)
	return p, nil
}
