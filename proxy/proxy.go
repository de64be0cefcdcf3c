package proxy

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/descriptor"
	"github.com/VanDung-dev/columnar/internal/debug"
	"github.com/VanDung-dev/columnar/layout"
)

// Proxy unifies an ArrowArray and the ArrowSchema describing it.
type Proxy struct {
	array      *descriptor.ArrowArray
	schema     *descriptor.ArrowSchema
	arrayKind  handleKind
	schemaKind handleKind

	dt         arrow.DataType
	buffers    [][]byte
	children   []*Proxy
	dictionary *Proxy

	cfg config
}

// New wraps an array and its schema. The handles say who releases each
// descriptor and whether it may be mutated; see the package documentation
// for the accepted combinations.
func New(a ArrayHandle, s SchemaHandle, opts ...Option) (*Proxy, error) {
	if !validShape(a.kind, s.kind) {
		return nil, errors.Wrapf(ErrInvalidHandles, "%s array with %s schema", a.kind, s.kind)
	}
	if a.array.IsReleased() {
		return nil, errors.Wrap(ErrInvalidHandles, "array is released")
	}
	if s.schema.IsReleased() {
		return nil, errors.Wrap(ErrInvalidHandles, "schema is released")
	}
	if len(a.array.Children) != len(s.schema.Children) {
		return nil, errors.Wrapf(ErrInconsistent, "array has %d children, schema has %d",
			len(a.array.Children), len(s.schema.Children))
	}
	if (a.array.Dictionary == nil) != (s.schema.Dictionary == nil) {
		return nil, errors.Wrap(ErrInconsistent, "dictionary present on only one side")
	}
	dt, err := descriptor.DataTypeOf(s.schema)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	p := newProxy(a.array, s.schema, a.kind, s.kind, cfg)
	p.dt = dt
	if debug.Enabled {
		err := layout.ValidateFormatWithArray(dt, len(p.array.Buffers), len(p.array.Children))
		debug.Assert(err == nil, "proxy: array layout does not match its format")
	}
	p.refresh()
	p.cfg.metrics.ProxiesCreated.Inc()
	return p, nil
}

func newProxy(a *descriptor.ArrowArray, s *descriptor.ArrowSchema, ak, sk handleKind, cfg config) *Proxy {
	return &Proxy{array: a, schema: s, arrayKind: ak, schemaKind: sk, cfg: cfg}
}

// Empty reports whether the proxy holds neither descriptor, after a move,
// a release or extracting both sides.
func (p *Proxy) Empty() bool { return p.array == nil && p.schema == nil }

func (p *Proxy) Format() string { return p.schema.Format }

// DataType returns the logical type described by the schema.
func (p *Proxy) DataType() arrow.DataType { return p.dt }

// Name returns the field name, empty when the schema has none.
func (p *Proxy) Name() string { return p.schema.Name }

// Metadata decodes the schema metadata.
func (p *Proxy) Metadata() (arrow.Metadata, error) {
	return descriptor.DecodeMetadata(p.schema.Metadata)
}

// ExtensionName returns the extension type name recorded in the metadata.
func (p *Proxy) ExtensionName() (string, bool) {
	md, err := p.Metadata()
	if err != nil {
		return "", false
	}
	return descriptor.ExtensionName(md)
}

func (p *Proxy) Flags() descriptor.Flag { return p.schema.Flags }
func (p *Proxy) Length() int64          { return p.array.Length }
func (p *Proxy) NullCount() int64       { return p.array.NullCount }
func (p *Proxy) Offset() int64          { return p.array.Offset }
func (p *Proxy) NBuffers() int          { return len(p.array.Buffers) }
func (p *Proxy) NChildren() int         { return len(p.array.Children) }

// Buffers returns the buffers sized by their layout role. The views alias
// the array and are invalidated by the next mutation.
func (p *Proxy) Buffers() [][]byte { return p.buffers }

// Buffer returns the view of buffer i.
func (p *Proxy) Buffer(i int) ([]byte, error) {
	if i < 0 || i >= len(p.buffers) {
		return nil, errors.Wrapf(ErrOutOfRange, "buffer %d of %d", i, len(p.buffers))
	}
	return p.buffers[i], nil
}

// Children returns a borrowing proxy per child. A slot left empty by
// ResizeChildren is nil.
func (p *Proxy) Children() []*Proxy { return p.children }

// Child returns the proxy of child i.
func (p *Proxy) Child(i int) (*Proxy, error) {
	if i < 0 || i >= len(p.children) {
		return nil, errors.Wrapf(ErrOutOfRange, "child %d of %d", i, len(p.children))
	}
	return p.children[i], nil
}

// Dictionary returns a borrowing proxy over the dictionary, nil when the
// array is not dictionary encoded.
func (p *Proxy) Dictionary() *Proxy { return p.dictionary }

// IsCreatedWithLibrary reports whether both descriptors were built by the
// descriptor package.
func (p *Proxy) IsCreatedWithLibrary() bool {
	return p.IsArrayCreatedWithLibrary() && p.IsSchemaCreatedWithLibrary()
}

func (p *Proxy) IsArrayCreatedWithLibrary() bool {
	return descriptor.IsArrayCreatedWithLibrary(p.array)
}

func (p *Proxy) IsSchemaCreatedWithLibrary() bool {
	return descriptor.IsSchemaCreatedWithLibrary(p.schema)
}

// Allocator returns the allocator used for copies and grown buffers.
func (p *Proxy) Allocator() memory.Allocator { return p.cfg.mem }

// OwnsArray reports whether releasing the proxy releases its array.
func (p *Proxy) OwnsArray() bool { return p.array != nil && p.arrayKind == owned }

// OwnsSchema reports whether releasing the proxy releases its schema.
func (p *Proxy) OwnsSchema() bool { return p.schema != nil && p.schemaKind == owned }

// Array returns the array after setting the nullable flag on the schema when
// the array or its dictionary holds nulls.
func (p *Proxy) Array() *descriptor.ArrowArray {
	p.sanitize()
	return p.array
}

// Schema returns the schema, sanitized as by Array.
func (p *Proxy) Schema() *descriptor.ArrowSchema {
	p.sanitize()
	return p.schema
}

func (p *Proxy) sanitize() {
	if p.array == nil || p.schema == nil || p.schemaKind == borrowedConst {
		return
	}
	nulls := p.array.NullCount > 0
	if d := p.array.Dictionary; d != nil && d.NullCount > 0 {
		nulls = true
	}
	if nulls {
		p.schema.Flags |= descriptor.FlagNullable
	}
}

// refresh resolves the data type again and rebuilds every derived view.
// When the schema is mid-edit and does not parse, the previous type is kept.
func (p *Proxy) refresh() {
	if pd, ok := descriptor.ArrayPrivate(p.array); ok {
		pd.Sync(p.array)
	}
	if pd, ok := descriptor.SchemaPrivate(p.schema); ok {
		pd.Sync(p.schema)
	}
	if dt, err := descriptor.DataTypeOf(p.schema); err == nil {
		p.dt = dt
	} else {
		level.Debug(p.cfg.logger).Log("msg", "keeping previous data type", "format", p.schema.Format, "err", err)
	}
	p.updateBuffers()
	p.updateChildren()
	p.updateDictionary()
}

func (p *Proxy) updateBuffers() {
	if p.dt == nil {
		p.buffers = append([][]byte(nil), p.array.Buffers...)
	} else {
		p.buffers = layout.BufferViews(p.dt, p.array.Length, p.array.Offset, p.array.Buffers)
	}
	p.cfg.metrics.BufferRecomputes.Inc()
}

// derivedKinds returns the handle kinds of proxies over descriptors reached
// through p: always borrowed, read-only if p is.
func (p *Proxy) derivedKinds() (handleKind, handleKind) {
	ak, sk := borrowed, borrowed
	if p.arrayKind == borrowedConst {
		ak = borrowedConst
	}
	if p.schemaKind == borrowedConst {
		sk = borrowedConst
	}
	return ak, sk
}

func (p *Proxy) updateChildren() {
	n := min(len(p.array.Children), len(p.schema.Children))
	ak, sk := p.derivedKinds()
	p.children = make([]*Proxy, n)
	for i := range n {
		a, s := p.array.Children[i], p.schema.Children[i]
		if a.IsReleased() || s.IsReleased() {
			continue
		}
		child := newProxy(a, s, ak, sk, p.cfg)
		child.refresh()
		p.children[i] = child
	}
}

func (p *Proxy) updateDictionary() {
	p.dictionary = nil
	a, s := p.array.Dictionary, p.schema.Dictionary
	if a.IsReleased() || s.IsReleased() {
		return
	}
	ak, sk := p.derivedKinds()
	d := newProxy(a, s, ak, sk, p.cfg)
	d.refresh()
	p.dictionary = d
}

// View returns a proxy borrowing the descriptors of p. A read-only side stays
// read-only. The view must not outlive p.
func (p *Proxy) View() *Proxy {
	ak, sk := p.derivedKinds()
	v := newProxy(p.array, p.schema, ak, sk, p.cfg)
	v.dt = p.dt
	v.refresh()
	return v
}

// Move transfers the descriptors of p to a new proxy and leaves p empty.
func (p *Proxy) Move() *Proxy {
	moved := *p
	p.detach()
	return &moved
}

// detach forgets the descriptors without releasing them.
func (p *Proxy) detach() {
	cfg := p.cfg
	*p = Proxy{cfg: cfg}
}

// ExtractArray hands the array over to the caller, who becomes responsible
// for releasing it. The proxy keeps only its schema.
func (p *Proxy) ExtractArray() (*descriptor.ArrowArray, error) {
	if p.array == nil || p.arrayKind != owned {
		return nil, errors.Wrap(ErrNotOwned, "extract_array")
	}
	p.sanitize()
	a := p.array
	p.array = nil
	p.arrayKind = borrowed
	p.buffers, p.children, p.dictionary = nil, nil, nil
	return a, nil
}

// ExtractSchema hands the schema over to the caller, who becomes responsible
// for releasing it. The proxy keeps only its array.
func (p *Proxy) ExtractSchema() (*descriptor.ArrowSchema, error) {
	if p.schema == nil || p.schemaKind != owned {
		return nil, errors.Wrap(ErrNotOwned, "extract_schema")
	}
	p.sanitize()
	s := p.schema
	p.schema = nil
	p.schemaKind = borrowed
	p.children, p.dictionary = nil, nil
	return s, nil
}

// Release releases the owned descriptors and empties the proxy. Borrowed
// descriptors are left alone. Calling Release again is a no-op.
//
// A release callback that panics is logged and counted. Builds with the
// assert tag panic again once both descriptors were handled.
func (p *Proxy) Release() {
	var failed any
	if p.array != nil && p.arrayKind == owned {
		if r := p.releaseOne("array", func() { descriptor.ReleaseArray(p.array) }); r != nil {
			failed = r
		}
	}
	if p.schema != nil && p.schemaKind == owned {
		if r := p.releaseOne("schema", func() { descriptor.ReleaseSchema(p.schema) }); r != nil {
			failed = r
		}
	}
	p.detach()
	if failed != nil && debug.Enabled {
		panic(failed)
	}
}

func (p *Proxy) releaseOne(target string, release func()) (recovered any) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(p.cfg.logger).Log("msg", "release callback panicked", "target", target, "err", r)
			p.cfg.metrics.ReleasePanics.Inc()
			recovered = r
		}
	}()
	release()
	p.cfg.metrics.RecordRelease(target)
	return nil
}

// countNulls derives the null count of a from its validity bitmap over
// [offset, offset+length). It returns UnknownNullCount when the bitmap is
// too short to cover that window.
func countNulls(dt arrow.DataType, a *descriptor.ArrowArray) int64 {
	if dt != nil && dt.ID() == arrow.NULL {
		return a.Length
	}
	if dt == nil || !layout.HasBitmap(dt) || len(a.Buffers) == 0 || a.Buffers[0] == nil {
		return 0
	}
	bits := a.Buffers[0]
	if int64(len(bits))*8 < a.Offset+a.Length {
		return descriptor.UnknownNullCount
	}
	return a.Length - int64(bitutil.CountSetBits(bits, int(a.Offset), int(a.Length)))
}
