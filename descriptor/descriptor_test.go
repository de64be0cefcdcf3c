package descriptor

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffer(mem memory.Allocator, data []byte) *memory.Buffer {
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(len(data))
	copy(buf.Bytes(), data)
	return buf
}

func int32Array(mem memory.Allocator, values ...int32) *ArrowArray {
	data := newBuffer(mem, arrow.Int32Traits.CastToBytes(values))
	return NewArrowArray(mem, int64(len(values)), 0, 0, []*memory.Buffer{nil, data}, nil, nil)
}

func TestNewArrowArrayMirrorsPrivateData(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a := int32Array(mem, 1, 2, 3)
	require.True(t, IsArrayCreatedWithLibrary(a))
	require.Equal(t, int64(2), a.NBuffers())
	assert.Nil(t, a.Buffers[0])
	assert.Equal(t, []int32{1, 2, 3}, arrow.Int32Traits.CastFromBytes(a.Buffers[1]))

	ReleaseArray(a)
	require.True(t, a.IsReleased())
	require.False(t, IsArrayCreatedWithLibrary(a))

	// a second release is a no-op
	ReleaseArray(a)
}

func TestReleaseHonoursChildOwnership(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	owned := int32Array(mem, 1)
	borrowed := int32Array(mem, 2)
	dict := int32Array(mem, 3)
	dictLink := OwnedArray(dict)

	parent := NewArrowArray(mem, 1, 0, 0, []*memory.Buffer{nil},
		[]ArrayLink{OwnedArray(owned), BorrowedArray(borrowed)}, &dictLink)
	require.Equal(t, int64(2), parent.NChildren())
	require.Same(t, dict, parent.Dictionary)

	ReleaseArray(parent)
	assert.True(t, owned.IsReleased())
	assert.True(t, dict.IsReleased())
	assert.False(t, borrowed.IsReleased())
	ReleaseArray(borrowed)
}

func TestPrivateDataChildSlots(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a := NewArrowArray(mem, 0, 0, 0, nil, nil, nil)
	defer ReleaseArray(a)
	pd, ok := ArrayPrivate(a)
	require.True(t, ok)

	first := int32Array(mem, 1)
	second := int32Array(mem, 2)
	pd.ResizeChildren(2)
	pd.SetChild(0, OwnedArray(first))
	pd.SetChild(1, BorrowedArray(second))
	pd.Sync(a)
	require.Equal(t, []*ArrowArray{first, second}, a.Children)

	// replacing an owned child releases it
	third := int32Array(mem, 3)
	pd.SetChild(0, OwnedArray(third))
	assert.True(t, first.IsReleased())

	// dropping a borrowed child leaves it alone
	pd.ResizeChildren(1)
	pd.Sync(a)
	assert.False(t, second.IsReleased())
	assert.Len(t, a.Children, 1)
	ReleaseArray(second)

	d1, d2 := int32Array(mem, 4), int32Array(mem, 5)
	l1, l2 := OwnedArray(d1), OwnedArray(d2)
	pd.SetDictionary(&l1)
	pd.SetDictionary(&l2)
	assert.True(t, d1.IsReleased())
	pd.SetDictionary(nil)
	assert.True(t, d2.IsReleased())
}

func TestRelinkKeepsOwnership(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	child := int32Array(mem, 1, 2)
	dict := int32Array(mem, 3)
	dictLink := OwnedArray(dict)
	a := NewArrowArray(mem, 0, 0, 0, nil, []ArrayLink{OwnedArray(child)}, &dictLink)
	pd, ok := ArrayPrivate(a)
	require.True(t, ok)

	pd.SetChild(0, BorrowedArray(child))
	assert.Equal(t, Owned, pd.Children()[0].Ownership)
	assert.False(t, child.IsReleased())

	borrowedDict := BorrowedArray(dict)
	pd.SetDictionary(&borrowedDict)
	assert.Equal(t, Owned, pd.Dictionary().Ownership)
	assert.False(t, dict.IsReleased())

	cs := NewArrowSchema("i", "c", arrow.Metadata{}, 0, nil, nil)
	s := NewArrowSchema("+s", "", arrow.Metadata{}, 0, []SchemaLink{OwnedSchema(cs)}, nil)
	spd, ok := SchemaPrivate(s)
	require.True(t, ok)
	spd.SetChild(0, BorrowedSchema(cs))
	assert.Equal(t, Owned, spd.Children()[0].Ownership)

	ReleaseArray(a)
	ReleaseSchema(s)
	assert.True(t, child.IsReleased())
	assert.True(t, dict.IsReleased())
	assert.True(t, cs.IsReleased())
}

func TestMutableBufferMovesForeignBuffer(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	foreign := memory.NewBufferBytes([]byte{1, 2, 3, 4})
	a := NewArrowArray(mem, 4, 0, 0, []*memory.Buffer{nil, foreign}, nil, nil)
	defer ReleaseArray(a)
	pd, _ := ArrayPrivate(a)

	buf := pd.MutableBuffer(1)
	require.NotSame(t, foreign, buf)
	buf.Resize(6)
	pd.Sync(a)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0}, a.Buffers[1])
	assert.Same(t, buf, pd.MutableBuffer(1))

	assert.Nil(t, pd.MutableBuffer(0))
	slot := pd.BufferSlot(0)
	*slot = newBuffer(mem, []byte{0xff})
	pd.Sync(a)
	assert.Equal(t, []byte{0xff}, a.Buffers[0])
}

func TestMetadataRoundTrip(t *testing.T) {
	md := arrow.NewMetadata(
		[]string{ExtensionNameKey, "k", ""},
		[]string{"uuid", "value", "empty key"},
	)
	blob := EncodeMetadata(md)
	require.NotNil(t, blob)

	got, err := DecodeMetadata(blob)
	require.NoError(t, err)
	if diff := cmp.Diff(md.Keys(), got.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(md.Values(), got.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	name, ok := ExtensionName(got)
	require.True(t, ok)
	assert.Equal(t, "uuid", name)

	assert.Nil(t, EncodeMetadata(arrow.Metadata{}))
	empty, err := DecodeMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestDecodeMetadataRejectsTruncatedBlob(t *testing.T) {
	blob := EncodeMetadata(arrow.NewMetadata([]string{"key"}, []string{"value"}))
	for _, n := range []int{0, 3, 6, 10, len(blob) - 1} {
		_, err := DecodeMetadata(blob[:n])
		assert.ErrorIs(t, err, ErrInvalidMetadata, "length %d", n)
	}
	_, err := DecodeMetadata([]byte{0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func FuzzDecodeMetadata(f *testing.F) {
	f.Add(EncodeMetadata(arrow.NewMetadata([]string{"a"}, []string{"b"})))
	f.Add([]byte{})
	f.Add([]byte{1, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f})

	f.Fuzz(func(t *testing.T, data []byte) {
		md, err := DecodeMetadata(data)
		if err != nil {
			return
		}
		again, err := DecodeMetadata(EncodeMetadata(md))
		if err != nil {
			t.Fatalf("re-encoded metadata failed to decode: %v", err)
		}
		if !md.Equal(again) {
			t.Errorf("Expected %v, got %v", md, again)
		}
	})
}

func TestFlags(t *testing.T) {
	f := FlagNullable | FlagMapKeysSorted
	assert.True(t, f.Has(FlagNullable))
	assert.False(t, f.Has(FlagDictionaryOrdered))
	assert.Equal(t, "owned", Owned.String())
	assert.Equal(t, "borrowed", Borrowed.String())
}
