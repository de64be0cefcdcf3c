package bitset

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var positionsOfInterest = []int{0, 1, 7, 8, 9, 63, 64, 65}

func checkNullInvariant(t *testing.T, bm *Bitmap) {
	t.Helper()
	require.Equal(t, bm.Len(), bm.Count()+bm.NullCount())
	nulls := 0
	for _, valid := range bm.All() {
		if !valid {
			nulls++
		}
	}
	require.Equal(t, nulls, bm.NullCount())
}

func TestNullBufferDivergence(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	vec := NewBitVector(mem, 70, false)
	bm := NewBitmap(mem, 70, true)
	defer vec.Release()
	defer bm.Release()

	require.True(t, vec.IsNull())
	require.True(t, bm.IsNull())
	assert.Equal(t, 0, vec.Count())
	assert.Equal(t, 70, bm.Count())
	assert.Equal(t, 0, bm.NullCount())
	for i := 0; i < 70; i++ {
		assert.False(t, vec.Test(i))
		assert.True(t, bm.Test(i))
	}

	view := NewBitVectorView(nil, 12)
	bmView := NewBitmapView(nil, 12, UnknownNullCount)
	assert.Equal(t, 0, view.Count())
	assert.Equal(t, 12, bmView.Count())
	assert.Equal(t, 0, bmView.NullCount())
}

func TestBitVectorLazyAllocation(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	vec := NewBitVector(mem, 20, false)
	defer vec.Release()

	vec.Set(3, false)
	require.True(t, vec.IsNull())
	require.Equal(t, 0, mem.CurrentAlloc())

	vec.Set(3, true)
	require.False(t, vec.IsNull())
	assert.True(t, vec.Test(3))
	assert.Equal(t, 1, vec.Count())
	assert.Len(t, vec.Bytes(), 3)
}

func TestBitmapSetTracksNullCount(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bm := NewBitmap(mem, 100, false)
	defer bm.Release()
	require.Equal(t, 100, bm.NullCount())

	for _, pos := range positionsOfInterest {
		bm.Set(pos, true)
		assert.True(t, bm.Test(pos))
		checkNullInvariant(t, bm)
	}
	require.Equal(t, 100-len(positionsOfInterest), bm.NullCount())

	// writing the same value twice must not move the count
	bm.Set(0, true)
	bm.Set(2, false)
	require.Equal(t, 100-len(positionsOfInterest), bm.NullCount())

	for _, pos := range positionsOfInterest {
		bm.Set(pos, false)
		checkNullInvariant(t, bm)
	}
	require.Equal(t, 100, bm.NullCount())
}

func TestBitmapResize(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bm := NewBitmapFromBools(mem, []bool{true, false, true, true, false})
	defer bm.Release()
	require.Equal(t, 2, bm.NullCount())

	bm.Resize(13, false)
	checkNullInvariant(t, bm)
	require.Equal(t, 10, bm.NullCount())

	bm.Resize(20, true)
	checkNullInvariant(t, bm)
	require.Equal(t, 10, bm.NullCount())
	for i := 13; i < 20; i++ {
		assert.True(t, bm.Test(i))
	}

	bm.Resize(3, true)
	checkNullInvariant(t, bm)
	assert.Equal(t, []bool{true, false, true}, collect(bm.All()))
}

func TestResizeZeroesUnusedBits(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bm := NewBitmap(mem, 12, false)
	defer bm.Release()
	for i := 0; i < 12; i++ {
		bm.Set(i, true)
	}
	require.Equal(t, []byte{0xff, 0x0f}, bm.Bytes())

	bm.Resize(10, true)
	require.Equal(t, []byte{0xff, 0x03}, bm.Bytes())

	// grow back without writing: the stale high bits must not reappear
	bm.grow(12)
	assert.False(t, bm.Test(10))
	assert.False(t, bm.Test(11))
}

func TestBitmapInsert(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bm := NewBitmapFromBools(mem, []bool{true, false, true})
	defer bm.Release()

	require.Equal(t, 1, bm.Insert(1, false, 2))
	assert.Equal(t, []bool{true, false, false, false, true}, collect(bm.All()))
	checkNullInvariant(t, bm)

	bm.Insert(5, true, 9)
	checkNullInvariant(t, bm)
	require.Equal(t, 14, bm.Len())

	bm.InsertValues(0, []bool{false, true})
	assert.Equal(t, []bool{false, true, true, false, false, false, true}, collect(bm.All())[:7])
	checkNullInvariant(t, bm)
	require.Equal(t, 4, bm.NullCount())
}

func TestBitmapInsertIntoNullBuffer(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bm := NewBitmap(mem, 10, true)
	defer bm.Release()

	bm.Insert(4, true, 3)
	require.True(t, bm.IsNull())
	require.Equal(t, 13, bm.Len())

	bm.Insert(4, false, 1)
	require.False(t, bm.IsNull())
	require.Equal(t, 14, bm.Len())
	require.Equal(t, 1, bm.NullCount())
	assert.False(t, bm.Test(4))
	checkNullInvariant(t, bm)
}

func TestBitmapErase(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values := make([]bool, 70)
	for i := range values {
		values[i] = i%3 != 0
	}
	bm := NewBitmapFromBools(mem, values)
	defer bm.Release()
	checkNullInvariant(t, bm)

	for _, pos := range []int{65, 63, 8, 0} {
		bm.Erase(pos, 2)
		values = append(values[:pos], values[pos+2:]...)
		require.Equal(t, values, collect(bm.All()))
		checkNullInvariant(t, bm)
	}
}

func TestPushPop(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bm := NewBitmap(mem, 0, true)
	defer bm.Release()
	for i := 0; i < 17; i++ {
		bm.PushBack(i%2 == 0)
	}
	checkNullInvariant(t, bm)
	require.Equal(t, 8, bm.NullCount())

	bm.PopBack()
	bm.PopBack()
	require.Equal(t, 15, bm.Len())
	checkNullInvariant(t, bm)
	require.Equal(t, 7, bm.NullCount())
}

func TestShrinkWithoutBuffer(t *testing.T) {
	view := NewBitmapView(nil, 5, UnknownNullCount)
	view.PopBack()
	require.Equal(t, 4, view.Len())
	assert.True(t, view.IsNull())
	assert.Equal(t, 0, view.NullCount())

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	bm := NewNonOwningBitmap(mem, new(*memory.Buffer), 9, UnknownNullCount)
	defer bm.Release()
	bm.PopBack()
	bm.Resize(3, false)
	require.Equal(t, 3, bm.Len())
	assert.True(t, bm.IsNull())
	checkNullInvariant(t, bm)
}

func TestBitVectorInsertErase(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	vec := NewBitVectorFromBools(mem, []bool{true, true, false, true})
	defer vec.Release()

	vec.Insert(2, true, 1)
	vec.Erase(0, 1)
	assert.Equal(t, []bool{true, true, false, true}, collect(vec.All()))
	assert.Equal(t, 3, vec.Count())

	vec.Clear()
	require.Equal(t, 0, vec.Len())
	require.Equal(t, 0, vec.Count())
}

func TestBitmapView(t *testing.T) {
	data := []byte{0b10110101, 0b00000001}
	bm := NewBitmapView(data, 9, UnknownNullCount)
	require.Equal(t, 3, bm.NullCount())

	bm.Set(1, true)
	require.Equal(t, byte(0b10110111), data[0])
	require.Equal(t, 2, bm.NullCount())

	known := NewBitmapView(data, 9, 2)
	require.Equal(t, 2, known.NullCount())

	require.Panics(t, func() { bm.Resize(17, true) })
}

func TestNonOwningBitmap(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var slot *memory.Buffer
	bm := NewNonOwningBitmap(mem, &slot, 5, UnknownNullCount)
	require.Equal(t, 0, bm.NullCount())

	bm.PushBack(false)
	require.NotNil(t, slot)
	require.Equal(t, 1, bm.NullCount())
	require.Equal(t, []byte{0b00011111}, slot.Bytes())

	// the bitmap does not own the slot
	bm.Release()
	require.NotNil(t, slot)
	slot.Release()
}

func collect(seq func(yield func(int, bool) bool)) []bool {
	var out []bool
	for _, v := range seq {
		out = append(out, v)
	}
	return out
}
