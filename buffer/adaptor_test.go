package buffer

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeOf(t *testing.T) {
	assert.Equal(t, 1, SizeOf[int8]())
	assert.Equal(t, 2, SizeOf[float16.Num]())
	assert.Equal(t, 4, SizeOf[arrow.Date32]())
	assert.Equal(t, 8, SizeOf[arrow.DayTimeInterval]())
	assert.Equal(t, 16, SizeOf[decimal128.Num]())
	assert.Equal(t, 16, SizeOf[arrow.MonthDayNanoInterval]())
}

func TestCast(t *testing.T) {
	b := CastToBytes([]int32{1, -1})
	require.Len(t, b, 8)
	assert.Equal(t, []int32{1, -1}, Cast[int32](b))
	assert.Equal(t, []int16{1, 0, -1, -1}, Cast[int16](b))
	assert.Len(t, Cast[int64](b[:7]), 0)
	assert.Nil(t, Cast[int64](nil))
}

func TestAdaptor(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()
	a := NewAdaptor[int64](buf)

	a.Append(1, 2, 3)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 24, buf.Len())

	assert.Equal(t, 1, a.Insert(1, 9, 2))
	assert.Equal(t, []int64{1, 9, 9, 2, 3}, a.Values())

	a.InsertValues(5, []int64{7})
	assert.Equal(t, []int64{1, 9, 9, 2, 3, 7}, a.Values())
	a.InsertValues(0, []int64{-1, -2})
	assert.Equal(t, []int64{-1, -2, 1, 9, 9, 2, 3, 7}, a.Values())

	assert.Equal(t, 0, a.Erase(0, 4))
	assert.Equal(t, []int64{9, 2, 3, 7}, a.Values())

	a.Resize(2, 0)
	assert.Equal(t, []int64{9, 2}, a.Values())
	assert.Equal(t, 16, buf.Len())
	a.Resize(4, 5)
	assert.Equal(t, []int64{9, 2, 5, 5}, a.Values())

	a.Insert(4, 0, 0)
	assert.Equal(t, 4, a.Len())
}

func TestAdaptorStructElements(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()

	a := NewAdaptor[decimal128.Num](buf)
	a.Append(decimal128.FromI64(5), decimal128.FromI64(-7))
	assert.Equal(t, 32, buf.Len())
	a.Erase(0, 1)
	assert.Equal(t, decimal128.FromI64(-7), a.Values()[0])

	h := NewAdaptor[float16.Num](memory.NewResizableBuffer(mem))
	h.Resize(3, float16.New(1.5))
	assert.Equal(t, float32(1.5), h.Values()[2].Float32())
	h.buf.Release()
}
