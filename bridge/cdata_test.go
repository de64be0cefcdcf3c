//go:build cgo

package bridge

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/cdata"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCDataRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues([]float64{1.5, 0, 3.25}, []bool{true, false, true})
	arr := b.NewArray()
	defer arr.Release()

	src, err := FromArrayData(arr.Data(), arrow.Field{Name: "f", Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	require.NoError(t, err)
	defer src.Release()

	var carr cdata.CArrowArray
	var cschema cdata.CArrowSchema
	require.NoError(t, ExportC(src, &carr, &cschema))

	p, err := ImportC(&carr, &cschema)
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, "g", p.Format())
	assert.Equal(t, int64(3), p.Length())
	assert.Equal(t, int64(1), p.NullCount())
	got := arrow.Float64Traits.CastFromBytes(p.Buffers()[1])
	assert.Equal(t, 3.25, got[2])
}
