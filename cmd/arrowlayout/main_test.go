package main

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/columnar/bridge"
	"github.com/VanDung-dev/columnar/proxy"
)

func TestRunPrimitive(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-format", "i", "-name", "x", "-values", "[1, null, 3]"}, &out, log.NewNopLogger())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, `format="i" name="x" length=3 null_count=1 offset=0`)
	assert.Contains(t, got, "buffer[0] validity")
	assert.Contains(t, got, "buffer[1] data")
	assert.Contains(t, got, "validity 101\n")
}

func TestRunWindow(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-format", "u", "-values", `["a", null, "ccc"]`, "-slice-start", "1"}, &out, log.NewNopLogger())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "length=2 null_count=1 offset=1")
	assert.Contains(t, got, "buffer[1] offsets32")
	assert.Contains(t, got, "validity 01\n")
}

func TestRunMetrics(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-format", "g", "-values", "[1.5]", "-metrics"}, &out, log.NewNopLogger())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "columnar_proxies_created_total 1")
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"-format", "?"}, &out, log.NewNopLogger()))
	assert.Error(t, run([]string{"-format", "i", "-values", `["x"]`}, &out, log.NewNopLogger()))

	err := run([]string{"-format", "i", "-values", "[1]", "-slice-end", "5"}, &out, log.NewNopLogger())
	assert.ErrorIs(t, err, proxy.ErrOutOfRange)
}

func TestPrintUnsetChild(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	dt := arrow.StructOf(arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32})
	b := array.NewStructBuilder(mem, dt)
	defer b.Release()
	b.Append(true)
	b.FieldBuilder(0).(*array.Int32Builder).Append(1)
	arr := b.NewArray()
	defer arr.Release()

	p, err := bridge.FromArrayData(arr.Data(), arrow.Field{Name: "st", Type: dt}, proxy.WithAllocator(mem))
	require.NoError(t, err)
	defer p.Release()
	require.NoError(t, p.ResizeChildren(2))

	var out bytes.Buffer
	printProxy(&out, p, "")
	assert.Contains(t, out.String(), "child[0]\n")
	assert.Contains(t, out.String(), "child[1] unset\n")
}
