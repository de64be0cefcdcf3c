package buffer

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// Element is a fixed-width value stored contiguously in a data buffer.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		float16.Num | decimal128.Num | decimal256.Num |
		arrow.DayTimeInterval | arrow.MonthDayNanoInterval
}

// SizeOf returns the width of T in bytes.
func SizeOf[T Element]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Cast reinterprets b as a slice of T. Trailing bytes that do not make up a
// whole element are dropped.
func Cast[T Element](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	size := SizeOf[T]()
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), cap(b)/size)[:len(b)/size]
}

// CastToBytes reinterprets v as its underlying bytes.
func CastToBytes[T Element](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	size := SizeOf[T]()
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(v))), cap(v)*size)[:len(v)*size]
}
