// Package bitset implements bit-packed boolean containers laid out the way
// Arrow lays out validity and boolean data buffers: least significant bit
// first, one byte per eight elements.
//
// Two containers share one implementation:
//
//   - BitVector stores plain boolean data. A container without an underlying
//     buffer reads as all false and allocates storage on the first Set(i, true).
//   - Bitmap stores validity. A container without an underlying buffer reads as
//     all valid, and the number of unset bits is tracked under every mutation
//     so NullCount never needs a full scan.
//
// Each container can own its buffer, view a caller-supplied byte slice, or
// mutate a buffer owned by someone else (the non-owning variants used by the
// proxy package to edit a descriptor's validity buffer in place).
//
// Containers are not safe for concurrent mutation.
package bitset
