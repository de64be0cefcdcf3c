// Package layout derives the physical buffer composition of an Arrow array
// from its logical type: which buffers exist, in which order, how many
// children the type requires and how many bytes each buffer spans for a
// given length and offset.
//
// Every function is pure. Results follow the Arrow columnar format; they are
// cross-checked against arrow.DataType.Layout in the tests.
package layout
