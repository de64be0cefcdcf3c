// Package descriptor models the two structs of the Arrow C Data Interface,
// ArrowArray and ArrowSchema, as Go values.
//
// The fields mirror the C layout one to one: counts are implied by slice
// lengths and a nil Release marks a released struct. Descriptors built by
// NewArrowArray and NewArrowSchema carry private data recording which
// buffers, children and dictionary they own; their Release tears the owned
// parts down exactly once, children and dictionary first.
//
// The package also holds the format string and metadata codecs and the deep
// and shallow copy helpers used by the proxy package.
package descriptor
