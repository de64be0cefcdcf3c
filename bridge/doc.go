// Package bridge connects proxies to the arrow-go array model.
//
// This package contains:
//   - zero-copy conversion between a proxy and arrow.ArrayData (arrow_bridge.go)
//   - export and import through the C data interface, in cgo builds (cdata.go)
//
// arrow-go keeps a leading validity slot for every type, including the ones
// that have no bitmap in the C layout (null, unions, run-end encoded). The
// conversions add or drop that slot.
package bridge
