// Package access provides typed windows over the data buffer of a proxy.
//
// Indices are always relative to the array offset: element i lives at
// position offset+i of the data buffer. Mutating operations edit the data
// buffer only and leave the array length alone, so a caller editing both
// the validity bitmap and the values sets the length once both agree.
package access
