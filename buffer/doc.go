// Package buffer views Arrow byte buffers as slices of fixed-size elements.
//
// An Adaptor edits a resizable memory.Buffer in whole elements and keeps its
// byte length equal to the element count times the element width.
package buffer
