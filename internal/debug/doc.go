// Package debug holds invariant checks that are compiled in only when the
// module is built with the "assert" tag:
//
//	go test -tags assert ./...
//
// Without the tag Assert is a no-op and Enabled is false.
package debug
