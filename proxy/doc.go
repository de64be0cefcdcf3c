// Package proxy wraps one ArrowArray and one ArrowSchema behind a single
// mutation-safe interface.
//
// A Proxy either owns or borrows each descriptor, and a borrow may be
// read-only. Five shapes are accepted by New:
//
//	OwnArray         + OwnSchema
//	OwnArray         + BorrowSchema
//	OwnArray         + BorrowConstSchema
//	BorrowArray      + BorrowSchema
//	BorrowConstArray + BorrowConstSchema
//
// Mutators fail with ErrNotOwned when the target descriptor was not built by
// the descriptor package and with ErrImmutable when it was borrowed
// read-only. Buffer views, child proxies and the dictionary proxy are
// recomputed eagerly after every structural mutation, so they are always
// consistent with the descriptors between calls.
//
// A Proxy is not safe for concurrent mutation. Views obtained from it
// (SliceView, View, Children, Buffers) alias its memory and must not outlive
// it.
package proxy
