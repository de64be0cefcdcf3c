package proxy

import (
	"github.com/VanDung-dev/columnar/descriptor"
)

type handleKind uint8

const (
	owned handleKind = iota
	borrowed
	borrowedConst
)

func (k handleKind) String() string {
	switch k {
	case owned:
		return "owned"
	case borrowed:
		return "borrowed"
	default:
		return "borrowed read-only"
	}
}

// ArrayHandle tells a Proxy how it holds its ArrowArray.
type ArrayHandle struct {
	array *descriptor.ArrowArray
	kind  handleKind
}

// OwnArray hands a to the proxy, which releases it.
func OwnArray(a *descriptor.ArrowArray) ArrayHandle { return ArrayHandle{array: a, kind: owned} }

// BorrowArray lets the proxy use and mutate a while the caller keeps ownership.
func BorrowArray(a *descriptor.ArrowArray) ArrayHandle { return ArrayHandle{array: a, kind: borrowed} }

// BorrowConstArray lets the proxy read a only.
func BorrowConstArray(a *descriptor.ArrowArray) ArrayHandle {
	return ArrayHandle{array: a, kind: borrowedConst}
}

// SchemaHandle tells a Proxy how it holds its ArrowSchema.
type SchemaHandle struct {
	schema *descriptor.ArrowSchema
	kind   handleKind
}

// OwnSchema hands s to the proxy, which releases it.
func OwnSchema(s *descriptor.ArrowSchema) SchemaHandle { return SchemaHandle{schema: s, kind: owned} }

// BorrowSchema lets the proxy use and mutate s while the caller keeps ownership.
func BorrowSchema(s *descriptor.ArrowSchema) SchemaHandle {
	return SchemaHandle{schema: s, kind: borrowed}
}

// BorrowConstSchema lets the proxy read s only.
func BorrowConstSchema(s *descriptor.ArrowSchema) SchemaHandle {
	return SchemaHandle{schema: s, kind: borrowedConst}
}

func validShape(a, s handleKind) bool {
	switch a {
	case owned:
		return true
	case borrowed:
		return s == borrowed
	default:
		return s == borrowedConst
	}
}
