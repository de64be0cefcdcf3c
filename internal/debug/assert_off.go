//go:build !assert

package debug

// Enabled reports whether assertions are compiled in.
const Enabled = false

// Assert is a no-op without the assert build tag.
func Assert(cond bool, msg string) {}
