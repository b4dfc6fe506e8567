package internal

// Assert panics with msg when ok is false.
// It guards internal invariants: a failure is a bug in this module, never a
// condition a caller is expected to recover from.
func Assert(ok bool, msg string) {
	if !ok {
		panic(msg)
	}
}
