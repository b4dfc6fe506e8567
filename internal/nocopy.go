package internal

// NoCopy may be embedded in engines that must not be copied after first use.
// Copying an engine would duplicate its location index while sharing its
// slot arena, so the two copies would corrupt each other on the next access.
//
// `go vet -copylocks` reports copies of any struct holding a NoCopy.
//
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type NoCopy struct{}

// Lock is a no-op used by the -copylocks checker.
func (*NoCopy) Lock() {}

// Unlock is a no-op used by the -copylocks checker.
func (*NoCopy) Unlock() {}
