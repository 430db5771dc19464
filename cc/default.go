package cc

import "sync"

// defaultSpaceVal backs New and the package-level CollectCycles/CountTracked
// functions. The reference implementation keys an equivalent space off
// thread-local storage, which is meaningful in a language where threads are
// heavyweight, 1:1 with OS threads, and a type system can statically forbid
// crossing them (see Cc's !Send/!Sync bound there). Goroutines have none of
// those properties — they migrate across OS threads and a Go type cannot be
// pinned to one — so a single process-wide space, as spec.md §4.7 already
// describes it, is the only faithful translation: "a single process-wide
// space is made available implicitly ... its lifetime is the program's".
var (
	defaultSpaceOnce sync.Once
	defaultSpaceVal  *Space
)

// DefaultSpace returns the process-wide Space that New and the package-level
// CollectCycles/CountTracked operate on.
func DefaultSpace() *Space {
	defaultSpaceOnce.Do(func() {
		defaultSpaceVal = NewSpace(SpaceConfig{Name: "default"})
	})

	return defaultSpaceVal
}

// CollectCycles runs cycle collection against the default space and returns
// the number of objects reclaimed.
func CollectCycles() int {
	return DefaultSpace().CollectCycles()
}

// CountTracked returns the number of objects tracked by the default space.
func CountTracked() int {
	return DefaultSpace().CountTracked()
}
