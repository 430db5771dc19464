// Package tracelog records the lifecycle events of tracked objects so tests
// can assert the exact order the collector touches objects in, the way
// gcmodule's own debug module backs its pass-by-pass assertions.
//
// It is not goroutine-safe and is not meant to be: capture is scoped to a
// single Capture call made by the single goroutine that owns a Space,
// mirroring the single-threaded-per-space contract the rest of this package
// relies on.
package tracelog

import "strings"

var (
	capturing bool
	events    []string
)

// Capturing reports whether a capture is in progress, so call sites can skip
// building log strings entirely on the hot, non-test path.
func Capturing() bool {
	return capturing
}

// Log appends one event. tag identifies the owning object (for example an
// object's debug name or "collect" for space-level events); parts are joined
// with ", " to match the "0: track, clone (2), new" shape used by the
// reference implementation's own capture format.
func Log(tag string, parts ...string) {
	if !capturing {
		return
	}

	events = append(events, tag+": "+strings.Join(parts, ", "))
}

// Capture runs f with event recording enabled and returns the accumulated
// log, one event per element. A nested Capture call records into its own
// fresh buffer; events logged during it are not added to the outer capture,
// whose buffer is restored when the nested call returns.
func Capture(f func()) []string {
	prevCapturing, prevEvents := capturing, events
	capturing, events = true, nil

	defer func() {
		capturing, events = prevCapturing, prevEvents
	}()

	f()

	return events
}
