package cc

// Edge is implemented only by Cc[T] (the method is unexported, so no type
// outside this package can satisfy it). A Visitor receives values of this
// type instead of a concrete Cc[T], which is what lets Trace enumerate
// fields of differing T uniformly — the same role a trait object plays in
// the reference implementation's Tracer type alias.
type Edge interface {
	ccHeader() *header
}

// Visitor is passed to Trace; call it once per outgoing strong reference.
type Visitor func(Edge)

// Tracer is implemented by values that hold Cc[T] fields and must advertise
// them to the cycle collector.
//
// Trace must be non-recursive: call visit for each Cc field this value
// directly owns, and let the collector walk further. It must be
// deterministic and must enumerate exactly the set of handles stored in
// fields of the value — a missing edge leaves its target looking externally
// referenced, so the target and everything it reaches survive collection; an
// extra edge under-counts a target's external references, so a block still
// held by a live handle can be destroyed by the collector (whose ref-count
// check then panics).
//
// A value that does not implement Tracer is treated as a leaf with no
// outgoing edges, which is correct for plain data but wrong for a type that
// embeds Cc fields without also implementing this interface.
type Tracer interface {
	Trace(visit Visitor)
}

// Destroyer is implemented by values that need to run cleanup when their
// last Cc handle goes away, or when the cycle collector determines their
// block is unreachable garbage. Unlike Rust's Drop, Go has no compiler-
// generated drop glue: Destroy is responsible for calling Release on every
// Cc field the value owns, exactly as Trace is responsible for visiting the
// same fields. Destroy must not create new handles to the value being
// destroyed, and — during a collection-triggered call — may observe peer
// values in the same doomed cycle already torn down; see Space.CollectCycles.
type Destroyer interface {
	Destroy()
}

// Untracked is a marker interface a value implements to opt out of cycle
// collection entirely. An Untracked value is reference counted and destroyed
// the instant its last handle drops, like any other value, but it is never
// linked into a Space's list, so CollectCycles never walks it and
// CountTracked never counts it — correct only for values that provably
// cannot participate in a reference cycle (leaf/atomic data).
type Untracked interface {
	ccUntracked()
}

// NoTrace is an embeddable zero-size marker that opts a type out of cycle
// collection, the Go counterpart of the reference implementation's
// untrack! macro: embed cc.NoTrace in a struct to mark it Untracked without
// writing out the ccUntracked method by hand.
type NoTrace struct{}

func (NoTrace) ccUntracked() {}

// isTracked reports whether a value should be linked into a Space's list:
// default true, false only for values that implement Untracked.
func isTracked(value any) bool {
	_, untracked := value.(Untracked)
	return !untracked
}
