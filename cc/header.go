package cc

// ccDyn is the type-erased capability the collector uses to operate on a
// block knowing only its header. It plays the role the reference
// implementation gives a vtable pointer; in Go an interface value already
// carries the type/data pair a vtable pointer plus object pointer would, so
// no unsafe pointer juggling is needed to recover it.
//
// ref_count is deliberately not part of this interface: it lives directly on
// header, which every block embeds regardless of its value type, so reading
// it never requires dispatching through the value's concrete type.
type ccDyn interface {
	// traverse calls visit once for each outgoing Cc reference the value
	// directly owns. Must not recurse into referents; see Tracer.
	traverse(visit func(*header))

	// destroy runs the value's destructor, if any, without freeing the
	// block. Idempotent is enforced by the caller via header.valueDropped.
	destroy()
}

// header is the per-object bookkeeping block every tracked value carries.
// It is embedded as the first field of the generic block[T] so that a
// header pointer recovered during collection always corresponds to the
// start of the owning block.
type header struct {
	// prev, next form the owning Space's intrusive circular list. Both are
	// nil when the header is untracked or has been unlinked.
	prev, next *header

	// owner is the Space this header was created in. NewIn sets it whether
	// or not the value is tracked, and unlinking leaves it in place. Kept
	// here (rather than reached only through the list) so unlinkHeader can
	// decrement the right Space's tracked count and releaseHeader can
	// attribute the reclamation to its Stats — the reference implementation doesn't need this
	// because CcObjectSpace::remove is a free function taking the header
	// directly; Go's equivalent needs an owner to mutate.
	owner *Space

	// dyn is the type-erased capability described above. Always non-nil
	// once a block is constructed.
	dyn ccDyn

	// refCount is the true, authoritative reference count: the number of
	// live Cc[T] handles plus, during a collection pass, one extra unit per
	// pinned-for-destruction block (see collect.go).
	refCount uint64

	// trialCount and collecting are the Pass 1-3 scratch state. The
	// reference implementation packs these into spare bits of the prev
	// pointer (a space optimization tied to Rust's pointer alignment
	// guarantees); this port keeps them as ordinary fields instead — see
	// DESIGN.md for why that's the right call in Go, where the real
	// garbage collector scans pointer-typed fields precisely and does not
	// tolerate a pointer field holding a tagged integer.
	trialCount int64
	collecting bool

	// tracked records whether this block participates in cycle collection
	// at all (isTracked observed at construction time: false only for
	// values that implement Untracked).
	tracked bool

	// valueDropped is set the first time the value's destructor has run, so
	// that the collector's final release pass (which reuses the ordinary
	// drop-to-zero path) never invokes the destructor twice.
	valueDropped bool

	// debugName is a short label used only by tracelog; "?" when unset.
	debugName string
}

// unreachable reports whether a header, while COLLECTING, has no references
// from outside the set currently under collection.
func (h *header) unreachable() bool {
	return h.collecting && h.trialCount == 0
}

// link splices h at the head of sp's list. O(1). h.owner must already be set
// to sp by the caller (NewIn sets it regardless of tracked status, so stats
// stay attributable even for untracked values that never get linked).
func (sp *Space) link(h *header) {
	n := sp.head.next
	h.prev = &sp.head
	h.next = n
	sp.head.next = h
	n.prev = h
	sp.trackedCount++
}

// unlinkHeader removes h from whatever list it is linked into. It tolerates
// being called on an already-unlinked header (h.next == nil) as a no-op. The
// collector's pin keeps a doomed peer above zero while destructors drop
// handles to it, so each header is unlinked by its final release only.
// h.owner is left intact so callers can still attribute stats after this
// call; only the list pointers and the owner's tracked count change.
func unlinkHeader(h *header) {
	if h.next == nil {
		return
	}

	h.prev.next = h.next
	h.next.prev = h.prev
	h.prev = nil
	h.next = nil

	if h.owner != nil {
		h.owner.trackedCount--
	}
}

// visitList calls visit once for every header in the list owned by sentinel,
// in list order, skipping the sentinel itself. visit may not mutate the
// list's prev/next structure; passes that need to do so build an explicit
// slice first (see collect.go Pass 4).
func visitList(sentinel *header, visit func(*header)) {
	for h := sentinel.next; h != sentinel; h = h.next {
		visit(h)
	}
}
