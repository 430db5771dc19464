package cc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/orizon-lang/ccbox/cc/internal/tracelog"
)

// block is the unit allocation backing a Cc[T]: a header followed by the
// user value. Go has no notion of a "stable address, fixed-layout" raw
// allocation the way the reference implementation's CcBox<T> does, but a
// pointer to a struct is exactly that in practice — the runtime never moves
// heap objects referenced by a live pointer, so &block[T]{}'s address is
// stable for the object's whole lifetime.
type block[T any] struct {
	header header
	value  T
}

func (b *block[T]) traverse(visit func(*header)) {
	if t, ok := any(&b.value).(Tracer); ok {
		if tracelog.Capturing() {
			tracelog.Log(b.header.debugName, "trace")
		}

		t.Trace(func(e Edge) { visit(e.ccHeader()) })
	}
}

func (b *block[T]) destroy() {
	if d, ok := any(&b.value).(Destroyer); ok {
		d.Destroy()
	}
}

// Cc is an owning, reference-counted handle to a heap-allocated T. The zero
// value of Cc[T] holds no block and must not be cloned or dereferenced (both
// panic); releasing it is a no-op. It exists only so Cc[T] can be used as a
// struct field default.
type Cc[T any] struct {
	blk *block[T]
}

// IsZero reports whether c is the zero value (holds no block).
func (c Cc[T]) IsZero() bool {
	return c.blk == nil
}

func (c Cc[T]) ccHeader() *header {
	return &c.blk.header
}

// New allocates value in the default, process-wide Space and returns an
// owning handle to it. See DefaultSpace.
func New[T any](value T) Cc[T] {
	return NewIn(DefaultSpace(), value)
}

// NewIn allocates value in space and returns an owning handle to it. A Cc
// created this way may reference, and be referenced by, other Cc values in
// the same space; the cycle collector can only reclaim cycles contained
// entirely within one space.
func NewIn[T any](space *Space, value T) Cc[T] {
	b := &block[T]{value: value}
	b.header.dyn = b
	b.header.refCount = 1
	b.header.owner = space
	b.header.tracked = isTracked(any(value))

	space.stats.Created++

	if tracelog.Capturing() {
		b.header.debugName = strconv.Itoa(space.nextDebugName())
	} else {
		b.header.debugName = "?"
	}

	if b.header.tracked {
		space.link(&b.header)
		tracelog.Log(b.header.debugName, "track")
	}

	tracelog.Log(b.header.debugName, "new")

	return Cc[T]{blk: b}
}

// Clone increments the reference count and returns a new handle to the same
// block. It never fails in the programmer-error-free case; a reference
// count that would overflow a uint64 panics rather than wrapping, since that
// can only happen from a runaway clone loop.
func (c Cc[T]) Clone() Cc[T] {
	if c.blk == nil {
		panic("cc: Clone called on a zero-value Cc")
	}

	h := &c.blk.header
	if h.refCount == math.MaxUint64 {
		panic("cc: reference count overflow")
	}

	h.refCount++

	if tracelog.Capturing() {
		tracelog.Log(h.debugName, fmt.Sprintf("clone (%d)", h.refCount))
	}

	return Cc[T]{blk: c.blk}
}

// Deref returns a pointer to the held value. The pointer is a borrow, not a
// transfer of ownership: it must not outlive the handle it came from (or any
// clone of it). Mutation through the returned pointer is the caller's
// responsibility exactly as in the reference implementation — T is expected
// to provide its own interior mutability (a mutex-guarded field, an atomic,
// and so on) if concurrent or aliased mutation is needed.
func (c Cc[T]) Deref() *T {
	if c.blk == nil {
		panic("cc: Deref called on a zero-value Cc")
	}

	return &c.blk.value
}

// Release decrements the reference count. When it reaches zero the block is
// unlinked from its Space (if tracked) and the value's destructor, if any,
// runs. Releasing the zero value is a silent no-op, matching dropping an
// already-moved-from handle.
func (c Cc[T]) Release() {
	if c.blk == nil {
		return
	}

	releaseHeader(&c.blk.header, false)
}

// releaseHeader implements the shared decrement-and-maybe-teardown path used
// by both an ordinary Release call and the collector's final release pass
// (Space.CollectCycles step 6), which is why it is keyed off valueDropped
// rather than unconditionally invoking the destructor: by the time the
// collector reaches step 6 the destructor has already run in step 5.
// viaCollect attributes the reclamation to the right Stats counter; it is
// true only for the step 6 call site in collect.go.
func releaseHeader(h *header, viaCollect bool) {
	tag := describeRefCount(h)

	h.refCount--

	if tracelog.Capturing() {
		tracelog.Log(h.debugName, fmt.Sprintf("drop (%d%s)", h.refCount, tag))
	}

	if h.refCount != 0 {
		return
	}

	if h.tracked {
		tracelog.Log(h.debugName, "untrack")
		unlinkHeader(h)
	}

	if !h.valueDropped {
		h.valueDropped = true
		h.dyn.destroy()
	}

	if h.owner != nil {
		if viaCollect {
			h.owner.stats.ReclaimedByCollect++
		} else {
			h.owner.stats.ReclaimedByRefCount++
		}
	}
}

func describeRefCount(h *header) string {
	if h.tracked {
		return ", tracked"
	}

	return ""
}
